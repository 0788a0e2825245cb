package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// App holds application configuration.
type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

// Logger holds logger configuration.
type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// Database holds database configuration.
type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

// Redis holds Redis configuration.
type Redis struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// API holds API server configuration.
type API struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// AlphaVantage holds upstream provider configuration. Keys are rotated
// round-robin, one quota per key.
type AlphaVantage struct {
	BaseURL             string   `mapstructure:"base_url"`
	APIKeys             []string `mapstructure:"api_keys"`
	RequestTimeout      string   `mapstructure:"request_timeout"`
	MaxRequestPerMinute int      `mapstructure:"max_request_per_minute"`
	RetryAttempts       int      `mapstructure:"retry_attempts"`
	RetryBackoff        string   `mapstructure:"retry_backoff"`
}

// Backfill holds historical ingestion run configuration.
type Backfill struct {
	Tickers          []string `mapstructure:"tickers"`
	Months           int      `mapstructure:"months"`
	IntradayInterval string   `mapstructure:"intraday_interval"`
	IntradayDays     int      `mapstructure:"intraday_days"`
	NewsLimit        int      `mapstructure:"news_limit"`
	DelaySeconds     int      `mapstructure:"delay_seconds"`
}

// Scheduler holds cron specs for the periodic refresh jobs and the
// retention windows the pruning pass enforces.
type Scheduler struct {
	PriceRefreshCron  string `mapstructure:"price_refresh_cron"`
	NewsRefreshCron   string `mapstructure:"news_refresh_cron"`
	NewsRetentionDays int    `mapstructure:"news_retention_days"`
}

// Telegram holds optional run-summary notification configuration.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Load loads configuration from a file into the given config struct.
func Load(path string, config interface{}) error {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("Failed to read config file, trying environment variables only")
	}

	return viper.Unmarshal(config)
}

// Validate checks that the database section is usable.
func (d Database) Validate() error {
	if d.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if d.User == "" {
		return fmt.Errorf("database user is required")
	}
	if d.Password == "" {
		return fmt.Errorf("database password is required")
	}
	return nil
}

// Validate checks that at least one non-empty API key is configured.
func (a AlphaVantage) Validate() error {
	for _, k := range a.APIKeys {
		if strings.TrimSpace(k) != "" {
			return nil
		}
	}
	return fmt.Errorf("at least one Alpha Vantage API key is required")
}
