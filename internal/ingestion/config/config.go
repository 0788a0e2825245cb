package config

import (
	"alphavantage-pipeline/pkg/config"
)

// Config holds the full configuration for the pipeline service and the
// backfill CLI, which share one config file.
type Config struct {
	App          config.App          `mapstructure:"app"`
	Logger       config.Logger       `mapstructure:"logger"`
	Database     config.Database     `mapstructure:"database"`
	Redis        config.Redis        `mapstructure:"redis"`
	API          config.API          `mapstructure:"api"`
	AlphaVantage config.AlphaVantage `mapstructure:"alpha_vantage"`
	Backfill     config.Backfill     `mapstructure:"backfill"`
	Scheduler    config.Scheduler    `mapstructure:"scheduler"`
	Telegram     config.Telegram     `mapstructure:"telegram"`
}

// Load loads the pipeline configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Database.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.AlphaVantage.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
