package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"alphavantage-pipeline/internal/entity"
	"alphavantage-pipeline/internal/ingestion/keyring"
	"alphavantage-pipeline/pkg/logger"

	"golang.org/x/time/rate"
)

// Upstream function names used by the pipeline.
const (
	FuncOverview      = "OVERVIEW"
	FuncDailySeries   = "TIME_SERIES_DAILY"
	FuncIntraday      = "TIME_SERIES_INTRADAY"
	FuncNewsSentiment = "NEWS_SENTIMENT"
	FuncEarnings      = "EARNINGS"
	FuncGlobalQuote   = "GLOBAL_QUOTE"
)

// Error markers the provider embeds in otherwise-200 responses.
var errorMarkerKeys = []string{"Error Message", "Note", "Information"}

// rateLimitPhrases identify quota-exhaustion messages regardless of which
// marker key carries them.
var rateLimitPhrases = []string{"rate limit", "thank you for using", "call frequency"}

// AuditRecorder persists one FetchLog per upstream attempt. Defined here on
// the consumer side; the fetch_logs repository satisfies it.
type AuditRecorder interface {
	Create(ctx context.Context, log *entity.FetchLog) error
}

// Config holds the client settings.
type Config struct {
	BaseURL             string
	RequestTimeout      time.Duration
	MaxRequestPerMinute int
}

// Client issues single upstream requests with key rotation, bounded
// timeouts and unconditional audit logging.
type Client struct {
	cfg        Config
	rotator    *keyring.Rotator
	audit      AuditRecorder
	log        *logger.Logger
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a fetch client. One instance per process; shared by all
// domain services.
func NewClient(cfg Config, rotator *keyring.Rotator, audit AuditRecorder, log *logger.Logger) *Client {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.MaxRequestPerMinute <= 0 {
		cfg.MaxRequestPerMinute = 5
	}
	secondsPerRequest := time.Minute / time.Duration(cfg.MaxRequestPerMinute)
	return &Client{
		cfg:     cfg,
		rotator: rotator,
		audit:   audit,
		log:     log,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

// Fetch issues one upstream GET for the given function, drawing a rotated
// key, and classifies the outcome. Exactly one audit record is written per
// call, success or not. The returned Payload is the raw parsed object.
func (c *Client) Fetch(ctx context.Context, function, symbol string, params map[string]string) (Payload, error) {
	key, keyIndex := c.rotator.Next()

	if err := c.limiter.Wait(ctx); err != nil {
		fe := &FetchError{Kind: KindTransport, Message: "request limiter wait canceled", Err: err}
		c.record(ctx, function, symbol, keyIndex, fe.Status(), fe.Error(), 0, params)
		return Payload{}, fe
	}

	query := url.Values{}
	query.Set("function", function)
	query.Set("apikey", key)
	if symbol != "" {
		query.Set("symbol", symbol)
	}
	for k, v := range params {
		query.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+query.Encode(), nil)
	if err != nil {
		fe := &FetchError{Kind: KindTransport, Message: "failed to build request", Err: err}
		c.record(ctx, function, symbol, keyIndex, fe.Status(), fe.Error(), 0, params)
		return Payload{}, fe
	}
	req.Header.Set("User-Agent", "alphavantage-pipeline/1.0")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		fe := classifyTransport(err)
		c.record(ctx, function, symbol, keyIndex, fe.Status(), fe.Error(), latency, params)
		return Payload{}, fe
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	latency = time.Since(start).Milliseconds()
	if err != nil {
		fe := &FetchError{Kind: KindTransport, Message: "failed to read response body", Err: err}
		c.record(ctx, function, symbol, keyIndex, fe.Status(), fe.Error(), latency, params)
		return Payload{}, fe
	}

	if resp.StatusCode != http.StatusOK {
		fe := &FetchError{Kind: KindUpstream, Message: "unexpected HTTP status " + resp.Status}
		c.record(ctx, function, symbol, keyIndex, fe.Status(), fe.Error(), latency, params)
		return Payload{}, fe
	}

	payload, err := ParsePayload(body)
	if err != nil {
		fe := &FetchError{Kind: KindMalformed, Message: err.Error()}
		c.record(ctx, function, symbol, keyIndex, fe.Status(), fe.Error(), latency, params)
		return Payload{}, fe
	}

	if fe := classifyMarkers(payload); fe != nil {
		c.record(ctx, function, symbol, keyIndex, fe.Status(), fe.Message, latency, params)
		return Payload{}, fe
	}

	c.record(ctx, function, symbol, keyIndex, entity.FetchStatusSuccess, "", latency, params)
	return payload, nil
}

// FetchWithRetry re-invokes Fetch up to attempts times with a fixed backoff
// between attempts. Each attempt writes its own audit record.
func (c *Client) FetchWithRetry(ctx context.Context, function, symbol string, params map[string]string, attempts int, backoff time.Duration) (Payload, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		payload, err := c.Fetch(ctx, function, symbol, params)
		if err == nil {
			return payload, nil
		}
		lastErr = err

		if attempt < attempts {
			c.log.WarnContext(ctx, "Fetch attempt failed, retrying",
				logger.StringField("function", function),
				logger.StringField("ticker", symbol),
				logger.IntField("attempt", attempt),
				logger.ErrorField(err))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return Payload{}, lastErr
			}
		}
	}
	return Payload{}, lastErr
}

// Ping performs a lightweight connectivity probe using the free
// GLOBAL_QUOTE endpoint against a known-valid symbol.
func (c *Client) Ping(ctx context.Context) bool {
	payload, err := c.Fetch(ctx, FuncGlobalQuote, "IBM", nil)
	if err != nil {
		return false
	}
	return payload.Has("Global Quote")
}

// Retrying adapts the client so every Fetch applies the configured retry
// policy. Domain services consume this instead of the raw client.
type Retrying struct {
	Client   *Client
	Attempts int
	Backoff  time.Duration
}

// Fetch delegates to FetchWithRetry with the fixed policy.
func (r Retrying) Fetch(ctx context.Context, function, symbol string, params map[string]string) (Payload, error) {
	return r.Client.FetchWithRetry(ctx, function, symbol, params, r.Attempts, r.Backoff)
}

// record writes one audit row. Audit failures are logged and swallowed so
// they never abort the pipeline operation that triggered the call.
func (c *Client) record(ctx context.Context, endpoint, symbol string, keyIndex int, status entity.FetchStatus, errMsg string, latencyMs int64, params map[string]string) {
	row := &entity.FetchLog{
		Endpoint:    endpoint,
		APIKeyIndex: &keyIndex,
		Status:      status,
	}
	// Functions like NEWS_SENTIMENT address the entity via the tickers
	// parameter instead of symbol; keep the audit row attributed either way.
	if symbol == "" {
		symbol = params["tickers"]
	}
	if symbol != "" {
		upper := strings.ToUpper(symbol)
		row.Ticker = &upper
	}
	if errMsg != "" {
		row.ErrorMessage = &errMsg
	}
	if latencyMs > 0 {
		row.ResponseTimeMs = &latencyMs
	}
	if len(params) > 0 {
		if meta, err := json.Marshal(params); err == nil {
			row.Metadata = meta
		}
	}

	if err := c.audit.Create(ctx, row); err != nil {
		c.log.WarnContext(ctx, "Failed to write fetch audit record",
			logger.StringField("endpoint", endpoint),
			logger.ErrorField(err))
	}
}

func classifyTransport(err error) *FetchError {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &FetchError{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	return &FetchError{Kind: KindTransport, Message: "request failed", Err: err}
}

// classifyMarkers inspects the provider's in-band error keys. A quota
// phrase in any marker means rate-limited; any other marker is an upstream
// error with the provider's message.
func classifyMarkers(p Payload) *FetchError {
	for _, key := range errorMarkerKeys {
		if !p.Has(key) {
			continue
		}
		msg := p.stringField(key)
		if msg == "" {
			msg = "unknown upstream error (" + key + ")"
		}
		if isRateLimitMessage(msg) {
			return &FetchError{Kind: KindRateLimited, Message: msg}
		}
		return &FetchError{Kind: KindUpstream, Message: msg}
	}
	return nil
}

func isRateLimitMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, phrase := range rateLimitPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
