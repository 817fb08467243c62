// Package reference fetches target profits from an external growth calculator.
package reference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/trade-journal/internal/calibration"
	"github.com/yourusername/trade-journal/internal/growth"
	"github.com/yourusername/trade-journal/internal/metrics"
	"golang.org/x/time/rate"
)

const (
	growthPath        = "/v1/growth"
	maxErrorBodyBytes = 512
)

// Client errors
var (
	ErrNotConfigured = errors.New("reference calculator URL not configured")
	ErrCircuitOpen   = errors.New("reference calculator circuit breaker open")
	ErrBadResponse   = errors.New("unexpected reference calculator response")
	errEmptyBaseURL  = errors.New("base URL is required")
)

// Config holds configuration for the reference client
type Config struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	MaxRetries        int
	RetryWaitMin      time.Duration
	RetryWaitMax      time.Duration
	RateLimit         float64 // requests per second
	CircuitBreakerMax int     // max consecutive failures before circuit break
}

// DefaultConfig returns recommended defaults
func DefaultConfig() Config {
	return Config{
		Timeout:           15 * time.Second,
		MaxRetries:        3,
		RetryWaitMin:      100 * time.Millisecond,
		RetryWaitMax:      5 * time.Second,
		RateLimit:         5.0,
		CircuitBreakerMax: 5,
	}
}

type growthRequest struct {
	Capital         float64 `json:"capital"`
	TotalTrades     int     `json:"total_trades"`
	Accuracy        float64 `json:"accuracy"`
	RiskRewardRatio float64 `json:"risk_reward_ratio"`
}

type growthResponse struct {
	FinalBalance *float64 `json:"final_balance"`
	Profit       *float64 `json:"profit"`
}

// Client calls the reference calculator with retries, client-side rate
// limiting and a consecutive-failure circuit breaker
type Client struct {
	baseURL           string
	apiKey            string
	http              *retryablehttp.Client
	limiter           *rate.Limiter
	circuitBreakerMax int
	logger            *logrus.Entry

	mu                sync.Mutex
	consecutiveErrors int
	lastError         error
}

type retryLogger struct {
	entry *logrus.Entry
}

func (l retryLogger) Printf(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

// NewClient creates a new reference client
func NewClient(cfg Config, logger *logrus.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("%w: %v", ErrNotConfigured, errEmptyBaseURL)
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	entry := logger.WithField("component", "reference")

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = customRetryPolicy()
	retryClient.Logger = retryLogger{entry: entry}
	// return the last response instead of a generic error once retries are exhausted
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	breaker := cfg.CircuitBreakerMax
	if breaker <= 0 {
		breaker = DefaultConfig().CircuitBreakerMax
	}

	return &Client{
		baseURL:           strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:            cfg.APIKey,
		http:              retryClient,
		limiter:           rate.NewLimiter(limit, 1),
		circuitBreakerMax: breaker,
		logger:            entry,
	}, nil
}

// TargetProfit asks the calculator for the profit of a scenario
func (c *Client) TargetProfit(ctx context.Context, s growth.Scenario) (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if err := c.checkCircuit(); err != nil {
		return 0, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.RecordReferenceRequest("rate_limited")
		return 0, fmt.Errorf("rate limiter error: %w", err)
	}

	profit, err := c.fetch(ctx, s)
	c.recordOutcome(err)
	if err != nil {
		metrics.RecordReferenceRequest("failure")
		return 0, err
	}
	metrics.RecordReferenceRequest("success")
	return profit, nil
}

func (c *Client) fetch(ctx context.Context, s growth.Scenario) (float64, error) {
	body, err := json.Marshal(growthRequest{
		Capital:         s.Capital,
		TotalTrades:     s.TotalTrades,
		Accuracy:        s.Accuracy,
		RiskRewardRatio: s.RiskRewardRatio,
	})
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+growthPath, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("reference request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return 0, fmt.Errorf("%w: status %d: %s", ErrBadResponse, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out growthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("%w: decode: %v", ErrBadResponse, err)
	}

	switch {
	case out.Profit != nil:
		if math.IsNaN(*out.Profit) || math.IsInf(*out.Profit, 0) {
			return 0, fmt.Errorf("%w: non-finite profit", ErrBadResponse)
		}
		return *out.Profit, nil
	case out.FinalBalance != nil:
		return *out.FinalBalance - s.Capital, nil
	default:
		return 0, fmt.Errorf("%w: missing profit", ErrBadResponse)
	}
}

func (c *Client) checkCircuit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.consecutiveErrors >= c.circuitBreakerMax {
		return fmt.Errorf("%w: %v", ErrCircuitOpen, c.lastError)
	}
	return nil
}

func (c *Client) recordOutcome(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		c.consecutiveErrors = 0
		c.lastError = nil
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	c.consecutiveErrors++
	c.lastError = err
	if c.consecutiveErrors == c.circuitBreakerMax {
		c.logger.WithError(err).Warnf("Circuit breaker opened after %d consecutive errors", c.consecutiveErrors)
	}
}

// ResetCircuit closes the circuit breaker
func (c *Client) ResetCircuit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutiveErrors = 0
	c.lastError = nil
}

// FillCases returns a copy of cases with ExpectedProfit replaced by the
// calculator's answer. It stops at the first failure.
func (c *Client) FillCases(ctx context.Context, cases []calibration.Case) ([]calibration.Case, error) {
	filled := make([]calibration.Case, len(cases))
	copy(filled, cases)
	for i := range filled {
		if err := filled[i].Scenario.Validate(); err != nil {
			return nil, fmt.Errorf("case %s: %w", filled[i].Label(i), err)
		}
		profit, err := c.TargetProfit(ctx, filled[i].Scenario)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", filled[i].Label(i), err)
		}
		filled[i].ExpectedProfit = profit
		c.logger.WithFields(logrus.Fields{
			"case":   filled[i].Label(i),
			"profit": profit,
		}).Debug("Reference profit fetched")
	}
	return filled, nil
}

// Close releases idle connections
func (c *Client) Close() error {
	c.http.HTTPClient.CloseIdleConnections()
	return nil
}

// customRetryPolicy retries network errors, 429 and 5xx gateway errors
func customRetryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, nil
		}

		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true, nil
		}
		return false, nil
	}
}
