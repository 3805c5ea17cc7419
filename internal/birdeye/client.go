// Package birdeye is a client for the Birdeye public market data API.
package birdeye

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trader-portfolio-api/internal/config"
	"trader-portfolio-api/internal/retry"
	"trader-portfolio-api/internal/tracing"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public API host
const DefaultBaseURL = "https://public-api.birdeye.so"

// DefaultChain is sent in the x-chain header when none is configured
const DefaultChain = "solana"

// Response is the envelope every Birdeye endpoint returns
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
}

// DataMap decodes Data as an object keyed by address.
// A missing or null data field yields an empty map.
func (r *Response) DataMap() (map[string]json.RawMessage, error) {
	result := make(map[string]json.RawMessage)
	if r == nil || len(r.Data) == 0 || string(r.Data) == "null" {
		return result, nil
	}
	if err := json.Unmarshal(r.Data, &result); err != nil {
		return nil, fmt.Errorf("unexpected data shape: %w", err)
	}
	return result, nil
}

// Client calls the Birdeye API. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	chain      string
	limiter    *rate.Limiter
	retry      *retry.Config
	logger     *logrus.Logger

	Defi   *DefiService
	Token  *TokenService
	Wallet *WalletService
	Trader *TraderService
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRetry replaces the retry configuration
func WithRetry(cfg *retry.Config) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithLogger sets the logger
func WithLogger(logger *logrus.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit limits outgoing requests to rps with the given burst. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a client from configuration
func NewClient(cfg config.BirdeyeConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	chain := cfg.Chain
	if chain == "" {
		chain = DefaultChain
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		httpClient: tracing.HTTPClient(&http.Client{Timeout: timeout}),
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		chain:      chain,
		retry:      retry.DefaultConfig(),
		logger:     logrus.StandardLogger(),
	}
	WithRateLimit(cfg.RateLimit, cfg.Burst)(c)

	for _, opt := range opts {
		opt(c)
	}

	c.Defi = &DefiService{client: c}
	c.Token = &TokenService{client: c}
	c.Wallet = &WalletService{client: c}
	c.Trader = &TraderService{client: c}

	return c, nil
}

// Chain returns the chain sent with every request
func (c *Client) Chain() string {
	return c.chain
}

// get performs a GET request against path with the given query parameters
func (c *Client) get(ctx context.Context, path string, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, params, nil)
}

// post performs a POST request with a JSON body
func (c *Client) post(ctx context.Context, path string, params url.Values, body interface{}) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, params, payload)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload []byte) (*Response, error) {
	var result *Response

	err := tracing.Capture(ctx, "Birdeye"+path, func(ctx context.Context) error {
		return retry.Do(ctx, c.retry, func(ctx context.Context) error {
			if c.limiter != nil {
				if err := c.limiter.Wait(ctx); err != nil {
					return err
				}
			}

			resp, err := c.send(ctx, method, path, params, payload)
			if err != nil {
				return err
			}
			result = resp
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (c *Client) send(ctx context.Context, method, path string, params url.Values, payload []byte) (*Response, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("accept", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("x-chain", c.chain)
	if payload != nil {
		req.Header.Set("content-type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	fields := logrus.Fields{
		"method":   method,
		"path":     path,
		"duration": time.Since(start),
	}
	if err != nil {
		c.logger.WithFields(fields).WithError(err).Warn("Birdeye request failed")
		return nil, fmt.Errorf("birdeye %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read birdeye response: %w", err)
	}

	fields["status"] = resp.StatusCode
	c.logger.WithFields(fields).Debug("Birdeye request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return nil, &APIError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   string(data),
		}
	}

	var envelope Response
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode birdeye response: %w", err)
	}

	return &envelope, nil
}

// setOptional adds key to params when value is non-zero
func setOptional(params url.Values, key string, value int64) {
	if value != 0 {
		params.Set(key, fmt.Sprint(value))
	}
}
