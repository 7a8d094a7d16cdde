// Package fred is a minimal client for the FRED REST API, covering the
// two endpoints the warehouse ingest needs: series metadata and series
// observations.
package fred

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.stlouisfed.org/fred"

// FRED documents a limit of 120 requests per minute per key.
const defaultRequestsPerMinute = 100

// Client fetches series data from FRED.
type Client interface {
	GetSeries(ctx context.Context, seriesID string) (*SeriesInfo, error)
	GetObservations(ctx context.Context, seriesID string) ([]Observation, error)
}

// SeriesInfo is the metadata FRED reports for a series.
type SeriesInfo struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Units          string `json:"units"`
	FrequencyShort string `json:"frequency_short"`
	Notes          string `json:"notes"`
}

// Observation is a single dated reading. A "." value from FRED means
// the period has no usable number; Value is nil in that case.
type Observation struct {
	Date  string
	Value *float64
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default requests-per-minute budget.
func WithRateLimit(perMinute int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1)
	}
}

// WithMaxRetries overrides the default retry count.
func WithMaxRetries(n int) Option {
	return func(c *httpClient) {
		c.maxRetries = n
	}
}

type httpClient struct {
	apiKey     string
	baseURL    string
	http       *http.Client
	limiter    *rate.Limiter
	maxRetries int
}

// NewClient creates a FRED API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter:    rate.NewLimiter(rate.Limit(float64(defaultRequestsPerMinute)/60.0), 1),
		maxRetries: 3,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type seriesResponse struct {
	Seriess []SeriesInfo `json:"seriess"`
}

func (c *httpClient) GetSeries(ctx context.Context, seriesID string) (*SeriesInfo, error) {
	body, err := c.get(ctx, "/series", url.Values{"series_id": {seriesID}})
	if err != nil {
		return nil, eris.Wrapf(err, "fred: get series %s", seriesID)
	}

	var result seriesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrapf(err, "fred: unmarshal series %s", seriesID)
	}
	if len(result.Seriess) == 0 {
		return nil, eris.Errorf("fred: series %s not found", seriesID)
	}
	return &result.Seriess[0], nil
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

func (c *httpClient) GetObservations(ctx context.Context, seriesID string) ([]Observation, error) {
	body, err := c.get(ctx, "/series/observations", url.Values{"series_id": {seriesID}})
	if err != nil {
		return nil, eris.Wrapf(err, "fred: get observations %s", seriesID)
	}

	var result observationsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrapf(err, "fred: unmarshal observations %s", seriesID)
	}

	obs := make([]Observation, 0, len(result.Observations))
	for _, raw := range result.Observations {
		o := Observation{Date: raw.Date}
		if raw.Value != "" && raw.Value != "." {
			v, err := strconv.ParseFloat(raw.Value, 64)
			if err != nil {
				return nil, eris.Wrapf(err, "fred: bad value %q for %s at %s", raw.Value, seriesID, raw.Date)
			}
			o.Value = &v
		}
		obs = append(obs, o)
	}
	return obs, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")
	reqURL := c.baseURL + path + "?" + params.Encode()

	var lastErr error
	for attempt := range c.maxRetries {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "create request")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			zap.L().Warn("fred: request failed, retrying",
				zap.String("path", path),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			c.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("fred: http %d from %s", resp.StatusCode, path)
			zap.L().Warn("fred: retryable status, backing off",
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			c.backoff(ctx, attempt)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, eris.Wrap(err, "read response")
		}
		if resp.StatusCode != http.StatusOK {
			return nil, eris.Errorf("fred: unexpected status %d: %s", resp.StatusCode, string(body))
		}
		return body, nil
	}

	return nil, eris.Wrap(lastErr, "all retries exhausted")
}

func (c *httpClient) backoff(ctx context.Context, attempt int) {
	base := time.Second
	maxBackoff := 30 * time.Second
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	d += time.Duration(rand.Int64N(int64(d) / 2))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
