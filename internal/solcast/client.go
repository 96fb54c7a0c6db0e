// Package solcast is the HTTP client for the Solcast radiation and weather
// forecast API.
package solcast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/solarfleet/solarcast/internal/forecast"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the production Solcast API endpoint.
const DefaultBaseURL = "https://api.solcast.com.au"

const (
	// defaultIntervalMinutes is the API's default sample period; the period
	// parameter is only sent when the request deviates from it.
	defaultIntervalMinutes = 30

	maxAttempts      = 3
	retryBaseBackoff = time.Second
)

// Client talks to the Solcast API. Hobbyist API keys are limited to a
// handful of calls per day, so every request passes through a conservative
// client-side rate limiter and 429 responses are retried with backoff.
type Client struct {
	apiKey  string
	baseURL string
	hc      *http.Client
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

// NewClient creates a Client. An empty baseURL selects the production
// endpoint.
func NewClient(apiKey, baseURL string, logger *zap.SugaredLogger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 15 * time.Second},
		// One request burst, refilling every 10 seconds.
		limiter: rate.NewLimiter(rate.Every(10*time.Second), 1),
		logger:  logger,
	}
}

// Request describes one forecast fetch.
type Request struct {
	Latitude        float64
	Longitude       float64
	Hours           int
	IntervalMinutes int
	Panel           *forecast.PanelConfig
}

type forecastResponse struct {
	Forecasts []forecast.RawSample `json:"forecasts"`
}

// RadiationAndWeather fetches raw forecast samples for a site. Mobile panel
// geometry is never forwarded upstream: the API has no notion of a moving
// panel, so mobile GTI is always computed locally from GHI/DNI.
func (c *Client) RadiationAndWeather(ctx context.Context, req Request) ([]forecast.RawSample, error) {
	v := url.Values{}
	v.Set("latitude", strconv.FormatFloat(req.Latitude, 'f', 6, 64))
	v.Set("longitude", strconv.FormatFloat(req.Longitude, 'f', 6, 64))
	v.Set("hours", strconv.Itoa(req.Hours))
	v.Set("format", "json")
	v.Set("api_key", c.apiKey)

	if req.IntervalMinutes > 0 && req.IntervalMinutes != defaultIntervalMinutes {
		v.Set("period", fmt.Sprintf("PT%dM", req.IntervalMinutes))
	}

	if p := req.Panel; p != nil && p.Mode != forecast.PanelMobile {
		v.Set("array_type", string(p.Mode))
		if p.Mode == forecast.PanelFixed && p.TiltDeg != 0 {
			v.Set("tilt", strconv.FormatFloat(p.TiltDeg, 'f', 1, 64))
		}
		v.Set("azimuth", strconv.FormatFloat(p.AzimuthDeg, 'f', 1, 64))
	}

	endpoint := c.baseURL + "/data/forecast/radiation_and_weather?" + v.Encode()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		samples, retryable, err := c.fetch(ctx, endpoint)
		if err == nil {
			return samples, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		if attempt == maxAttempts {
			break
		}

		backoff := retryBaseBackoff * time.Duration(1<<(attempt-1))
		c.logger.Warnw("solcast request rate-limited, backing off",
			"attempt", attempt, "backoff", backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("solcast request failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) fetch(ctx context.Context, endpoint string) (samples []forecast.RawSample, retryable bool, err error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating Solcast API request: %w", err)
	}

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, false, fmt.Errorf("requesting Solcast forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("solcast API rate limit reached")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, false, fmt.Errorf("solcast API error %d: %s", resp.StatusCode, body)
	}

	var decoded forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, false, fmt.Errorf("decoding Solcast response: %w", err)
	}

	c.logger.Debugf("fetched %d forecast samples from Solcast", len(decoded.Forecasts))
	return decoded.Forecasts, false, nil
}
