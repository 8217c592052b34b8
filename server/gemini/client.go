// Package gemini implements the HTTP client for the upstream Gemini
// generateContent API. It owns the wire formats, the defensive
// extraction of the translated text, and the resilience knobs around
// the upstream call (request deduplication and an optional circuit
// breaker).
package gemini

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

	"github.com/l33tlabs/leetgate/config"
	"github.com/l33tlabs/leetgate/server/metrics"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// FallbackTranslation is returned when the upstream response does not
// contain a translation at the expected path. It is a deliberate
// degradation, not an error: the caller still gets a 200.
const FallbackTranslation = "Translation not found."

// Client calls the Gemini generateContent endpoint. It performs exactly
// one upstream attempt per call: no retries, no backoff, and no client
// timeout. Cancellation is inherited from the caller's context only.
type Client struct {
	endpoint   string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
	breaker    *gobreaker.CircuitBreaker
	group      singleflight.Group
}

// NewClient creates a Gemini client from configuration. The metrics
// collector may be nil.
func NewClient(cfg config.GeminiConfig, logger *zap.Logger, m *metrics.Metrics) *Client {
	c := &Client{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{},
		logger:     logger,
		metrics:    m,
	}

	if cb := cfg.CircuitBreaker; cb != nil && cb.Enabled {
		threshold := cb.FailureThreshold
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "gemini",
			MaxRequests: cb.MaxRequests,
			Interval:    cb.Interval,
			Timeout:     cb.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("Circuit breaker state change",
					zap.String("name", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
	}

	return c
}

// Generate sends the prompt to the generateContent endpoint and returns
// the extracted translation text, trimmed of surrounding whitespace.
// Concurrent calls with an identical prompt are coalesced into a single
// upstream request.
//
// The returned error carries the upstream's own error message when one
// could be extracted from its error body, and a generic status-code
// message otherwise.
func (c *Client) Generate(ctx context.Context, prompt, apiKey string) (string, error) {
	v, err, shared := c.group.Do(prompt, func() (interface{}, error) {
		if c.breaker != nil {
			out, err := c.breaker.Execute(func() (interface{}, error) {
				return c.generate(ctx, prompt, apiKey)
			})
			if err != nil {
				return "", err
			}
			return out, nil
		}
		return c.generate(ctx, prompt, apiKey)
	})
	if err != nil {
		return "", err
	}
	if shared {
		c.logger.Debug("Deduplicated identical upstream request")
	}
	return v.(string), nil
}

func (c *Client) generate(ctx context.Context, prompt, apiKey string) (string, error) {
	body := GenerateRequest{
		Contents: []Content{
			{Parts: []Part{{Text: prompt}}},
		},
		SafetySettings: DefaultSafetySettings,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	// Model identifier and API key travel in the URL, per the API's
	// query-parameter authentication scheme.
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.endpoint, c.model, url.QueryEscape(apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observeUpstream("network_error", start)
		return "", fmt.Errorf("call upstream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.observeUpstream("upstream_error", start)
		return "", c.upstreamError(resp)
	}

	var genResp GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		c.observeUpstream("decode_error", start)
		return "", fmt.Errorf("decode upstream response: %w", err)
	}
	c.observeUpstream("success", start)

	text, ok := genResp.Text()
	if !ok {
		c.logger.Warn("Upstream response missing translation path, using fallback",
			zap.Int("candidates", len(genResp.Candidates)),
		)
		return FallbackTranslation, nil
	}

	return strings.TrimSpace(text), nil
}

// upstreamError builds the error for a non-2xx upstream response,
// preferring the message inside the upstream's JSON error body.
func (c *Client) upstreamError(resp *http.Response) error {
	raw, err := io.ReadAll(resp.Body)
	if err == nil {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%s", apiErr.Error.Message)
		}
	}
	return fmt.Errorf("upstream returned status %d", resp.StatusCode)
}

func (c *Client) observeUpstream(outcome string, start time.Time) {
	if c.metrics != nil {
		c.metrics.UpstreamDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}
}
