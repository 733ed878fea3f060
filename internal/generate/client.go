// Package generate submits content generation requests to an external
// workflow webhook. The workflow later adds the generated media to the
// gallery's source.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gauthierbraillon/mediamix/internal/content"
	"github.com/gauthierbraillon/mediamix/internal/logger"
	"github.com/gauthierbraillon/mediamix/internal/metrics"
)

// SourceTag identifies requests sent by mediamix.
const SourceTag = "url-generator"

// RequestIDHeader carries the id of each submission.
const RequestIDHeader = "X-Request-ID"

var (
	ErrURLRequired          = errors.New("url is required")
	ErrInvalidURL           = errors.New("url must start with http:// or https://")
	ErrInvalidContentType   = errors.New("content type must be image or video")
	ErrWebhookNotConfigured = errors.New("generation webhook is not configured")
)

// Request is the webhook payload.
type Request struct {
	URL         string       `json:"url"`
	ContentType content.Type `json:"contentType"`
	Timestamp   string       `json:"timestamp"`
	Source      string       `json:"source"`
}

// Receipt confirms a delivered request.
type Receipt struct {
	RequestID   string
	ContentType content.Type
	Message     string
}

// HTTPClient interface for making HTTP requests (allows mocking).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// WithMetrics counts submissions.
func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithClock sets the clock used for request timestamps.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// OnDelivered is called after each delivered request, typically to refresh
// the gallery.
func OnDelivered(fn func()) ClientOption {
	return func(c *Client) {
		c.onDelivered = fn
	}
}

// Client posts generation requests to a webhook.
type Client struct {
	webhookURL  string
	httpClient  HTTPClient
	log         logger.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
	onDelivered func()
}

// NewClient creates a client for webhookURL.
func NewClient(webhookURL string, opts ...ClientOption) *Client {
	c := &Client{
		webhookURL: strings.TrimSpace(webhookURL),
		httpClient: &http.Client{},
		log:        logger.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate checks a submission before anything is sent.
func Validate(rawURL string, contentType content.Type) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ErrURLRequired
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	if contentType != content.TypeImage && contentType != content.TypeVideo {
		return ErrInvalidContentType
	}
	return nil
}

// Submit sends a request to generate contentType from rawURL. The webhook's
// response is not inspected: once the request is delivered it counts as
// accepted.
func (c *Client) Submit(ctx context.Context, rawURL string, contentType content.Type) (Receipt, error) {
	if err := Validate(rawURL, contentType); err != nil {
		return Receipt{}, err
	}
	if c.webhookURL == "" {
		return Receipt{}, ErrWebhookNotConfigured
	}

	requestID := uuid.NewString()
	body, err := json.Marshal(Request{
		URL:         strings.TrimSpace(rawURL),
		ContentType: contentType,
		Timestamp:   c.now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Source:      SourceTag,
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	log := c.log.With(logger.String("request_id", requestID), logger.String("content_type", string(contentType)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.count(contentType, "error")
		log.Error("failed to send generation request", logger.Error(err))
		return Receipt{}, fmt.Errorf("sending generation request: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	c.count(contentType, "delivered")
	log.Info("generation request delivered", logger.Int("status", resp.StatusCode))
	if c.onDelivered != nil {
		c.onDelivered()
	}

	return Receipt{
		RequestID:   requestID,
		ContentType: contentType,
		Message:     fmt.Sprintf("Your %s is being generated. Check your gallery in a few moments.", contentType),
	}, nil
}

func (c *Client) count(contentType content.Type, result string) {
	if c.metrics != nil {
		c.metrics.GenerateRequests.WithLabelValues(string(contentType), result).Inc()
	}
}
