package bucket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gauthierbraillon/mediamix/internal/content"
	"github.com/gauthierbraillon/mediamix/internal/logger"
)

const sourceName = "bucket"

// HTTPClient interface for making HTTP requests (allows injection for testing).
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

// WithPrefix restricts the listing to one folder of the bucket.
func WithPrefix(prefix string) ClientOption {
	return func(c *Client) {
		c.prefix = normalizePrefix(prefix)
	}
}

// WithAPIKey sets the public API key sent with listing requests.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithLogger sets the client logger.
func WithLogger(log logger.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// Client lists one bucket.
type Client struct {
	baseURL    string
	bucket     string
	prefix     string
	apiKey     string
	httpClient HTTPClient
	log        logger.Logger
}

// NewClient creates a client for bucket on the storage service at baseURL.
func NewClient(baseURL, bucket string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		bucket:     bucket,
		httpClient: &http.Client{},
		log:        logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the adapter in logs and notices.
func (c *Client) Name() string { return sourceName }

// Policy reports how bucket objects are normalized: object names are file
// names, so the extension is stripped for display, and objects whose
// extension is not recognized are shown as images.
func (c *Client) Policy() content.Policy {
	return content.Policy{StripExtension: true, UnknownType: content.TypeImage}
}

// Fetch lists the bucket and converts every object to a record.
func (c *Client) Fetch(ctx context.Context) ([]content.RawRecord, error) {
	objects, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]content.RawRecord, 0, len(objects))
	for _, obj := range objects {
		records = append(records, content.RawRecord{
			ID:        obj.ID,
			Name:      obj.Name,
			Path:      obj.Path,
			URL:       obj.PublicURL,
			CreatedAt: obj.CreatedAt,
		})
	}
	return records, nil
}

// List returns up to PageSize objects, newest first. The folder placeholder
// and sub-folder entries are skipped.
func (c *Client) List(ctx context.Context) ([]Object, error) {
	if c.baseURL == "" {
		return nil, &content.ConfigurationError{Source: sourceName, Field: "base_url", Reason: "is required"}
	}
	if strings.TrimSpace(c.bucket) == "" {
		return nil, &content.ConfigurationError{Source: sourceName, Field: "bucket", Reason: "is required"}
	}

	body, err := c.doList(ctx)
	if err != nil {
		return nil, err
	}

	var entries []listEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, &content.ParseError{Source: sourceName, Reason: "failed to parse listing", Err: err}
	}

	objects := make([]Object, 0, len(entries))
	for _, e := range entries {
		if e.Name == PlaceholderName {
			continue
		}
		if e.ID == nil {
			c.log.Debug("skipping folder entry", logger.String("name", e.Name))
			continue
		}
		obj := Object{
			ID:        *e.ID,
			Name:      e.Name,
			Path:      c.prefix + e.Name,
			PublicURL: c.PublicURL(c.prefix + e.Name),
			CreatedAt: e.CreatedAt,
		}
		if e.Metadata != nil {
			obj.MIMEType = e.Metadata.MIMEType
			obj.Size = e.Metadata.Size
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

// PublicURL resolves an object path to its publicly reachable location.
func (c *Client) PublicURL(objectPath string) string {
	segments := strings.Split(objectPath, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		c.baseURL, url.PathEscape(c.bucket), strings.Join(segments, "/"))
}

func (c *Client) doList(ctx context.Context) ([]byte, error) {
	payload, err := json.Marshal(listRequest{
		Prefix: c.prefix,
		Limit:  PageSize,
		SortBy: sortBy{Column: "created_at", Order: "desc"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode list request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/storage/v1/object/list/%s", c.baseURL, url.PathEscape(c.bucket))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &content.ConfigurationError{Source: sourceName, Field: "base_url", Reason: fmt.Sprintf("is invalid: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &content.FetchError{Source: sourceName, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &content.FetchError{Source: sourceName, Err: fmt.Errorf("failed to read listing: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &content.FetchError{Source: sourceName, StatusCode: resp.StatusCode}
	}
	return body, nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}
