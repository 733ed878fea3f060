package drive

import (
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

const (
	defaultBaseURL = "https://www.googleapis.com"
	sourceName     = "drive"
)

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

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(log logger.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// Client lists one drive folder.
type Client struct {
	folderID   string
	apiKey     string
	baseURL    string
	httpClient HTTPClient
	log        logger.Logger
}

// NewClient creates a client for folderID using apiKey.
func NewClient(folderID, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		folderID:   strings.TrimSpace(folderID),
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultBaseURL,
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

// Policy reports how drive files are normalized. Types always come from
// the MIME type, which maps anything unrecognized to text. File name
// extensions are never consulted.
func (c *Client) Policy() content.Policy {
	return content.Policy{UnknownType: content.TypeText, MIMEOnly: true}
}

// Fetch lists the folder and converts each file to a record.
func (c *Client) Fetch(ctx context.Context) ([]content.RawRecord, error) {
	files, err := c.ListFiles(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]content.RawRecord, 0, len(files))
	for _, f := range files {
		records = append(records, content.RawRecord{
			ID:           f.ID,
			Name:         f.Name,
			MIMEType:     f.MIMEType,
			URL:          f.WebViewLink,
			ThumbnailURL: f.ThumbnailLink,
			CreatedAt:    dateOnly(f.CreatedTime),
		})
	}
	return records, nil
}

// ListFiles returns the children of the configured folder. Both the folder
// id and the API key are required; without them no request is sent.
func (c *Client) ListFiles(ctx context.Context) ([]File, error) {
	if c.folderID == "" {
		return nil, &content.ConfigurationError{Source: sourceName, Field: "folder_id", Reason: "is required"}
	}
	if c.apiKey == "" {
		return nil, &content.ConfigurationError{Source: sourceName, Field: "api_key", Reason: "is required"}
	}

	query := url.Values{}
	query.Set("q", parentsQuery(c.folderID))
	query.Set("key", c.apiKey)
	query.Set("fields", Fields)

	body, err := c.doRequest(ctx, c.baseURL+"/drive/v3/files?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var response filesResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &content.ParseError{Source: sourceName, Reason: "failed to parse files response", Err: err}
	}
	c.log.Debug("listed drive folder", logger.String("folder_id", c.folderID), logger.Int("files", len(response.Files)))
	if response.Files == nil {
		return []File{}, nil
	}
	return response.Files, nil
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &content.ConfigurationError{Source: sourceName, Field: "base_url", Reason: fmt.Sprintf("is invalid: %v", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &content.FetchError{Source: sourceName, Reason: "unable to connect to the drive API", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &content.FetchError{Source: sourceName, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, handleAPIError(resp.StatusCode)
	}
	return body, nil
}

// parentsQuery selects the children of folderID. Quotes and backslashes in
// the id are escaped for the query language.
func parentsQuery(folderID string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(folderID)
	return fmt.Sprintf("'%s' in parents", escaped)
}

// dateOnly keeps the date part of an RFC 3339 timestamp.
func dateOnly(ts string) string {
	date, _, _ := strings.Cut(ts, "T")
	return date
}

func handleAPIError(statusCode int) error {
	reason := fmt.Sprintf("drive API error (status %d) - please try again", statusCode)
	switch statusCode {
	case http.StatusBadRequest:
		reason = "drive API rejected the request - check the folder id"
	case http.StatusUnauthorized, http.StatusForbidden:
		reason = "drive API access denied - check the API key and folder sharing"
	case http.StatusNotFound:
		reason = "drive folder not found - check the folder id"
	case http.StatusTooManyRequests:
		reason = "drive API rate limit exceeded - please try again later"
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		reason = "drive API server error - please try again later"
	}
	return &content.FetchError{Source: sourceName, StatusCode: statusCode, Reason: reason}
}
