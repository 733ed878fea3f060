package spreadsheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/gauthierbraillon/mediamix/internal/content"
	"github.com/gauthierbraillon/mediamix/internal/logger"
)

const sourceName = "spreadsheet"

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

// WithFormat sets the export format (csv by default).
func WithFormat(f Format) ClientOption {
	return func(c *Client) {
		c.format = f
	}
}

// WithLogger sets the logger used for soft failures.
func WithLogger(log logger.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// Client fetches and parses one spreadsheet export.
type Client struct {
	exportURL  string
	format     Format
	httpClient HTTPClient
	log        logger.Logger
}

// NewClient creates a client for the export at exportURL.
func NewClient(exportURL string, opts ...ClientOption) *Client {
	c := &Client{
		exportURL:  exportURL,
		format:     FormatCSV,
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

// Policy reports how spreadsheet rows are normalized: rows are appended at
// the bottom of the sheet, so the listing is reversed to show the newest
// first, and rows with an unrecognized type are shown as images.
func (c *Client) Policy() content.Policy {
	return content.Policy{UnknownType: content.TypeImage, Reverse: true}
}

// Fetch downloads the export and returns one record per data row. A sheet
// missing a required column is logged and reported as a ParseError.
func (c *Client) Fetch(ctx context.Context) ([]content.RawRecord, error) {
	if strings.TrimSpace(c.exportURL) == "" {
		return nil, &content.ConfigurationError{Source: sourceName, Field: "url", Reason: "is required"}
	}

	body, err := c.download(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := c.parseRows(body)
	if err != nil {
		c.log.Warn("spreadsheet could not be parsed", logger.Error(err))
		return nil, err
	}

	records, err := recordsFromRows(rows)
	if err != nil {
		c.log.Warn("spreadsheet is missing required columns", logger.Error(err))
		return nil, err
	}
	return records, nil
}

func (c *Client) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.exportURL, nil)
	if err != nil {
		return nil, &content.ConfigurationError{Source: sourceName, Field: "url", Reason: fmt.Sprintf("is invalid: %v", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &content.FetchError{Source: sourceName, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &content.FetchError{Source: sourceName, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &content.FetchError{Source: sourceName, Err: fmt.Errorf("failed to read export: %w", err)}
	}
	return body, nil
}

func (c *Client) parseRows(body []byte) ([][]string, error) {
	if c.format == FormatXLSX {
		return parseXLSX(body)
	}
	return parseCSV(body)
}

func parseCSV(body []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, &content.ParseError{Source: sourceName, Reason: "malformed csv", Err: err}
	}
	return rows, nil
}

func parseXLSX(body []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		return nil, &content.ParseError{Source: sourceName, Reason: "malformed xlsx", Err: err}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &content.ParseError{Source: sourceName, Reason: "workbook has no sheets"}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &content.ParseError{Source: sourceName, Reason: "unreadable sheet " + sheets[0], Err: err}
	}
	return rows, nil
}

// recordsFromRows maps data rows to records using the header row.
func recordsFromRows(rows [][]string) ([]content.RawRecord, error) {
	if len(rows) == 0 {
		return nil, &content.ParseError{Source: sourceName, Reason: "export has no header row"}
	}

	columns := indexHeader(rows[0])
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &content.ParseError{
			Source: sourceName,
			Reason: "missing required column(s): " + strings.Join(missing, ", "),
		}
	}

	records := make([]content.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		records = append(records, content.RawRecord{
			ID:           cell(row, columns, ColumnID),
			Name:         cell(row, columns, ColumnName),
			Type:         cell(row, columns, ColumnType),
			URL:          cell(row, columns, ColumnLinks),
			ThumbnailURL: cell(row, columns, ColumnThumbnail),
			CreatedAt:    cell(row, columns, ColumnCreatedAt),
		})
	}
	return records, nil
}

func indexHeader(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := columns[key]; !dup && key != "" {
			columns[key] = i
		}
	}
	return columns
}

func cell(row []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
