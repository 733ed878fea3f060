// Package source selects the backend a gallery reads from.
package source

import (
	"context"
	"net/http"

	"github.com/gauthierbraillon/mediamix/internal/bucket"
	"github.com/gauthierbraillon/mediamix/internal/config"
	"github.com/gauthierbraillon/mediamix/internal/content"
	"github.com/gauthierbraillon/mediamix/internal/drive"
	"github.com/gauthierbraillon/mediamix/internal/logger"
	"github.com/gauthierbraillon/mediamix/internal/spreadsheet"
)

// Source fetches one backend's listing as raw records.
// Implementations are read-only and idempotent.
type Source interface {
	Name() string
	Policy() content.Policy
	Fetch(ctx context.Context) ([]content.RawRecord, error)
}

// HTTPClient is the transport shared by every HTTP-based adapter.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures adapter construction.
type Option func(*options)

type options struct {
	httpClient HTTPClient
	log        logger.Logger
}

// WithHTTPClient sets the transport used by the adapter.
func WithHTTPClient(c HTTPClient) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithLogger sets the adapter logger.
func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// New builds the adapter selected by cfg.Kind.
func New(cfg config.SourceConfig, opts ...Option) (Source, error) {
	o := options{httpClient: &http.Client{}, log: logger.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log.With(logger.String("source", cfg.Kind))

	switch cfg.Kind {
	case config.KindSample, "":
		return Sample(), nil
	case config.KindSpreadsheet:
		return spreadsheet.NewClient(cfg.Spreadsheet.URL,
			spreadsheet.WithFormat(spreadsheet.Format(cfg.Spreadsheet.Format)),
			spreadsheet.WithHTTPClient(o.httpClient),
			spreadsheet.WithLogger(log),
		), nil
	case config.KindBucket:
		return bucket.NewClient(cfg.Bucket.BaseURL, cfg.Bucket.Bucket,
			bucket.WithPrefix(cfg.Bucket.Prefix),
			bucket.WithAPIKey(cfg.Bucket.APIKey),
			bucket.WithHTTPClient(o.httpClient),
			bucket.WithLogger(log),
		), nil
	case config.KindDrive:
		return drive.NewClient(cfg.Drive.FolderID, cfg.Drive.APIKey,
			drive.WithBaseURL(cfg.Drive.BaseURL),
			drive.WithHTTPClient(o.httpClient),
			drive.WithLogger(log),
		), nil
	default:
		return nil, &content.ConfigurationError{Source: "source", Field: "kind", Reason: "is unknown: " + cfg.Kind}
	}
}
