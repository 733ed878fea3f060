package config

import (
	"fmt"
	"net/url"

	"github.com/hashicorp/go-multierror"
	"github.com/robfig/cron/v3"
)

// ValidationError describes one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CronParser parses poll schedules. It accepts standard five-field specs
// and descriptors such as "@every 30s".
var CronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate reports every structural problem in cfg at once. Missing source
// identifiers are not checked here: the adapters report them as
// configuration errors when a fetch is attempted.
func (c *Config) Validate() error {
	var result *multierror.Error

	switch c.Source.Kind {
	case KindSample, KindDrive:
	case KindSpreadsheet:
		if f := c.Source.Spreadsheet.Format; f != "csv" && f != "xlsx" {
			result = multierror.Append(result, &ValidationError{"source.spreadsheet.format", "must be csv or xlsx"})
		}
		if u := c.Source.Spreadsheet.URL; u != "" && !isHTTPURL(u) {
			result = multierror.Append(result, &ValidationError{"source.spreadsheet.url", "must be an http(s) URL"})
		}
	case KindBucket:
		if u := c.Source.Bucket.BaseURL; u != "" && !isHTTPURL(u) {
			result = multierror.Append(result, &ValidationError{"source.bucket.base_url", "must be an http(s) URL"})
		}
	default:
		result = multierror.Append(result, &ValidationError{"source.kind",
			fmt.Sprintf("unknown kind %q (want sample, spreadsheet, bucket or drive)", c.Source.Kind)})
	}

	if c.Poll.Interval <= 0 {
		result = multierror.Append(result, &ValidationError{"poll.interval", "must be positive"})
	}
	if c.Poll.Schedule != "" {
		if _, err := CronParser.Parse(c.Poll.Schedule); err != nil {
			result = multierror.Append(result, &ValidationError{"poll.schedule", err.Error()})
		}
	}
	if u := c.Generate.WebhookURL; u != "" && !isHTTPURL(u) {
		result = multierror.Append(result, &ValidationError{"generate.webhook_url", "must be an http(s) URL"})
	}

	return result.ErrorOrNil()
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
