// Package normalize turns raw listing records into canonical content items.
package normalize

import (
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gauthierbraillon/mediamix/internal/classify"
	"github.com/gauthierbraillon/mediamix/internal/content"
	"github.com/gauthierbraillon/mediamix/internal/logger"
)

// Option configures the Normalizer.
type Option func(*Normalizer)

// WithClock sets the clock used for records without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = now
	}
}

// WithLogger sets the logger used to report dropped records.
func WithLogger(log logger.Logger) Option {
	return func(n *Normalizer) {
		n.log = log
	}
}

// Normalizer maps raw records to items and annotates each with its embed.
type Normalizer struct {
	now func() time.Time
	log logger.Logger
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		now: time.Now,
		log: logger.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize converts records under policy. Records without a usable URL or
// identity are dropped. The result is never nil.
func (n *Normalizer) Normalize(records []content.RawRecord, policy content.Policy) []content.Item {
	items := make([]content.Item, 0, len(records))
	fetchedAt := n.now().UTC().Format(time.RFC3339)

	for _, rec := range records {
		rawURL := strings.TrimSpace(rec.URL)
		if !usableURL(rawURL) {
			n.log.Debug("dropping record without usable url",
				logger.String("name", rec.Name), logger.String("url", rec.URL))
			continue
		}

		id := firstNonEmpty(rec.ID, rec.Path, rec.Name)
		if id == "" {
			n.log.Debug("dropping record without identity", logger.String("url", rawURL))
			continue
		}

		createdAt := strings.TrimSpace(rec.CreatedAt)
		if createdAt == "" {
			createdAt = fetchedAt
		}

		ref := typeRef(rec, rawURL)
		if policy.MIMEOnly {
			ref = ""
		}
		item := content.Item{
			ID:           id,
			Name:         displayName(rec, policy.StripExtension),
			Type:         classify.InferType(rec.Type, rec.MIMEType, ref, policy.UnknownType),
			URL:          rawURL,
			ThumbnailURL: strings.TrimSpace(rec.ThumbnailURL),
			CreatedAt:    createdAt,
			Embed:        classify.ResolveEmbed(rawURL),
		}
		if item.ThumbnailURL == "" {
			item.Glyph = classify.Glyph(item.Type)
		}
		items = append(items, item)
	}

	if policy.Reverse {
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
	}
	return items
}

func usableURL(raw string) bool {
	if raw == "" {
		return false
	}
	_, err := url.Parse(raw)
	return err == nil
}

// displayName keeps everything before the first dot when stripping, which
// also truncates names such as "v1.2.final.png" to "v1".
func displayName(rec content.RawRecord, strip bool) string {
	name := strings.TrimSpace(rec.Name)
	if name == "" && rec.Path != "" {
		name = path.Base(rec.Path)
	}
	if strip {
		if head := strings.Split(name, ".")[0]; head != "" {
			name = head
		}
	}
	return name
}

// typeRef returns the first reference that carries a file extension.
func typeRef(rec content.RawRecord, rawURL string) string {
	for _, ref := range []string{rawURL, rec.Path, rec.Name} {
		if classify.Extension(ref) != "" {
			return ref
		}
	}
	return rawURL
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
