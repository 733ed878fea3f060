// Package display provides terminal output formatting for mediamix.
package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/gauthierbraillon/mediamix/internal/classify"
	"github.com/gauthierbraillon/mediamix/internal/content"
	"github.com/gauthierbraillon/mediamix/internal/poller"
)

const separator = " • "

// TerminalFormatter formats gallery items for terminal display.
type TerminalFormatter struct {
	now func() time.Time
}

// NewTerminalFormatter creates a new terminal formatter.
func NewTerminalFormatter() *TerminalFormatter {
	return &TerminalFormatter{now: time.Now}
}

// FormatItem formats a single item for display.
func (f *TerminalFormatter) FormatItem(item content.Item) string {
	var lines []string

	// Header: [VIDEO] Name
	lines = append(lines, fmt.Sprintf("[%s] %s", strings.ToUpper(string(item.Type)), item.Name))

	meta := "  " + f.FormatTimestamp(item.CreatedAt) + separator + f.formatPreview(item) + separator + formatThumbnail(item)
	lines = append(lines, meta)

	if item.URL != "" {
		lines = append(lines, "  "+item.URL)
	}

	return strings.Join(lines, "\n") + "\n"
}

// formatPreview describes how the item is previewed inline.
func (f *TerminalFormatter) formatPreview(item content.Item) string {
	e := item.Embed
	switch e.Kind {
	case content.EmbedYouTube:
		return "YouTube " + e.VideoID
	case content.EmbedVimeo:
		return "Vimeo " + e.VideoID
	case content.EmbedImage:
		return "image preview"
	case content.EmbedFrame:
		return "web preview"
	case content.EmbedPlaceholder:
		if e.Placeholder == content.PlaceholderImageFailed {
			return "image failed to load"
		}
		return "preview unavailable"
	}
	return string(e.Kind)
}

// formatThumbnail reports the thumbnail, or the glyph shown in its place.
func formatThumbnail(item content.Item) string {
	if item.ThumbnailURL != "" {
		return "thumbnail"
	}
	glyph := item.Glyph
	if glyph == "" {
		glyph = classify.Glyph(item.Type)
	}
	return "glyph: " + glyph
}

// FormatGallery formats multiple items for display.
func (f *TerminalFormatter) FormatGallery(items []content.Item) string {
	if len(items) == 0 {
		return "No items to display.\n"
	}

	var formatted []string
	for _, item := range items {
		formatted = append(formatted, f.FormatItem(item))
	}

	return strings.Join(formatted, "\n---\n\n")
}

// FormatPartitions formats one section per media kind.
func (f *TerminalFormatter) FormatPartitions(parts map[content.Type][]content.Item) string {
	var b strings.Builder
	for _, t := range content.Types {
		items := parts[t]
		fmt.Fprintf(&b, "== %s (%d) ==\n", strings.ToUpper(string(t)), len(items))
		for _, item := range items {
			fmt.Fprintf(&b, "  %s%s%s\n", item.Name, separator, f.TruncateText(item.URL, 60))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatDelta announces new items.
func (f *TerminalFormatter) FormatDelta(d poller.Delta) string {
	if d.Added == 1 {
		return fmt.Sprintf("1 new item in %s (now %d)\n", d.Source, d.Current)
	}
	return fmt.Sprintf("%d new items in %s (now %d)\n", d.Added, d.Source, d.Current)
}

// FormatNotice formats a refresh failure.
func (f *TerminalFormatter) FormatNotice(n poller.Notice) string {
	return "! " + n.Message + "\n"
}

// FormatTimestamp formats a creation time as relative time. Date-only
// values are shown as dates; unparseable values are shown as is.
func (f *TerminalFormatter) FormatTimestamp(raw string) string {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.Format("Jan 2, 2006")
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}

	diff := f.now().Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return pluralize(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return pluralize(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return pluralize(int(diff.Hours()/24), "day")
	default:
		return t.Format("Jan 2, 2006")
	}
}

// pluralize returns "N unit ago" or "N units ago" based on count.
func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// TruncateText truncates text to maxLen runes, adding "..." if truncated.
func (f *TerminalFormatter) TruncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(runes[:maxLen-3]) + "..."
}
