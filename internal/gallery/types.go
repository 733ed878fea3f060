package gallery

import "github.com/gauthierbraillon/mediamix/internal/content"

// ViewOptions narrows what View returns.
type ViewOptions struct {
	// Types keeps only the listed media kinds. Empty means all kinds.
	Types []content.Type
	// Limit caps the number of items. Zero means no limit.
	Limit int
}

// Snapshot is one published version of the gallery.
type Snapshot struct {
	Version uint64
	Items   []content.Item
}
