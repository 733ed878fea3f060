package source

import (
	"context"

	"github.com/gauthierbraillon/mediamix/internal/content"
)

// Static serves a fixed listing. It backs the sample gallery shown before
// a real backend is configured, and doubles as a test fixture.
type Static struct {
	name    string
	records []content.RawRecord
}

// NewStatic creates a Static source named name.
func NewStatic(name string, records []content.RawRecord) *Static {
	return &Static{name: name, records: records}
}

func (s *Static) Name() string { return s.name }

func (s *Static) Policy() content.Policy {
	return content.Policy{UnknownType: content.TypeText}
}

// Fetch returns a copy of the listing.
func (s *Static) Fetch(ctx context.Context) ([]content.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]content.RawRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Sample returns the demonstration gallery.
func Sample() *Static {
	return NewStatic("sample", []content.RawRecord{
		{ID: "1", Name: "AI Generated Landscape", Type: "image", URL: "#",
			ThumbnailURL: "https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=400&h=300&fit=crop", CreatedAt: "2024-01-20"},
		{ID: "2", Name: "Product Demo Animation", Type: "video", URL: "#",
			ThumbnailURL: "https://images.unsplash.com/photo-1551288049-bebda4e38f71?w=400&h=300&fit=crop", CreatedAt: "2024-01-19"},
		{ID: "3", Name: "Abstract Art Creation", Type: "image", URL: "#",
			ThumbnailURL: "https://images.unsplash.com/photo-1541961017774-22349e4a1262?w=400&h=300&fit=crop", CreatedAt: "2024-01-18"},
		{ID: "4", Name: "Tutorial Video", Type: "video", URL: "#",
			ThumbnailURL: "https://images.unsplash.com/photo-1611224923853-80b023f02d71?w=400&h=300&fit=crop", CreatedAt: "2024-01-17"},
		{ID: "5", Name: "Brand Identity Design", Type: "image", URL: "#",
			ThumbnailURL: "https://images.unsplash.com/photo-1561070791-2526d30994b5?w=400&h=300&fit=crop", CreatedAt: "2024-01-16"},
		{ID: "6", Name: "Motion Graphics Reel", Type: "video", URL: "#",
			ThumbnailURL: "https://images.unsplash.com/photo-1574717024653-61fd2cf4d44d?w=400&h=300&fit=crop", CreatedAt: "2024-01-15"},
	})
}
