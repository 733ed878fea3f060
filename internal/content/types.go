// Package content defines the canonical content model shared by every
// source adapter and consumer of the gallery.
package content

import "strings"

// Type is the media kind of a content item.
type Type string

const (
	TypeImage Type = "image"
	TypeVideo Type = "video"
	TypeText  Type = "text"
)

// Types lists the valid media kinds in display order.
var Types = []Type{TypeImage, TypeVideo, TypeText}

// Valid reports whether t is one of the fixed media kinds.
func (t Type) Valid() bool {
	switch t {
	case TypeImage, TypeVideo, TypeText:
		return true
	}
	return false
}

// ParseType normalizes s and returns the matching Type.
// The second result is false when s is not a known kind.
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// EmbedKind identifies how an item is previewed inline.
type EmbedKind string

const (
	EmbedYouTube     EmbedKind = "youtube"
	EmbedVimeo       EmbedKind = "vimeo"
	EmbedImage       EmbedKind = "image"
	EmbedFrame       EmbedKind = "frame"
	EmbedPlaceholder EmbedKind = "placeholder"
)

// Placeholder names what is shown when a preview fails to load.
type Placeholder string

const (
	PlaceholderImageFailed        Placeholder = "image-failed"
	PlaceholderPreviewUnavailable Placeholder = "preview-unavailable"
)

// Embed is the resolved inline preview for an item.
type Embed struct {
	Kind        EmbedKind   `json:"kind"`
	Src         string      `json:"src"`
	VideoID     string      `json:"videoId,omitempty"`
	Sandbox     string      `json:"sandbox,omitempty"`
	Fallback    Placeholder `json:"fallback,omitempty"`
	Placeholder Placeholder `json:"placeholder,omitempty"`
}

// Failed returns the embed that replaces e after its preview failed to load.
// Src is kept so the original location stays visible.
func (e Embed) Failed() Embed {
	fallback := e.Fallback
	if fallback == "" {
		fallback = PlaceholderPreviewUnavailable
	}
	return Embed{Kind: EmbedPlaceholder, Src: e.Src, Placeholder: fallback}
}

// Item is the canonical unit displayed in the gallery.
type Item struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         Type   `json:"type"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	// Glyph names the placeholder icon shown instead of a thumbnail. It is
	// set only when ThumbnailURL is empty.
	Glyph        string `json:"glyph,omitempty"`
	CreatedAt    string `json:"createdAt"`
	Embed        Embed  `json:"embed"`
}

// RawRecord is one listing entry as yielded by a source adapter, before
// normalization. Fields a backend does not provide are left empty.
type RawRecord struct {
	ID           string
	Name         string
	Path         string
	Type         string
	MIMEType     string
	URL          string
	ThumbnailURL string
	CreatedAt    string
}

// Policy carries the per-adapter normalization rules.
type Policy struct {
	// StripExtension drops everything from the first "." in the name.
	StripExtension bool
	// UnknownType is used when neither the record nor its URL reveal a type.
	UnknownType    Type
	// Reverse flips the listing so the last record is shown first.
	Reverse        bool
	// MIMEOnly decides the type from the explicit type or MIME type alone.
	// File extensions are ignored, so anything else gets UnknownType.
	MIMEOnly       bool
}
