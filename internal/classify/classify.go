// Package classify decides the media type of a listing entry and how its
// resource should be previewed inline.
package classify

import (
	"net/url"
	"path"
	"strings"

	"github.com/gauthierbraillon/mediamix/internal/content"
)

// FrameSandbox restricts generic embedded frames to these capabilities.
const FrameSandbox = "allow-scripts allow-same-origin allow-popups allow-forms"

var (
	videoExtensions = map[string]bool{"mp4": true, "mov": true, "avi": true, "webm": true, "mkv": true}
	imageExtensions = map[string]bool{"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true, "svg": true}
)

// InferType picks an item's media kind. An explicit, valid type from the
// backend wins. Otherwise a MIME type decides when present, then the file
// extension of ref. fallback covers everything else.
func InferType(explicit, mimeType, ref string, fallback content.Type) content.Type {
	if t, ok := content.ParseType(explicit); ok {
		return t
	}
	if mimeType != "" {
		return FromMIME(mimeType)
	}
	if t, ok := FromExtension(ref); ok {
		return t
	}
	if fallback.Valid() {
		return fallback
	}
	return content.TypeText
}

// FromMIME maps a MIME type to a media kind by substring match.
func FromMIME(mimeType string) content.Type {
	switch m := strings.ToLower(mimeType); {
	case strings.Contains(m, "video"):
		return content.TypeVideo
	case strings.Contains(m, "image"):
		return content.TypeImage
	default:
		return content.TypeText
	}
}

// FromExtension maps the file extension of ref (a URL, path, or file name)
// to a media kind.
func FromExtension(ref string) (content.Type, bool) {
	ext := Extension(ref)
	switch {
	case videoExtensions[ext]:
		return content.TypeVideo, true
	case imageExtensions[ext]:
		return content.TypeImage, true
	}
	return "", false
}

// Extension returns the lower-cased extension of the last path segment of
// ref, without the dot. Query strings and fragments are ignored.
func Extension(ref string) string {
	p := ref
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		p = u.Path
	} else {
		p = cutAny(p, "?#")
	}
	ext := path.Ext(p)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsImageURL reports whether ref points directly at an image file.
func IsImageURL(ref string) bool {
	return imageExtensions[Extension(ref)]
}

// Glyph names the placeholder icon shown for items without a thumbnail.
func Glyph(t content.Type) string {
	switch t {
	case content.TypeVideo:
		return "video"
	case content.TypeImage:
		return "image"
	default:
		return "file-text"
	}
}

// cutAny truncates s at the first occurrence of any byte in chars.
func cutAny(s, chars string) string {
	if i := strings.IndexAny(s, chars); i >= 0 {
		return s[:i]
	}
	return s
}
