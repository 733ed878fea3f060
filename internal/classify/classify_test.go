package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gauthierbraillon/mediamix/internal/content"
)

func TestAC100_InferType_ExplicitTypeWinsOverExtension(t *testing.T) {
	got := InferType("video", "", "https://x/cat.png", content.TypeImage)

	assert.Equal(t, content.TypeVideo, got, "explicit type from the backend should override extension sniffing")
}

func TestAC100_InferType_InvalidExplicitTypeFallsBackToExtension(t *testing.T) {
	got := InferType("animation", "", "https://x/clip.MOV", content.TypeImage)

	assert.Equal(t, content.TypeVideo, got)
}

func TestAC101_InferType_Extensions(t *testing.T) {
	tests := []struct {
		ref  string
		want content.Type
	}{
		{"https://cdn.example.com/a/b/clip.mp4", content.TypeVideo},
		{"https://cdn.example.com/clip.webm?token=1", content.TypeVideo},
		{"movie.mkv", content.TypeVideo},
		{"render.avi", content.TypeVideo},
		{"https://cdn.example.com/pic.JPEG", content.TypeImage},
		{"logo.svg", content.TypeImage},
		{"anim.gif#frame", content.TypeImage},
		{"still.webp", content.TypeImage},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InferType("", "", tt.ref, content.TypeText), "ref %q", tt.ref)
	}
}

func TestAC102_InferType_UnknownUsesAdapterFallback(t *testing.T) {
	assert.Equal(t, content.TypeText, InferType("", "", "notes.md", content.TypeText))
	assert.Equal(t, content.TypeImage, InferType("", "", "notes.md", content.TypeImage))
	assert.Equal(t, content.TypeText, InferType("", "", "notes.md", ""), "an invalid fallback should degrade to text")
}

func TestAC103_InferType_MIMESubstring(t *testing.T) {
	assert.Equal(t, content.TypeVideo, InferType("", "video/mp4", "", content.TypeImage))
	assert.Equal(t, content.TypeImage, InferType("", "image/png", "", content.TypeText))
	assert.Equal(t, content.TypeText, InferType("", "application/pdf", "report.png", content.TypeImage),
		"a MIME type without video or image maps to text regardless of name")
	assert.Equal(t, content.TypeVideo, FromMIME("application/vnd.google-apps.video"))
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "png", Extension("https://x/cat.png?w=400"))
	assert.Equal(t, "jpg", Extension("photo.final.jpg"))
	assert.Equal(t, "", Extension("https://x/folder/"))
	assert.Equal(t, "", Extension("Cat"))
}

func TestGlyph(t *testing.T) {
	assert.Equal(t, "video", Glyph(content.TypeVideo))
	assert.Equal(t, "image", Glyph(content.TypeImage))
	assert.Equal(t, "file-text", Glyph(content.TypeText))
}
