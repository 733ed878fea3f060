package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gauthierbraillon/mediamix/internal/content"
)

func TestAC110_ResolveEmbed_YouTubeBeatsImageExtension(t *testing.T) {
	e := ResolveEmbed("https://www.youtube.com/watch?v=dQw4w9WgXcQ&still=cover.png")

	assert.Equal(t, content.EmbedYouTube, e.Kind, "platform rules must be checked before the image rule")
	assert.Equal(t, "dQw4w9WgXcQ", e.VideoID)
	assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ", e.Src)
}

func TestAC110_ResolveEmbed_YouTubeLinkEndingInImageExtension(t *testing.T) {
	e := ResolveEmbed("https://youtu.be/abc123.png")

	assert.Equal(t, content.EmbedYouTube, e.Kind)
	assert.Equal(t, "abc123", e.VideoID, "the file suffix is not part of the video id")
	assert.Equal(t, "https://www.youtube.com/embed/abc123", e.Src)
}

func TestAC111_ResolveEmbed_YouTubeIDForms(t *testing.T) {
	tests := map[string]string{
		"https://youtu.be/abc123":                       "abc123",
		"https://youtu.be/abc123?t=42":                  "abc123",
		"https://www.youtube.com/watch?v=abc123&t=10s":  "abc123",
		"https://youtube.com/watch?feature=share&v=xyz": "xyz",
		"https://www.youtube.com/embed/emb1?autoplay=1": "emb1",
		"https://www.youtube.com/shorts/short9":         "short9",
		"https://YOUTU.BE/abc123":                       "abc123",
		"https://WWW.YOUTUBE.COM/EMBED/Mixed_Case-1":    "Mixed_Case-1",
		"https://youtu.be/abc123.png":                   "abc123",
	}
	for in, want := range tests {
		e := ResolveEmbed(in)
		assert.Equal(t, content.EmbedYouTube, e.Kind, "url %q", in)
		assert.Equal(t, want, e.VideoID, "url %q", in)
	}
}

func TestAC112_ResolveEmbed_YouTubeWithoutIDFallsThrough(t *testing.T) {
	assert.Equal(t, content.EmbedImage, ResolveEmbed("https://www.youtube.com/channel/banner.png").Kind)

	e := ResolveEmbed("https://www.youtube.com/feed/subscriptions")
	assert.Equal(t, content.EmbedFrame, e.Kind)
	assert.Equal(t, FrameSandbox, e.Sandbox)
}

func TestAC113_ResolveEmbed_Vimeo(t *testing.T) {
	e := ResolveEmbed("https://vimeo.com/76979871?share=copy")

	assert.Equal(t, content.EmbedVimeo, e.Kind)
	assert.Equal(t, "76979871", e.VideoID)
	assert.Equal(t, "https://player.vimeo.com/video/76979871", e.Src)
}

func TestAC113_ResolveEmbed_VimeoNonNumericFallsThrough(t *testing.T) {
	e := ResolveEmbed("https://vimeo.com/channels/staffpicks")

	assert.Equal(t, content.EmbedFrame, e.Kind)
	assert.Equal(t, "https://vimeo.com/channels/staffpicks", e.Src)
}

func TestAC114_ResolveEmbed_DirectImage(t *testing.T) {
	e := ResolveEmbed("https://x/cat.png")

	assert.Equal(t, content.EmbedImage, e.Kind)
	assert.Equal(t, "https://x/cat.png", e.Src)
	assert.Equal(t, content.PlaceholderImageFailed, e.Fallback)
}

func TestAC115_ResolveEmbed_GenericFrame(t *testing.T) {
	e := ResolveEmbed("https://drive.google.com/file/d/123/view")

	assert.Equal(t, content.EmbedFrame, e.Kind)
	assert.Equal(t, "allow-scripts allow-same-origin allow-popups allow-forms", e.Sandbox)
	assert.Equal(t, content.PlaceholderPreviewUnavailable, e.Fallback)
}

func TestVimeoID(t *testing.T) {
	assert.Equal(t, "", VimeoID("https://example.com/123"))
	assert.Equal(t, "", VimeoID("https://vimeo.com/"))
	assert.Equal(t, "42", VimeoID("https://VIMEO.com/42/"))
}
