package classify

import (
	"strings"

	"github.com/gauthierbraillon/mediamix/internal/content"
)

// ResolveEmbed decides how rawURL is previewed. Platform rules run before
// the image rule, so a YouTube link that happens to end in ".png" is still
// embedded as a YouTube player.
func ResolveEmbed(rawURL string) content.Embed {
	lower := foldASCII(rawURL)

	if strings.Contains(lower, "youtube.com") || strings.Contains(lower, "youtu.be") {
		if id := YouTubeID(rawURL); id != "" {
			return content.Embed{
				Kind:     content.EmbedYouTube,
				Src:      "https://www.youtube.com/embed/" + id,
				VideoID:  id,
				Fallback: content.PlaceholderPreviewUnavailable,
			}
		}
	}

	if strings.Contains(lower, "vimeo.com") {
		if id := VimeoID(rawURL); id != "" {
			return content.Embed{
				Kind:     content.EmbedVimeo,
				Src:      "https://player.vimeo.com/video/" + id,
				VideoID:  id,
				Fallback: content.PlaceholderPreviewUnavailable,
			}
		}
	}

	if IsImageURL(rawURL) {
		return content.Embed{
			Kind:     content.EmbedImage,
			Src:      rawURL,
			Fallback: content.PlaceholderImageFailed,
		}
	}

	return content.Embed{
		Kind:     content.EmbedFrame,
		Src:      rawURL,
		Sandbox:  FrameSandbox,
		Fallback: content.PlaceholderPreviewUnavailable,
	}
}

// YouTubeID extracts the video id from a watch, short-link, embed or shorts
// URL. Host and path markers match case-insensitively. The id ends at the
// first character that cannot appear in one, so "youtu.be/abc123.png"
// yields "abc123". It returns "" when no id can be found.
func YouTubeID(rawURL string) string {
	folded := foldASCII(rawURL)
	start := queryParamStart(rawURL, "v")
	if start < 0 {
		for _, marker := range []string{"youtu.be/", "/embed/", "/shorts/"} {
			if i := strings.Index(folded, marker); i >= 0 {
				start = i + len(marker)
				break
			}
		}
	}
	if start < 0 {
		return ""
	}
	return videoID(rawURL[start:])
}

// VimeoID extracts the numeric video id following "vimeo.com/".
func VimeoID(rawURL string) string {
	i := strings.Index(foldASCII(rawURL), "vimeo.com/")
	if i < 0 {
		return ""
	}
	id := cutAny(rawURL[i+len("vimeo.com/"):], "/?#&")
	if id == "" {
		return ""
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return id
}

// videoID returns the leading run of [A-Za-z0-9_-] in s.
func videoID(s string) string {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' || c == '_' || c == '-') {
			return s[:i]
		}
	}
	return s
}

// foldASCII lower-cases ASCII letters only, so byte offsets into the
// result are valid in s.
func foldASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

// queryParamStart returns the index just past "name=" when it appears as a
// query parameter in rawURL, or -1.
func queryParamStart(rawURL, name string) int {
	for _, sep := range []string{"?", "&"} {
		if i := strings.Index(rawURL, sep+name+"="); i >= 0 {
			return i + len(sep) + len(name) + 1
		}
	}
	return -1
}
