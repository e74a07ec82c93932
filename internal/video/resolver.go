// Package video classifies user-supplied video URLs and derives embeddable
// player URLs. It performs no network I/O.
package video

import (
	"regexp"
	"strings"
)

// Platform identifies where a video is hosted.
type Platform string

const (
	PlatformYouTube Platform = "youtube"
	PlatformVimeo   Platform = "vimeo"
	PlatformDirect  Platform = "direct"
)

var (
	// Watch, share, /embed/, /v/ and query-parameter forms on youtube.com,
	// plus the youtu.be short link. The id is always 11 characters.
	youtubeRe = regexp.MustCompile(`(?:https?://)?(?:www\.)?(?:youtube\.com/(?:[^/\n\s]+/\S+/|(?:v|e(?:mbed)?)/|\S*?[?&]v=)|youtu\.be/)([a-zA-Z0-9_-]{11})`)
	vimeoRe   = regexp.MustCompile(`(?:https?://)?(?:www\.)?vimeo\.com/(\d+)`)
	directRe  = regexp.MustCompile(`(?i)\.(mp4|webm|ogg|mov|avi)(\?.*)?$`)
)

// Reference is the outcome of resolving a URL. When Valid is false the
// other fields are empty.
type Reference struct {
	Valid    bool     `json:"valid"`
	Platform Platform `json:"platform,omitempty"`
	EmbedURL string   `json:"embedUrl,omitempty"`
}

// Resolve classifies url. YouTube is tried first, then Vimeo, then direct
// file extensions; the first match wins.
func Resolve(url string) Reference {
	if strings.TrimSpace(url) == "" {
		return Reference{}
	}

	if m := youtubeRe.FindStringSubmatch(url); m != nil {
		return Reference{
			Valid:    true,
			Platform: PlatformYouTube,
			EmbedURL: "https://www.youtube.com/embed/" + m[1],
		}
	}

	if m := vimeoRe.FindStringSubmatch(url); m != nil {
		return Reference{
			Valid:    true,
			Platform: PlatformVimeo,
			EmbedURL: "https://player.vimeo.com/video/" + m[1],
		}
	}

	if directRe.MatchString(url) {
		return Reference{Valid: true, Platform: PlatformDirect, EmbedURL: url}
	}

	return Reference{}
}

// Valid reports whether url resolves to a playable reference.
func Valid(url string) bool {
	return Resolve(url).Valid
}
