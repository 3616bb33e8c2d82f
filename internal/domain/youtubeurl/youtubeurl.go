package youtubeurl

import (
	"regexp"
	"strings"
)

const idPart = `([\w-]{11})(?:$|[?&#/])`

var videoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:(?:https?:)?//)?(?:(?:www|m)\.)?youtube\.com/watch\?v=` + idPart),
	regexp.MustCompile(`^(?:(?:https?:)?//)?(?:(?:www|m)\.)?youtube\.com/shorts/` + idPart),
	regexp.MustCompile(`^(?:(?:https?:)?//)?(?:(?:www|m)\.)?youtube\.com/live/` + idPart),
	regexp.MustCompile(`^(?:(?:https?:)?//)?(?:(?:www|m)\.)?(?:youtube\.com|youtube-nocookie\.com)/embed/` + idPart),
	regexp.MustCompile(`^(?:(?:https?:)?//)?youtu\.be/` + idPart),
}

var playlistRE = regexp.MustCompile(`^(?:(?:https?:)?//)?(?:(?:www|m)\.)?youtube\.com/playlist\?list=([\w-]+)`)

// Validate reports whether url is a video or playlist URL in one of the
// accepted forms.
func Validate(url string) bool {
	url = strings.TrimSpace(url)
	return VideoID(url) != "" || PlaylistID(url) != ""
}

// VideoID extracts the 11-character video ID, or "" when url is not a video URL.
func VideoID(url string) string {
	url = strings.TrimSpace(url)
	for _, re := range videoPatterns {
		if m := re.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}

// PlaylistID extracts the list parameter of a playlist URL, or "".
func PlaylistID(url string) string {
	m := playlistRE.FindStringSubmatch(strings.TrimSpace(url))
	if m == nil {
		return ""
	}
	return m[1]
}
