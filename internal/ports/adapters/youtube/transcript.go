package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/forPelevin/ytdigest/internal/types"
)

const playerResponseMarker = "ytInitialPlayerResponse = "

type playerResp struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

type timedText struct {
	Lines []struct {
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
		Text  string  `xml:",chardata"`
	} `xml:"text"`
}

// FetchTranscript reads the caption tracks embedded in the watch page and
// downloads the best match for the configured languages.
func (c *Client) FetchTranscript(ctx context.Context, videoID string) ([]types.TranscriptSegment, error) {
	page, err := c.get(ctx, c.watchBase+"/watch?v="+url.QueryEscape(videoID), types.ErrNotFound, 6<<20)
	if err != nil {
		return nil, fmt.Errorf("watch page %s: %w", videoID, err)
	}

	idx := strings.Index(string(page), playerResponseMarker)
	if idx < 0 {
		return nil, fmt.Errorf("video %s: player response not found: %w", videoID, types.ErrTranscriptUnavailable)
	}
	raw := extractJSON(page[idx+len(playerResponseMarker):])
	if raw == nil {
		return nil, fmt.Errorf("video %s: malformed player response: %w", videoID, types.ErrTranscriptUnavailable)
	}
	var pr playerResp
	if err := json.Unmarshal(raw, &pr); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}
	if pr.Captions == nil || len(pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks) == 0 {
		reason := "transcripts are disabled"
		if pr.PlayabilityStatus != nil && pr.PlayabilityStatus.Reason != "" {
			reason = pr.PlayabilityStatus.Reason
		}
		return nil, fmt.Errorf("video %s: %s: %w", videoID, reason, types.ErrTranscriptUnavailable)
	}

	track, ok := pickBestTrack(pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks, c.langs)
	if !ok {
		return nil, fmt.Errorf("video %s: no fetchable caption track: %w", videoID, types.ErrTranscriptUnavailable)
	}
	body, err := c.get(ctx, track.BaseURL, types.ErrTranscriptUnavailable, 2<<20)
	if err != nil {
		return nil, fmt.Errorf("timedtext %s: %w", videoID, err)
	}
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	segs := make([]types.TranscriptSegment, 0, len(tt.Lines))
	for _, l := range tt.Lines {
		text := strings.TrimSpace(html.UnescapeString(l.Text))
		if text == "" {
			continue
		}
		segs = append(segs, types.TranscriptSegment{Text: text, Start: l.Start, Duration: l.Dur})
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("video %s: empty caption track: %w", videoID, types.ErrTranscriptUnavailable)
	}
	return segs, nil
}

// pickBestTrack prefers a manual track in a requested language, then an
// auto-generated one, then any English track. Tracks that need a browser
// proof-of-origin token are skipped.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if t.BaseURL != "" && !strings.Contains(t.BaseURL, "&exp=xpe") {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

// extractJSON returns the JSON object starting at b[0] by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr, escaped := false, false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
