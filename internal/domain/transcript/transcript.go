package transcript

import (
	"fmt"
	"strings"
	"time"

	"github.com/forPelevin/ytdigest/internal/types"
)

// JoinSegments renders caption segments as plain text, one segment per line.
// Blank segments are dropped.
func JoinSegments(segs []types.TranscriptSegment) string {
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

// JoinTimed is JoinSegments with a "[m:ss]" prefix on every line.
func JoinTimed(segs []types.TranscriptSegment) string {
	var b strings.Builder
	for _, s := range segs {
		t := strings.TrimSpace(s.Text)
		if t == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("[" + Clock(dur(s.Start)) + "] " + t)
	}
	return b.String()
}

// Clock formats d as m:ss, or h:mm:ss past the hour.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	if hs > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hs, ms, s)
	}
	return fmt.Sprintf("%d:%02d", ms, s)
}

func dur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
