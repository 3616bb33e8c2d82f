package normalize

import (
	"regexp"
	"strings"

	"github.com/forPelevin/ytdigest/internal/types"
)

// FieldExtraction recovers individual fields from malformed output by locating
// each key and scanning its value. Unterminated strings are accepted so a
// truncated response still yields the text it contains.
type FieldExtraction struct{}

func (FieldExtraction) Name() string { return "extract" }

func (FieldExtraction) Parse(raw string) (types.NormalizedResult, bool) {
	s := stripFences(raw)
	res := types.NormalizedResult{
		FormattedText:         extractText(s, "formatted_text"),
		Summary:               extractText(s, "summary"),
		Tags:                  splitTags(extractList(s, "tags")),
		KeyPoints:             extractList(s, "key_points"),
		ResearchImplications:  extractList(s, "research_implications"),
		CodeSnippets:          extractList(s, "code_snippets"),
		TechnicalConcepts:     extractList(s, "technical_concepts"),
		MarketInsights:        extractList(s, "market_insights"),
		StrategicImplications: extractList(s, "strategic_implications"),
	}
	return res, !res.IsEmpty()
}

var keyPatterns = map[string]*regexp.Regexp{}

func init() {
	for _, f := range []string{
		"formatted_text", "summary", "tags", "key_points",
		"research_implications", "code_snippets", "technical_concepts",
		"market_insights", "strategic_implications",
	} {
		keyPatterns[f] = regexp.MustCompile(`(?:^|[^A-Za-z0-9_])["']?` + f + `["']?\s*:\s*`)
	}
}

// valueStart returns the offset just past "key:" or -1.
func valueStart(s, field string) int {
	re, ok := keyPatterns[field]
	if !ok {
		return -1
	}
	loc := re.FindStringIndex(s)
	if loc == nil {
		return -1
	}
	return loc[1]
}

func extractText(s, field string) string {
	i := valueStart(s, field)
	if i < 0 || i >= len(s) {
		return ""
	}
	switch s[i] {
	case '"', '\'':
		v, _ := scanString(s[i:])
		return v
	case '[':
		return strings.Join(scanList(s[i:]), "\n\n")
	}
	return ""
}

func extractList(s, field string) []string {
	i := valueStart(s, field)
	if i < 0 || i >= len(s) {
		return nil
	}
	switch s[i] {
	case '[':
		return scanList(s[i:])
	case '"', '\'':
		if v, _ := scanString(s[i:]); strings.TrimSpace(v) != "" {
			return []string{v}
		}
	}
	return nil
}

// scanString reads a quoted value starting at s[0] and returns the decoded text
// and the number of bytes consumed. A missing closing quote consumes the rest.
func scanString(s string) (string, int) {
	quote := s[0]
	var b strings.Builder
	escaped := false
	for i := 1; i < len(s); i++ {
		c := s[i]
		if escaped {
			switch c {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
			case 'u':
				if i+4 < len(s) {
					if r, ok := hexRune(s[i+1 : i+5]); ok {
						b.WriteRune(r)
						i += 4
						break
					}
				}
				b.WriteByte(c)
			default:
				b.WriteByte(c)
			}
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case quote:
			return b.String(), i + 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), len(s)
}

func hexRune(h string) (rune, bool) {
	var r rune
	for i := 0; i < len(h); i++ {
		c := h[i]
		r <<= 4
		switch {
		case c >= '0' && c <= '9':
			r |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			r |= rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			r |= rune(c-'A') + 10
		default:
			return 0, false
		}
	}
	return r, true
}

// scanList reads quoted items from a "[...]" value starting at s[0]. It stops
// at the closing bracket or the end of input.
func scanList(s string) []string {
	var out []string
	for i := 1; i < len(s); {
		switch c := s[i]; c {
		case ']':
			return out
		case '"', '\'':
			v, n := scanString(s[i:])
			out = append(out, v)
			i += n
		default:
			i++
		}
	}
	return out
}
