package normalize

import (
	"regexp"
	"strings"
)

// Policy holds the patterns used to scrub formatted transcript text. Every
// field is optional; a nil pattern disables that rule.
type Policy struct {
	// MetadataLine matches header lines echoed from the prompt preamble.
	MetadataLine *regexp.Regexp
	// TranscriptLabel matches a leading "Transcript:" label. The text after
	// the label is kept.
	TranscriptLabel *regexp.Regexp
	// CreditLine matches caption credit lines anywhere in the text.
	CreditLine *regexp.Regexp
	// StageDirection matches inline non-speech markers such as [Music].
	StageDirection *regexp.Regexp
	// Timestamp matches a leading timestamp on a line.
	Timestamp *regexp.Regexp
}

var (
	separatorRE = regexp.MustCompile(`^[-=_*]{3,}$`)
	spacesRE    = regexp.MustCompile(`[ \t]{2,}`)
	blankRunRE  = regexp.MustCompile(`\n{3,}`)
)

func DefaultPolicy() Policy {
	return Policy{
		MetadataLine:    regexp.MustCompile(`(?i)^(?:\*\*)?(?:title|video\s*id|id|url|channel(?:\s*name)?|published(?:\s*(?:at|on|date))?|upload\s*date|processing\s*style)(?:\*\*)?\s*:`),
		TranscriptLabel: regexp.MustCompile(`(?i)^(?:\*\*)?transcript(?:\*\*)?\s*:\s*`),
		CreditLine:      regexp.MustCompile(`(?i)^(?:transcriber|reviewer|translator|translated by|transcribed by|subtitles by|captions by|reviewed by)\b`),
		StageDirection:  regexp.MustCompile(`(?i)\[[A-Za-z ]+\]|\((?:music|applause|laughter|laughs|inaudible|silence|cheering)\)|♪`),
		Timestamp:       regexp.MustCompile(`^(?:\[?\(?\d{1,2}:\d{2}(?::\d{2})?\)?\]?\s*)+`),
	}
}

// StripMetadata removes the echoed header block, credits, stage directions,
// and leading timestamps. The result is stable: cleaning it again is a no-op.
// Every pass that changes s makes it shorter, so the loop terminates.
func (p Policy) StripMetadata(s string) string {
	for {
		next := p.clean(s)
		if next == s {
			return s
		}
		s = next
	}
}

func (p Policy) clean(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")

	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if p.StageDirection != nil {
			ln = stripAll(p.StageDirection, ln)
		}
		ln = spacesRE.ReplaceAllString(ln, " ")
		if p.Timestamp != nil {
			ln = p.Timestamp.ReplaceAllString(ln, "")
		}
		ln = strings.TrimSpace(ln)
		if p.CreditLine != nil && p.CreditLine.MatchString(ln) {
			continue
		}
		out = append(out, ln)
	}

	out = p.dropHeader(out)
	s = strings.Join(out, "\n")
	s = blankRunRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// dropHeader removes leading blank, separator, and metadata lines.
func (p Policy) dropHeader(lines []string) []string {
	for len(lines) > 0 {
		ln := lines[0]
		switch {
		case ln == "", separatorRE.MatchString(ln):
		case p.MetadataLine != nil && p.MetadataLine.MatchString(ln):
		case p.TranscriptLabel != nil && p.TranscriptLabel.MatchString(ln):
			rest := strings.TrimSpace(p.TranscriptLabel.ReplaceAllString(ln, ""))
			if rest == "" {
				lines = lines[1:]
				continue
			}
			lines[0] = rest
			return lines
		default:
			return lines
		}
		lines = lines[1:]
	}
	return lines
}

// stripAll removes matches of re until none remain, so nested markers such as
// "[[Music] intro]" go in one pass.
func stripAll(re *regexp.Regexp, s string) string {
	for {
		next := re.ReplaceAllString(s, "")
		if next == s {
			return s
		}
		s = next
	}
}
