package document

import (
	"strings"
	"time"

	"github.com/forPelevin/ytdigest/internal/types"
)

var (
	rule   = strings.Repeat("-", 80)
	fence  = strings.Repeat("=", 80)
	layout = "January 2, 2006"
)

// Render builds the downloadable text document for a batch. Results are
// written in the order given.
func Render(results []types.Result) string {
	var b strings.Builder
	for _, r := range results {
		if rec, ok := r.Record(); ok {
			writeRecord(&b, rec)
			continue
		}
		f, _ := r.Failure()
		id := f.VideoID
		if id == "" {
			id = "unknown"
		}
		msg := f.Message
		if msg == "" {
			msg = "Unknown error"
		}
		line(&b, "Error processing video "+id+": "+msg)
		line(&b, fence)
		line(&b, "")
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeRecord(b *strings.Builder, r types.ProcessedRecord) {
	line(b, "Video Title: "+r.Title)
	line(b, "Video ID: "+r.VideoID)
	line(b, "Channel Name: "+r.ChannelName)
	line(b, "Published At: "+FormatDate(r.PublishedAt))
	line(b, "Processing Style: "+string(r.Style))
	line(b, rule)
	line(b, "Summary:")
	line(b, r.Summary)
	section(b, "Tags:", strings.Join(r.Tags, ", "))
	section(b, "Key Points:", bullets(r.KeyPoints))
	section(b, "Formatted Text:", r.FormattedText)

	if len(r.ResearchImplications) > 0 {
		section(b, "Research Implications:", bullets(r.ResearchImplications))
	}
	if len(r.CodeSnippets) > 0 {
		blocks := make([]string, len(r.CodeSnippets))
		for i, s := range r.CodeSnippets {
			blocks[i] = "```\n" + s + "\n```"
		}
		section(b, "Code Snippets:", strings.Join(blocks, "\n"))
	}
	if len(r.TechnicalConcepts) > 0 {
		section(b, "Technical Concepts:", bullets(r.TechnicalConcepts))
	}
	if len(r.MarketInsights) > 0 {
		section(b, "Market Insights:", bullets(r.MarketInsights))
	}
	if len(r.StrategicImplications) > 0 {
		section(b, "Strategic Implications:", bullets(r.StrategicImplications))
	}
	line(b, fence)
	line(b, "")
}

// FormatDate renders an RFC 3339 timestamp as "January 2, 2006". Empty input
// yields "Not available"; unparsable input is returned unchanged.
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Not available"
	}
	for _, l := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(l, s); err == nil {
			return t.Format(layout)
		}
	}
	return s
}

func section(b *strings.Builder, title, body string) {
	line(b, "")
	line(b, title)
	line(b, body)
}

func bullets(items []string) string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = "- " + it
	}
	return strings.Join(out, "\n")
}

func line(b *strings.Builder, s string) {
	b.WriteString(s)
	b.WriteByte('\n')
}
