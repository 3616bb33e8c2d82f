package types

import "strings"

// Style selects the instruction variant sent to the model.
type Style string

const (
	StyleDefault   Style = "default"
	StyleAcademic  Style = "academic"
	StyleTechnical Style = "technical"
	StyleBusiness  Style = "business"
)

type TranscriptSegment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

type VideoMetadata struct {
	Title       string `json:"title"`
	ChannelName string `json:"channel_name"`
	PublishedAt string `json:"published_at,omitempty"`
}

type VideoSummary struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
}

// TranscriptInput is one video ready for model processing.
// PublishedAt is an ISO-8601 timestamp or empty when unknown.
type TranscriptInput struct {
	VideoID        string `json:"video_id"`
	Title          string `json:"title"`
	ChannelName    string `json:"channel_name"`
	PublishedAt    string `json:"published_at,omitempty"`
	TranscriptText string `json:"transcript"`
}

type NormalizedResult struct {
	FormattedText string   `json:"formatted_text"`
	Summary       string   `json:"summary"`
	Tags          []string `json:"tags"`
	KeyPoints     []string `json:"key_points"`

	ResearchImplications  []string `json:"research_implications,omitempty"`
	CodeSnippets          []string `json:"code_snippets,omitempty"`
	TechnicalConcepts     []string `json:"technical_concepts,omitempty"`
	MarketInsights        []string `json:"market_insights,omitempty"`
	StrategicImplications []string `json:"strategic_implications,omitempty"`
}

// IsEmpty reports whether no field carries usable content.
func (r NormalizedResult) IsEmpty() bool {
	if strings.TrimSpace(r.FormattedText) != "" || strings.TrimSpace(r.Summary) != "" {
		return false
	}
	for _, l := range [][]string{
		r.Tags, r.KeyPoints, r.ResearchImplications, r.CodeSnippets,
		r.TechnicalConcepts, r.MarketInsights, r.StrategicImplications,
	} {
		if len(l) > 0 {
			return false
		}
	}
	return true
}

type ProcessedRecord struct {
	NormalizedResult

	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	ChannelName string `json:"channel_name"`
	PublishedAt string `json:"published_at,omitempty"`
	Style       Style  `json:"style"`
}

type ErrorKind string

const (
	KindValidation            ErrorKind = "validation_error"
	KindProcessing            ErrorKind = "processing_error"
	KindTranscriptUnavailable ErrorKind = "transcript_unavailable"
	KindNotFound              ErrorKind = "not_found"
	KindFetch                 ErrorKind = "fetch_error"
)

type FailureRecord struct {
	VideoID string    `json:"video_id"`
	Message string    `json:"error"`
	Kind    ErrorKind `json:"error_type"`
}
