package types

import "encoding/json"

// Result holds exactly one of a ProcessedRecord or a FailureRecord.
type Result struct {
	record  *ProcessedRecord
	failure *FailureRecord
}

func Succeeded(rec ProcessedRecord) Result { return Result{record: &rec} }

func Failed(f FailureRecord) Result { return Result{failure: &f} }

func (r Result) Success() bool { return r.record != nil }

func (r Result) Record() (ProcessedRecord, bool) {
	if r.record == nil {
		return ProcessedRecord{}, false
	}
	return *r.record, true
}

func (r Result) Failure() (FailureRecord, bool) {
	if r.failure == nil {
		return FailureRecord{}, false
	}
	return *r.failure, true
}

func (r Result) VideoID() string {
	switch {
	case r.record != nil:
		return r.record.VideoID
	case r.failure != nil:
		return r.failure.VideoID
	default:
		return ""
	}
}

// ResultView is the flat wire form of a Result.
type ResultView struct {
	Success bool `json:"success"`

	VideoID     string `json:"video_id"`
	Title       string `json:"title,omitempty"`
	ChannelName string `json:"channel_name,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
	Style       Style  `json:"style,omitempty"`

	FormattedText         string   `json:"formatted_text,omitempty"`
	Summary               string   `json:"summary,omitempty"`
	Tags                  []string `json:"tags,omitempty"`
	KeyPoints             []string `json:"key_points,omitempty"`
	ResearchImplications  []string `json:"research_implications,omitempty"`
	CodeSnippets          []string `json:"code_snippets,omitempty"`
	TechnicalConcepts     []string `json:"technical_concepts,omitempty"`
	MarketInsights        []string `json:"market_insights,omitempty"`
	StrategicImplications []string `json:"strategic_implications,omitempty"`

	Error     string    `json:"error,omitempty"`
	ErrorKind ErrorKind `json:"error_type,omitempty"`
}

func (r Result) View() ResultView {
	if rec, ok := r.Record(); ok {
		return ResultView{
			Success:               true,
			VideoID:               rec.VideoID,
			Title:                 rec.Title,
			ChannelName:           rec.ChannelName,
			PublishedAt:           rec.PublishedAt,
			Style:                 rec.Style,
			FormattedText:         rec.FormattedText,
			Summary:               rec.Summary,
			Tags:                  rec.Tags,
			KeyPoints:             rec.KeyPoints,
			ResearchImplications:  rec.ResearchImplications,
			CodeSnippets:          rec.CodeSnippets,
			TechnicalConcepts:     rec.TechnicalConcepts,
			MarketInsights:        rec.MarketInsights,
			StrategicImplications: rec.StrategicImplications,
		}
	}
	f, _ := r.Failure()
	return ResultView{
		VideoID:   f.VideoID,
		Error:     f.Message,
		ErrorKind: f.Kind,
	}
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.View())
}

// Views converts results to their wire form, keeping order.
func Views(rs []Result) []ResultView {
	out := make([]ResultView, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.View())
	}
	return out
}
