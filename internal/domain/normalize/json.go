package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/forPelevin/ytdigest/internal/types"
)

// StrictJSON decodes the raw response as-is.
type StrictJSON struct{}

func (StrictJSON) Name() string { return "strict" }

func (StrictJSON) Parse(raw string) (types.NormalizedResult, bool) {
	return decode(raw)
}

// CleanedJSON strips code fences and surrounding chatter, then decodes. If that
// fails, single quotes are coerced to double quotes and decoding is retried.
type CleanedJSON struct{}

func (CleanedJSON) Name() string { return "cleaned" }

func (CleanedJSON) Parse(raw string) (types.NormalizedResult, bool) {
	t := stripFences(raw)
	if obj, ok := outermostObject(t); ok {
		t = obj
	}
	if res, ok := decode(t); ok {
		return res, true
	}
	return decode(strings.ReplaceAll(t, "'", `"`))
}

var fenceRE = regexp.MustCompile("(?i)```(?:json)?\\s*|\\s*```")

func stripFences(s string) string {
	return strings.TrimSpace(fenceRE.ReplaceAllString(strings.TrimSpace(s), ""))
}

func outermostObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

type wireResult struct {
	FormattedText wireText `json:"formatted_text"`
	Summary       wireText `json:"summary"`
	Tags          wireList `json:"tags"`
	KeyPoints     wireList `json:"key_points"`

	ResearchImplications  wireList `json:"research_implications"`
	CodeSnippets          wireList `json:"code_snippets"`
	TechnicalConcepts     wireList `json:"technical_concepts"`
	MarketInsights        wireList `json:"market_insights"`
	StrategicImplications wireList `json:"strategic_implications"`
}

func decode(s string) (types.NormalizedResult, bool) {
	var w wireResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &w); err != nil {
		return types.NormalizedResult{}, false
	}
	res := types.NormalizedResult{
		FormattedText:         string(w.FormattedText),
		Summary:               string(w.Summary),
		Tags:                  splitTags(w.Tags),
		KeyPoints:             w.KeyPoints,
		ResearchImplications:  w.ResearchImplications,
		CodeSnippets:          w.CodeSnippets,
		TechnicalConcepts:     w.TechnicalConcepts,
		MarketInsights:        w.MarketInsights,
		StrategicImplications: w.StrategicImplications,
	}
	return res, !res.IsEmpty()
}

// wireText accepts a string or an array of paragraphs.
type wireText string

func (t *wireText) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = wireText(s)
		return nil
	}
	var parts []string
	if err := json.Unmarshal(b, &parts); err == nil {
		*t = wireText(strings.Join(parts, "\n\n"))
		return nil
	}
	*t = ""
	return nil
}

// wireList accepts an array of scalars or a single string.
type wireList []string

func (l *wireList) UnmarshalJSON(b []byte) error {
	var items []any
	if err := json.Unmarshal(b, &items); err == nil {
		out := make([]string, 0, len(items))
		for _, it := range items {
			switch v := it.(type) {
			case string:
				out = append(out, v)
			case float64, bool:
				out = append(out, fmt.Sprint(v))
			case map[string]any:
				// Some models wrap items as {"text": "..."}.
				for _, k := range []string{"text", "point", "value", "name"} {
					if s, ok := v[k].(string); ok {
						out = append(out, s)
						break
					}
				}
			}
		}
		*l = out
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil && strings.TrimSpace(s) != "" {
		*l = wireList{s}
		return nil
	}
	*l = nil
	return nil
}

// splitTags expands a single comma separated tag string into separate tags.
func splitTags(in []string) []string {
	if len(in) != 1 || !strings.Contains(in[0], ",") {
		return in
	}
	return strings.Split(in[0], ",")
}
