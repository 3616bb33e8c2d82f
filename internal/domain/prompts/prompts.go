package prompts

import (
	"strings"

	"github.com/forPelevin/ytdigest/internal/types"
)

// Template is the fixed instruction payload for one style.
type Template struct {
	Style       types.Style
	Instruction string
	// Fields lists the JSON keys the model is asked to return.
	Fields []string
}

var baseFields = []string{"formatted_text", "summary", "tags", "key_points"}

type styleSpec struct {
	role     string
	analysis []string
	extra    map[string]string
}

// styleOrder is the canonical order used in help output and tests.
var styleOrder = []types.Style{
	types.StyleDefault,
	types.StyleAcademic,
	types.StyleTechnical,
	types.StyleBusiness,
}

var specs = map[types.Style]styleSpec{
	types.StyleDefault: {
		role: "a professional text editor and analyst",
		analysis: []string{
			"Generate a concise summary",
			"Create relevant tags",
			"Extract key points",
		},
	},
	types.StyleAcademic: {
		role: "a professional academic editor and analyst",
		analysis: []string{
			"Generate an academic summary",
			"Create academic-focused tags",
			"Extract key scholarly points",
			"Identify research implications",
		},
		extra: map[string]string{
			"research_implications": `["implication1", "implication2"]`,
		},
	},
	types.StyleTechnical: {
		role: "a professional technical editor and analyst",
		analysis: []string{
			"Generate a technical summary",
			"Create technical tags",
			"Extract key technical points",
			"Identify code snippets and concepts",
		},
		extra: map[string]string{
			"code_snippets":      `["snippet1", "snippet2"]`,
			"technical_concepts": `["concept1", "concept2"]`,
		},
	},
	types.StyleBusiness: {
		role: "a professional business editor and analyst",
		analysis: []string{
			"Generate a business summary",
			"Create business-focused tags",
			"Extract key business points",
			"Identify market insights and implications",
		},
		extra: map[string]string{
			"market_insights":        `["insight1", "insight2"]`,
			"strategic_implications": `["strategy1", "strategy2"]`,
		},
	},
}

// extraOrder keeps style-specific keys in a stable order inside the prompt.
var extraOrder = []string{
	"research_implications",
	"code_snippets",
	"technical_concepts",
	"market_insights",
	"strategic_implications",
}

var registry = buildRegistry()

func buildRegistry() map[types.Style]Template {
	out := make(map[types.Style]Template, len(specs))
	for _, st := range styleOrder {
		sp := specs[st]
		fields := append([]string(nil), baseFields...)
		for _, k := range extraOrder {
			if _, ok := sp.extra[k]; ok {
				fields = append(fields, k)
			}
		}
		out[st] = Template{
			Style:       st,
			Instruction: buildInstruction(sp),
			Fields:      fields,
		}
	}
	return out
}

func buildInstruction(sp styleSpec) string {
	var b strings.Builder
	b.WriteString("You are " + sp.role + ". Your PRIMARY task is text formatting and editing:\n\n")
	b.WriteString("STEP 1 - FORMATTING (REQUIRED):\n")
	b.WriteString("1. Fix grammar and punctuation while maintaining all original words\n")
	b.WriteString("2. Properly align paragraphs with consistent indentation\n")
	b.WriteString("3. Add appropriate line breaks between sections\n")
	b.WriteString("4. Ensure proper spacing between sentences\n")
	b.WriteString("5. Format dialogue and quotes properly\n")
	b.WriteString("6. Structure the text into clear sections\n\n")
	b.WriteString("IMPORTANT: DO NOT remove or change any words from the original text.\n")
	b.WriteString("Focus only on formatting and organization while preserving ALL original content.\n")
	b.WriteString("The input starts with a context header (Title, Channel, Published, Video ID). ")
	b.WriteString("Use it only as context: it MUST NOT appear in formatted_text.\n\n")
	b.WriteString("STEP 2 - ANALYSIS:\n")
	b.WriteString("Only after completing the formatting, proceed with:\n")
	for _, a := range sp.analysis {
		b.WriteString("- " + a + "\n")
	}
	b.WriteString("\nReturn a JSON object (no markdown, no code fences) with the following structure:\n")
	b.WriteString("{\n")
	b.WriteString(`  "formatted_text": "THE COMPLETE FORMATTED VERSION OF THE INPUT TEXT",` + "\n")
	b.WriteString(`  "summary": "concise summary of the content",` + "\n")
	b.WriteString(`  "tags": ["relevant", "topic", "tags"],` + "\n")
	keys := make([]string, 0, len(sp.extra))
	for _, k := range extraOrder {
		if _, ok := sp.extra[k]; ok {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		b.WriteString(`  "key_points": ["main", "points", "extracted"]` + "\n")
	} else {
		b.WriteString(`  "key_points": ["main", "points", "extracted"],` + "\n")
		for i, k := range keys {
			sep := ","
			if i == len(keys)-1 {
				sep = ""
			}
			b.WriteString(`  "` + k + `": ` + sp.extra[k] + sep + "\n")
		}
	}
	b.WriteString("}\n\n")
	b.WriteString("IMPORTANT: The formatted_text MUST contain all words from the original transcript.")
	return b.String()
}

// ParseStyle resolves a user-supplied style name. Unknown names fall back to default.
func ParseStyle(s string) types.Style {
	st := types.Style(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := registry[st]; ok {
		return st
	}
	return types.StyleDefault
}

// Get returns the template for style, or the default template for unknown styles.
func Get(style types.Style) Template {
	t := registry[ParseStyle(string(style))]
	t.Fields = append([]string(nil), t.Fields...)
	return t
}

// Styles returns the known styles in canonical order.
func Styles() []types.Style {
	out := make([]types.Style, len(styleOrder))
	copy(out, styleOrder)
	return out
}
