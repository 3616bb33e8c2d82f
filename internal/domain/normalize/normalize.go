package normalize

import (
	"fmt"
	"strings"

	"github.com/forPelevin/ytdigest/internal/types"
)

// Strategy turns raw model output into a result. ok is false when the
// strategy could not recover anything.
type Strategy interface {
	Name() string
	Parse(raw string) (types.NormalizedResult, bool)
}

// DefaultStrategies returns the fallback chain in the order it is tried.
func DefaultStrategies() []Strategy {
	return []Strategy{StrictJSON{}, CleanedJSON{}, FieldExtraction{}}
}

type Normalizer struct {
	strategies []Strategy
	policy     Policy
	observe    func(tier string)
}

type Option func(*Normalizer)

func WithPolicy(p Policy) Option {
	return func(n *Normalizer) { n.policy = p }
}

func WithStrategies(s ...Strategy) Option {
	return func(n *Normalizer) { n.strategies = s }
}

// WithObserver registers a callback invoked with the name of the tier that produced a result.
func WithObserver(fn func(tier string)) Option {
	return func(n *Normalizer) { n.observe = fn }
}

func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		strategies: DefaultStrategies(),
		policy:     DefaultPolicy(),
		observe:    func(string) {},
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Normalize runs the strategies in order and keeps the first non-empty result.
// Only FormattedText goes through transcript cleanup.
func (n *Normalizer) Normalize(raw string) (types.NormalizedResult, error) {
	if strings.TrimSpace(raw) == "" {
		return types.NormalizedResult{}, fmt.Errorf("%w: empty response", types.ErrParse)
	}
	for _, s := range n.strategies {
		res, ok := s.Parse(raw)
		if !ok || res.IsEmpty() {
			continue
		}
		res = tidy(res)
		res.FormattedText = n.policy.StripMetadata(res.FormattedText)
		n.observe(s.Name())
		return res, nil
	}
	return types.NormalizedResult{}, fmt.Errorf("%w: %q", types.ErrParse, truncate(raw, 200))
}

func tidy(r types.NormalizedResult) types.NormalizedResult {
	r.Summary = strings.TrimSpace(r.Summary)
	r.Tags = tidyList(r.Tags)
	r.KeyPoints = tidyList(r.KeyPoints)
	r.ResearchImplications = tidyList(r.ResearchImplications)
	r.CodeSnippets = tidyList(r.CodeSnippets)
	r.TechnicalConcepts = tidyList(r.TechnicalConcepts)
	r.MarketInsights = tidyList(r.MarketInsights)
	r.StrategicImplications = tidyList(r.StrategicImplications)
	return r
}

func tidyList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
