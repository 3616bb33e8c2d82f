package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/forPelevin/ytdigest/internal/progress"
	"github.com/forPelevin/ytdigest/internal/types"
)

// Metrics groups the collectors for one process. A nil *Metrics records nothing.
type Metrics struct {
	reg *prometheus.Registry

	llmCalls       *prometheus.CounterVec
	llmAttempts    prometheus.Counter
	normalizeTier  *prometheus.CounterVec
	items          *prometheus.CounterVec
	fetches        *prometheus.CounterVec
	progressUpdate *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		llmCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ytdigest_llm_calls_total",
			Help: "Model calls by final outcome.",
		}, []string{"outcome"}),
		llmAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ytdigest_llm_attempts_total",
			Help: "Individual model call attempts including retries.",
		}),
		normalizeTier: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ytdigest_normalize_tier_total",
			Help: "Responses recovered per normalization tier.",
		}, []string{"tier"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ytdigest_items_total",
			Help: "Processed items by outcome and failure kind.",
		}, []string{"outcome", "kind"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ytdigest_fetch_total",
			Help: "Source fetches by outcome.",
		}, []string{"outcome"}),
		progressUpdate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ytdigest_progress_updates_total",
			Help: "Progress transitions by code.",
		}, []string{"code"}),
	}
	m.reg.MustRegister(m.llmCalls, m.llmAttempts, m.normalizeTier, m.items, m.fetches, m.progressUpdate)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) LLMCall(err error) {
	if m == nil {
		return
	}
	m.llmCalls.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) LLMAttempt() {
	if m == nil {
		return
	}
	m.llmAttempts.Inc()
}

func (m *Metrics) NormalizeTier(tier string) {
	if m == nil {
		return
	}
	m.normalizeTier.WithLabelValues(tier).Inc()
}

func (m *Metrics) Item(r types.Result) {
	if m == nil {
		return
	}
	if f, ok := r.Failure(); ok {
		m.items.WithLabelValues("failure", string(f.Kind)).Inc()
		return
	}
	m.items.WithLabelValues("success", "").Inc()
}

func (m *Metrics) Fetch(err error) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) Progress(c progress.Code) {
	if m == nil {
		return
	}
	m.progressUpdate.WithLabelValues(strconv.Itoa(int(c))).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
