package usecase

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/forPelevin/ytdigest/internal/domain/normalize"
	"github.com/forPelevin/ytdigest/internal/metrics"
	"github.com/forPelevin/ytdigest/internal/ports"
	"github.com/forPelevin/ytdigest/internal/progress"
	"github.com/forPelevin/ytdigest/internal/resilience"
)

const defaultFetchConcurrency = 2

// Deps is shared by every usecase constructor. Nil optional fields get
// working defaults.
type Deps struct {
	LLM         ports.Completer
	Transcripts ports.TranscriptSource
	Metadata    ports.MetadataSource
	Playlists   ports.PlaylistSource

	Normalizer *normalize.Normalizer
	Limiter    *resilience.RateLimiter
	Retry      resilience.RetryPolicy
	Progress   *progress.Store
	Metrics    *metrics.Metrics
	Log        *slog.Logger

	FetchConcurrency int
	NewRunID         func() string
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Normalizer == nil {
		d.Normalizer = normalize.New(normalize.WithObserver(d.Metrics.NormalizeTier))
	}
	if d.Limiter == nil {
		d.Limiter = resilience.NewRateLimiter(0)
	}
	if d.Retry.MaxAttempts == 0 {
		d.Retry = resilience.DefaultRetryPolicy()
	}
	if d.Progress == nil {
		d.Progress = progress.NewStore()
	}
	if d.FetchConcurrency <= 0 {
		d.FetchConcurrency = defaultFetchConcurrency
	}
	if d.NewRunID == nil {
		d.NewRunID = uuid.NewString
	}
	return d
}
