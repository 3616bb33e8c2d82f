package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/forPelevin/ytdigest/internal/domain/document"
	"github.com/forPelevin/ytdigest/internal/domain/youtubeurl"
	"github.com/forPelevin/ytdigest/internal/progress"
	"github.com/forPelevin/ytdigest/internal/types"
)

// Digest is the outcome of one end-to-end run.
type Digest struct {
	RunID    string
	Results  []types.Result
	Document string
}

// Service ties collection, batch processing and document rendering together.
type Service struct {
	d         Deps
	collector *Collector
	batch     *Batch
}

func NewService(d Deps) *Service {
	d = d.withDefaults()
	return &Service{
		d:         d,
		collector: &Collector{d: d},
		batch:     &Batch{proc: &Processor{d: d}, d: d},
	}
}

func (s *Service) Progress() *progress.Store { return s.d.Progress }

// Digest fetches and processes the given videos and renders the combined
// document. Batch results come first, then fetch failures.
func (s *Service) Digest(ctx context.Context, videoIDs []string, style types.Style) (Digest, error) {
	ids := dedupe(videoIDs)
	if len(ids) == 0 {
		return Digest{}, types.ErrEmptyBatch
	}
	runID := s.d.NewRunID()
	log := s.d.Log.With(slog.String("run_id", runID))
	log.Info("digest started", slog.Int("videos", len(ids)), slog.String("style", string(style)))

	inputs, fetchFailures := s.collector.Collect(ctx, ids)
	if len(inputs) == 0 {
		return Digest{RunID: runID, Results: fetchFailures}, fmt.Errorf("%w (%d requested)", types.ErrNothingToProcess, len(ids))
	}

	processed, err := s.batch.ProcessBatch(ctx, inputs, style)
	if err != nil {
		return Digest{}, err
	}
	results := append(processed, fetchFailures...)
	d := s.finish(runID, results)
	log.Info("digest finished", slog.Int("results", len(results)))
	return d, nil
}

// ProcessTranscripts runs caller-supplied transcripts through the batch
// orchestrator and renders the document.
func (s *Service) ProcessTranscripts(ctx context.Context, inputs []types.TranscriptInput, style types.Style) (Digest, error) {
	results, err := s.batch.ProcessBatch(ctx, inputs, style)
	if err != nil {
		return Digest{}, err
	}
	return s.finish(s.d.NewRunID(), results), nil
}

// ProcessEntries is ProcessTranscripts for raw entries, some of which may
// have failed to decode.
func (s *Service) ProcessEntries(ctx context.Context, entries []Entry, style types.Style) (Digest, error) {
	results, err := s.batch.ProcessEntries(ctx, entries, style)
	if err != nil {
		return Digest{}, err
	}
	return s.finish(s.d.NewRunID(), results), nil
}

// Playlist validates a playlist URL and lists its videos.
func (s *Service) Playlist(ctx context.Context, rawURL string) ([]types.VideoSummary, error) {
	if !youtubeurl.Validate(rawURL) {
		return nil, fmt.Errorf("%w: invalid YouTube URL", types.ErrValidation)
	}
	id := youtubeurl.PlaylistID(rawURL)
	if id == "" {
		return nil, fmt.Errorf("%w: invalid playlist URL", types.ErrValidation)
	}
	return s.d.Playlists.FetchPlaylistVideos(ctx, id)
}

func (s *Service) finish(runID string, results []types.Result) Digest {
	doc := document.Render(results)
	for _, r := range results {
		s.d.Metrics.Item(r)
		if r.Success() {
			s.d.Progress.Set(r.VideoID(), progress.Complete)
		}
	}
	return Digest{RunID: runID, Results: results, Document: doc}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
