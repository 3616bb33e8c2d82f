package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/ytdigest/internal/domain/transcript"
	"github.com/forPelevin/ytdigest/internal/progress"
	"github.com/forPelevin/ytdigest/internal/types"
)

// Collector fetches metadata and transcripts for a list of videos on a small
// worker pool.
type Collector struct{ d Deps }

func NewCollector(d Deps) *Collector { return &Collector{d: d.withDefaults()} }

// Collect returns the inputs that could be fetched and a failure result for
// each video that could not. Both keep the order of ids.
func (c *Collector) Collect(ctx context.Context, ids []string) ([]types.TranscriptInput, []types.Result) {
	type slot struct {
		in  types.TranscriptInput
		err error
	}
	slots := make([]slot, len(ids))

	var g errgroup.Group
	g.SetLimit(c.d.FetchConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			in, err := c.fetch(ctx, id)
			slots[i] = slot{in: in, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var (
		inputs   []types.TranscriptInput
		failures []types.Result
	)
	for i, s := range slots {
		c.d.Metrics.Fetch(s.err)
		if s.err != nil {
			c.d.Progress.Set(ids[i], progress.Failed)
			c.d.Log.Error("fetch failed", slog.String("video_id", ids[i]), slog.Any("error", s.err))
			failures = append(failures, types.Failed(types.FailureRecord{
				VideoID: ids[i],
				Message: s.err.Error(),
				Kind:    fetchKind(s.err),
			}))
			continue
		}
		inputs = append(inputs, s.in)
	}
	return inputs, failures
}

func (c *Collector) fetch(ctx context.Context, id string) (types.TranscriptInput, error) {
	c.d.Progress.Set(id, progress.Started)

	md, err := c.d.Metadata.FetchVideoMetadata(ctx, id)
	if err != nil {
		return types.TranscriptInput{}, err
	}
	segs, err := c.d.Transcripts.FetchTranscript(ctx, id)
	if err != nil {
		return types.TranscriptInput{}, err
	}
	text := transcript.JoinSegments(segs)
	if strings.TrimSpace(text) == "" {
		return types.TranscriptInput{}, fmt.Errorf("video %s: empty transcript: %w", id, types.ErrTranscriptUnavailable)
	}

	c.d.Progress.Set(id, progress.Fetched)
	return types.TranscriptInput{
		VideoID:        id,
		Title:          md.Title,
		ChannelName:    md.ChannelName,
		PublishedAt:    md.PublishedAt,
		TranscriptText: text,
	}, nil
}

func fetchKind(err error) types.ErrorKind {
	if k := types.KindOf(err); k != types.KindProcessing && k != types.KindValidation {
		return k
	}
	return types.KindFetch
}
