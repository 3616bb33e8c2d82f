package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/forPelevin/ytdigest/internal/progress"
	"github.com/forPelevin/ytdigest/internal/types"
)

// Batch processes many transcripts one at a time, newest first.
type Batch struct {
	proc *Processor
	d    Deps
}

func NewBatch(d Deps) *Batch {
	d = d.withDefaults()
	return &Batch{proc: &Processor{d: d}, d: d}
}

// Entry is one batch element as the caller received it. Err is set when the
// element could not be read as a transcript; it becomes a validation failure
// without aborting the batch.
type Entry struct {
	Input types.TranscriptInput
	Err   error
}

// ProcessBatch returns exactly one result per input, ordered by publish date
// newest first with undated inputs last. Inputs that fail validation become
// failures without a model call. Only an empty batch is an error.
func (b *Batch) ProcessBatch(ctx context.Context, inputs []types.TranscriptInput, style types.Style) ([]types.Result, error) {
	entries := make([]Entry, len(inputs))
	for i, in := range inputs {
		entries[i] = Entry{Input: in}
	}
	return b.ProcessEntries(ctx, entries, style)
}

// ProcessEntries is ProcessBatch for entries that may already have failed to
// decode.
func (b *Batch) ProcessEntries(ctx context.Context, entries []Entry, style types.Style) ([]types.Result, error) {
	if len(entries) == 0 {
		return nil, types.ErrEmptyBatch
	}
	b.d.Log.Info("processing batch", slog.Int("items", len(entries)), slog.String("style", string(style)))

	ordered := append([]Entry(nil), entries...)
	sortNewestFirst(ordered)

	out := make([]types.Result, 0, len(ordered))
	for _, e := range ordered {
		in := e.Input
		err := validateInput(in)
		if e.Err != nil {
			err = fmt.Errorf("%w: malformed transcript entry: %v", types.ErrValidation, e.Err)
		}
		if err != nil {
			b.setProgress(in.VideoID, progress.Failed)
			out = append(out, failure(in.VideoID, err))
			continue
		}
		r := b.proc.Process(ctx, in, style)
		if r.Success() {
			b.setProgress(in.VideoID, progress.Processed)
		} else {
			b.setProgress(in.VideoID, progress.Failed)
		}
		out = append(out, r)
	}
	return out, nil
}

func (b *Batch) setProgress(videoID string, c progress.Code) {
	if videoID == "" {
		return
	}
	b.d.Progress.Set(videoID, c)
}

// sortNewestFirst orders by PublishedAt descending. Missing or unparsable
// dates sort last and keep their relative order.
func sortNewestFirst(in []Entry) {
	keys := make(map[string]time.Time, len(in))
	for _, e := range in {
		keys[e.Input.PublishedAt] = parsePublished(e.Input.PublishedAt)
	}
	sort.SliceStable(in, func(i, j int) bool {
		a, b := keys[in[i].Input.PublishedAt], keys[in[j].Input.PublishedAt]
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b)
	})
}

func parsePublished(s string) time.Time {
	for _, l := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(l, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
