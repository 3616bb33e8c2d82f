package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/forPelevin/ytdigest/internal/ports"
	"github.com/forPelevin/ytdigest/internal/progress"
	"github.com/forPelevin/ytdigest/internal/resilience"
	"github.com/forPelevin/ytdigest/internal/types"
)

// fakeLLM replays scripted replies; once exhausted the last reply repeats.
type fakeLLM struct {
	mu      sync.Mutex
	replies []reply
	calls   int
	users   []string
}

type reply struct {
	text string
	err  error
}

func (f *fakeLLM) Complete(_ context.Context, _, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, user)
	i := f.calls
	if i >= len(f.replies) {
		i = len(f.replies) - 1
	}
	f.calls++
	return f.replies[i].text, f.replies[i].err
}

// echoLLM returns a valid response whose formatted_text is derived from the
// transcript line of the prompt.
type echoLLM struct {
	mu    sync.Mutex
	order []string
}

func (e *echoLLM) Complete(_ context.Context, _, user string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, rest, _ := strings.Cut(user, "Video ID: ")
	id, _, _ := strings.Cut(rest, "\n")
	e.order = append(e.order, id)
	return fmt.Sprintf(`{"formatted_text":"Formatted %s.","summary":"s","tags":["t"],"key_points":["k"]}`, id), nil
}

type fakeSource struct {
	meta  map[string]types.VideoMetadata
	segs  map[string][]types.TranscriptSegment
	errs  map[string]error
	mu    sync.Mutex
	calls int
}

func (f *fakeSource) FetchVideoMetadata(_ context.Context, id string) (types.VideoMetadata, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if err := f.errs[id]; err != nil {
		return types.VideoMetadata{}, err
	}
	return f.meta[id], nil
}

func (f *fakeSource) FetchTranscript(_ context.Context, id string) ([]types.TranscriptSegment, error) {
	segs, ok := f.segs[id]
	if !ok {
		return nil, fmt.Errorf("video %s: %w", id, types.ErrTranscriptUnavailable)
	}
	return segs, nil
}

type fakePlaylists struct {
	gotID  string
	videos []types.VideoSummary
}

func (f *fakePlaylists) FetchPlaylistVideos(_ context.Context, id string) ([]types.VideoSummary, error) {
	f.gotID = id
	return f.videos, nil
}

func testDeps(llm ports.Completer) Deps {
	retry := resilience.DefaultRetryPolicy()
	retry.Sleep = func(context.Context, time.Duration) error { return nil }
	return Deps{
		LLM:      llm,
		Retry:    retry,
		Progress: progress.NewStore(),
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		NewRunID: func() string { return "run-1" },
	}
}

const validJSON = `{"formatted_text":"Hello, world.","summary":"A greeting.","tags":["greeting"],"key_points":["says hello"]}`
