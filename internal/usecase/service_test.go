package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/ytdigest/internal/progress"
	"github.com/forPelevin/ytdigest/internal/types"
)

func sourceWith(ids ...string) *fakeSource {
	src := &fakeSource{
		meta: map[string]types.VideoMetadata{},
		segs: map[string][]types.TranscriptSegment{},
		errs: map[string]error{},
	}
	for i, id := range ids {
		src.meta[id] = types.VideoMetadata{Title: "Title " + id, ChannelName: "Chan", PublishedAt: fmt.Sprintf("2024-01-%02dT00:00:00Z", i+1)}
		src.segs[id] = []types.TranscriptSegment{{Text: "line one"}, {Text: "line two"}}
	}
	return src
}

func TestCollect_KeepsOrderAndClassifiesFailures(t *testing.T) {
	src := sourceWith("a", "c")
	src.errs["b"] = fmt.Errorf("video b: %w", types.ErrNotFound)
	src.meta["d"] = types.VideoMetadata{Title: "no captions"}
	src.errs["e"] = fmt.Errorf("youtube status 400")

	d := testDeps(&echoLLM{})
	d.Metadata, d.Transcripts = src, src
	inputs, failures := NewCollector(d).Collect(context.Background(), []string{"a", "b", "c", "d", "e"})

	require.Len(t, inputs, 2)
	assert.Equal(t, "a", inputs[0].VideoID)
	assert.Equal(t, "line one\nline two", inputs[0].TranscriptText)
	assert.Equal(t, "c", inputs[1].VideoID)

	require.Len(t, failures, 3)
	kinds := map[string]types.ErrorKind{}
	for _, r := range failures {
		f, _ := r.Failure()
		kinds[f.VideoID] = f.Kind
	}
	assert.Equal(t, map[string]types.ErrorKind{
		"b": types.KindNotFound,
		"d": types.KindTranscriptUnavailable,
		"e": types.KindFetch,
	}, kinds)

	assert.Equal(t, progress.Fetched, d.Progress.Get("a"))
	assert.Equal(t, progress.Failed, d.Progress.Get("b"))
}

func TestDigest_RendersDocumentAndCompletesProgress(t *testing.T) {
	src := sourceWith("a", "b")
	src.errs["x"] = fmt.Errorf("video x: %w", types.ErrNotFound)

	d := testDeps(&echoLLM{})
	d.Metadata, d.Transcripts = src, src
	svc := NewService(d)

	got, err := svc.Digest(context.Background(), []string{"a", "x", "b", "a", " "}, types.StyleBusiness)
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunID)
	require.Len(t, got.Results, 3)
	assert.Equal(t, "b", got.Results[0].VideoID())
	assert.Equal(t, "a", got.Results[1].VideoID())
	assert.Equal(t, "x", got.Results[2].VideoID())

	assert.Contains(t, got.Document, "Video Title: Title b")
	assert.Contains(t, got.Document, "Processing Style: business")
	assert.Contains(t, got.Document, "Error processing video x:")

	assert.Equal(t, progress.Complete, svc.Progress().Get("a"))
	assert.Equal(t, progress.Failed, svc.Progress().Get("x"))
}

func TestDigest_NothingCollected(t *testing.T) {
	src := sourceWith()
	src.errs["a"] = types.ErrNotFound

	d := testDeps(&echoLLM{})
	d.Metadata, d.Transcripts = src, src
	got, err := NewService(d).Digest(context.Background(), []string{"a"}, types.StyleDefault)
	assert.ErrorIs(t, err, types.ErrNothingToProcess)
	assert.Len(t, got.Results, 1)
}

func TestDigest_EmptyIDs(t *testing.T) {
	_, err := NewService(testDeps(&echoLLM{})).Digest(context.Background(), []string{"", "  "}, types.StyleDefault)
	assert.ErrorIs(t, err, types.ErrEmptyBatch)
}

func TestProcessTranscripts(t *testing.T) {
	got, err := NewService(testDeps(&echoLLM{})).ProcessTranscripts(context.Background(), []types.TranscriptInput{
		{VideoID: "v1", TranscriptText: "hello world"},
	}, types.StyleDefault)
	require.NoError(t, err)
	require.Len(t, got.Results, 1)
	assert.True(t, got.Results[0].Success())
	assert.Contains(t, got.Document, "Formatted v1.")
}

func TestPlaylist(t *testing.T) {
	pl := &fakePlaylists{videos: []types.VideoSummary{{VideoID: "a"}}}
	d := testDeps(&echoLLM{})
	d.Playlists = pl
	svc := NewService(d)

	vids, err := svc.Playlist(context.Background(), "https://www.youtube.com/playlist?list=PL42")
	require.NoError(t, err)
	assert.Len(t, vids, 1)
	assert.Equal(t, "PL42", pl.gotID)

	_, err = svc.Playlist(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	assert.ErrorIs(t, err, types.ErrValidation)
	_, err = svc.Playlist(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestProcessEntries_CountsMalformedEntries(t *testing.T) {
	got, err := NewService(testDeps(&echoLLM{})).ProcessEntries(context.Background(), []Entry{
		{Input: types.TranscriptInput{VideoID: "v1", TranscriptText: "hello world"}},
		{Err: fmt.Errorf("not an object")},
	}, types.StyleDefault)
	require.NoError(t, err)
	require.Len(t, got.Results, 2)
	assert.True(t, got.Results[0].Success())
	assert.Contains(t, got.Document, "Error processing video unknown:")
}
