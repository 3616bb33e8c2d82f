package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/forPelevin/ytdigest/internal/resilience"
	"github.com/forPelevin/ytdigest/internal/types"
)

func fastRetry() resilience.RetryPolicy {
	return resilience.RetryPolicy{
		MaxAttempts:  3,
		NonRetryable: func(err error) bool { return !transient(err) },
		Sleep:        func(context.Context, time.Duration) error { return nil },
	}
}

func newTestClient(srv *httptest.Server, opts ...Option) *Client {
	base := []Option{
		WithAPIBase(srv.URL + "/youtube/v3"),
		WithWatchBase(srv.URL),
		WithRetry(fastRetry()),
		WithPageRate(rate.Inf),
	}
	return New("key", append(base, opts...)...)
}

func TestFetchVideoMetadata_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "abc", r.URL.Query().Get("id"))
		fmt.Fprint(w, `{"items":[{"id":"abc","snippet":{"title":"T","channelTitle":"","publishedAt":"2024-01-01T00:00:00Z"}}]}`)
	}))
	defer srv.Close()

	md, err := newTestClient(srv).FetchVideoMetadata(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, types.VideoMetadata{Title: "T", ChannelName: "Unknown Channel", PublishedAt: "2024-01-01T00:00:00Z"}, md)
	assert.EqualValues(t, 2, calls.Load())
}

func TestFetchVideoMetadata_NotFound(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"empty items": func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, `{"items":[]}`) },
		"404":         func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
	}
	for name, h := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()
			_, err := newTestClient(srv).FetchVideoMetadata(context.Background(), "abc")
			assert.ErrorIs(t, err, types.ErrNotFound)
		})
	}
}

func TestFetchVideoMetadata_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).FetchVideoMetadata(context.Background(), "abc")
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func playlistItem(i int) string {
	return fmt.Sprintf(`{"snippet":{"title":"v%d","publishedAt":"2020-01-01T00:00:00Z","resourceId":{"videoId":"id%d"},"thumbnails":{"default":{"url":"t%d"}}}}`, i, i, i)
}

func TestFetchPlaylistVideos_PaginatesAndCaps(t *testing.T) {
	var pages atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/playlistItems"):
			n := int(pages.Add(1))
			items := make([]string, 0, 3)
			for i := 0; i < 3; i++ {
				items = append(items, playlistItem((n-1)*3+i))
			}
			fmt.Fprintf(w, `{"items":[%s],"nextPageToken":"p%d"}`, strings.Join(items, ","), n)
		case strings.HasSuffix(r.URL.Path, "/videos"):
			fmt.Fprint(w, `{"items":[{"id":"id0","snippet":{"publishedAt":"2024-05-05T00:00:00Z"}}]}`)
		}
	}))
	defer srv.Close()

	vids, err := newTestClient(srv, WithMaxItems(5)).FetchPlaylistVideos(context.Background(), "PL1")
	require.NoError(t, err)
	require.Len(t, vids, 5)
	assert.EqualValues(t, 2, pages.Load())
	assert.Equal(t, "2024-05-05T00:00:00Z", vids[0].PublishedAt)
	assert.Equal(t, "2020-01-01T00:00:00Z", vids[1].PublishedAt)
	assert.Equal(t, "t4", vids[4].Thumbnail)
}

func TestFetchPlaylistVideos_SkipsMalformedItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/playlistItems") {
			fmt.Fprintf(w, `{"items":[{"snippet":{"title":"deleted"}}, %s]}`, playlistItem(1))
			return
		}
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer srv.Close()

	vids, err := newTestClient(srv).FetchPlaylistVideos(context.Background(), "PL1")
	require.NoError(t, err)
	require.Len(t, vids, 1)
	assert.Equal(t, "id1", vids[0].VideoID)
}

func TestFetchPlaylistVideos_Errors(t *testing.T) {
	tests := map[string]struct {
		h    http.HandlerFunc
		want error
	}{
		"forbidden": {func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusForbidden) }, types.ErrNotAccessible},
		"empty":     {func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, `{"items":[]}`) }, types.ErrNotAccessible},
		"no items":  {func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, `{}`) }, types.ErrLookup},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(tt.h)
			defer srv.Close()
			_, err := newTestClient(srv).FetchPlaylistVideos(context.Background(), "PL1")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFetchPlaylistVideos_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := newTestClient(srv, WithPlaylistTimeout(50*time.Millisecond)).FetchPlaylistVideos(context.Background(), "PL1")
	assert.ErrorIs(t, err, types.ErrTimeout)
}

const watchPage = `<html><script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` +
	`{"baseUrl":"%[1]s/tt?lang=de","languageCode":"de"},` +
	`{"baseUrl":"%[1]s/tt?lang=en&kind=asr","languageCode":"en","kind":"asr"},` +
	`{"baseUrl":"%[1]s/tt?lang=en","languageCode":"en"}]}},"note":"brace } in \"string\""};</script></html>`

func TestFetchTranscript_PicksManualEnglishTrack(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			fmt.Fprintf(w, watchPage, srv.URL)
		case "/tt":
			if r.URL.Query().Get("lang") != "en" || r.URL.Query().Get("kind") != "" {
				t.Errorf("unexpected track requested: %s", r.URL.RawQuery)
			}
			fmt.Fprint(w, `<transcript><text start="0.5" dur="1.2">it&amp;#39;s  here</text><text start="2" dur="1"> </text><text start="3.1" dur="2">second</text></transcript>`)
		}
	}))
	defer srv.Close()

	segs, err := newTestClient(srv).FetchTranscript(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, []types.TranscriptSegment{
		{Text: "it's  here", Start: 0.5, Duration: 1.2},
		{Text: "second", Start: 3.1, Duration: 2},
	}, segs)
}

func TestFetchTranscript_Unavailable(t *testing.T) {
	pages := map[string]string{
		"no marker":   `<html>nothing</html>`,
		"no captions": `<script>var ytInitialPlayerResponse = {"playabilityStatus":{"status":"OK"}};</script>`,
		"po token":    `<script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"x&exp=xpe","languageCode":"en"}]}}};</script>`,
	}
	for name, page := range pages {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, page)
			}))
			defer srv.Close()
			_, err := newTestClient(srv).FetchTranscript(context.Background(), "abc")
			assert.ErrorIs(t, err, types.ErrTranscriptUnavailable)
		})
	}
}

func TestPickBestTrack_FallsBackToAutoGenerated(t *testing.T) {
	tr, ok := pickBestTrack([]captionTrack{
		{BaseURL: "a", LanguageCode: "fr"},
		{BaseURL: "b", LanguageCode: "en", Kind: "asr"},
	}, []string{"en"})
	require.True(t, ok)
	assert.Equal(t, "b", tr.BaseURL)
}
