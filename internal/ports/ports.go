package ports

import (
	"context"

	"github.com/forPelevin/ytdigest/internal/types"
)

type TranscriptSource interface {
	// FetchTranscript returns the caption segments for videoID, or an error
	// wrapping types.ErrTranscriptUnavailable when the video has none.
	FetchTranscript(ctx context.Context, videoID string) ([]types.TranscriptSegment, error)
}

type MetadataSource interface {
	FetchVideoMetadata(ctx context.Context, videoID string) (types.VideoMetadata, error)
}

type PlaylistSource interface {
	FetchPlaylistVideos(ctx context.Context, playlistID string) ([]types.VideoSummary, error)
}

// Completer sends one instruction + user text pair to a chat model and returns
// the raw text of the first choice.
type Completer interface {
	Complete(ctx context.Context, systemInstruction, userText string) (string, error)
}
