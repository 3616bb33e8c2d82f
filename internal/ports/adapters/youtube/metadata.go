package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/forPelevin/ytdigest/internal/types"
)

type videosResp struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

var errNoAPIKey = errors.New("YOUTUBE_API_KEY is not configured")

func (c *Client) FetchVideoMetadata(ctx context.Context, videoID string) (types.VideoMetadata, error) {
	if c.apiKey == "" {
		return types.VideoMetadata{}, errNoAPIKey
	}
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("id", videoID)
	q.Set("key", c.apiKey)

	var resp videosResp
	if err := c.getJSON(ctx, c.apiBase+"/videos?"+q.Encode(), types.ErrNotFound, &resp); err != nil {
		return types.VideoMetadata{}, fmt.Errorf("video %s: %w", videoID, err)
	}
	if len(resp.Items) == 0 {
		return types.VideoMetadata{}, fmt.Errorf("video %s not found or is not accessible: %w", videoID, types.ErrNotFound)
	}
	sn := resp.Items[0].Snippet
	channel := sn.ChannelTitle
	if channel == "" {
		channel = "Unknown Channel"
	}
	return types.VideoMetadata{Title: sn.Title, ChannelName: channel, PublishedAt: sn.PublishedAt}, nil
}
