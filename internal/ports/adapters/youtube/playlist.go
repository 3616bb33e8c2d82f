package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/forPelevin/ytdigest/internal/types"
)

type playlistItemsResp struct {
	Items *[]struct {
		Snippet *struct {
			Title       *string `json:"title"`
			PublishedAt string  `json:"publishedAt"`
			ResourceID  *struct {
				VideoID *string `json:"videoId"`
			} `json:"resourceId"`
			Thumbnails *struct {
				Default *struct {
					URL *string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

// FetchPlaylistVideos lists up to maxItems videos of a playlist, one page per
// rate-limiter tick, under a wall-clock deadline.
func (c *Client) FetchPlaylistVideos(ctx context.Context, playlistID string) ([]types.VideoSummary, error) {
	if c.apiKey == "" {
		return nil, errNoAPIKey
	}
	ctx, cancel := context.WithTimeout(ctx, c.playlistTimeout)
	defer cancel()

	c.log.Info("fetching playlist", slog.String("playlist_id", playlistID))
	var (
		videos []types.VideoSummary
		token  string
	)
	for len(videos) < c.maxItems {
		if err := c.pages.Wait(ctx); err != nil {
			return nil, c.deadline(ctx, err)
		}
		page, err := c.fetchPage(ctx, playlistID, token)
		if err != nil {
			return nil, c.deadline(ctx, err)
		}
		for _, v := range page.videos {
			if len(videos) >= c.maxItems {
				c.log.Warn("playlist item limit reached", slog.Int("limit", c.maxItems))
				break
			}
			videos = append(videos, v)
		}
		token = page.next
		if token == "" {
			break
		}
	}
	if len(videos) == 0 {
		return nil, fmt.Errorf("no valid videos found in playlist %s: %w", playlistID, types.ErrNotAccessible)
	}
	c.log.Info("fetched playlist", slog.String("playlist_id", playlistID), slog.Int("videos", len(videos)))
	return videos, nil
}

func (c *Client) deadline(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("playlist fetch exceeded %s: %w", c.playlistTimeout, types.ErrTimeout)
	}
	return err
}

type page struct {
	videos []types.VideoSummary
	next   string
}

func (c *Client) fetchPage(ctx context.Context, playlistID, token string) (page, error) {
	q := url.Values{}
	q.Set("part", "snippet,contentDetails")
	q.Set("playlistId", playlistID)
	q.Set("maxResults", strconv.Itoa(c.pageSize))
	q.Set("key", c.apiKey)
	if token != "" {
		q.Set("pageToken", token)
	}
	var resp playlistItemsResp
	if err := c.getJSON(ctx, c.apiBase+"/playlistItems?"+q.Encode(), types.ErrNotAccessible, &resp); err != nil {
		return page{}, fmt.Errorf("playlist %s: %w", playlistID, err)
	}
	if resp.Items == nil {
		return page{}, fmt.Errorf("invalid playlist data received from YouTube: %w", types.ErrLookup)
	}

	ids := make([]string, 0, len(*resp.Items))
	for _, it := range *resp.Items {
		if it.Snippet != nil && it.Snippet.ResourceID != nil && it.Snippet.ResourceID.VideoID != nil {
			ids = append(ids, *it.Snippet.ResourceID.VideoID)
		}
	}
	published := c.publishedDates(ctx, ids)

	out := page{next: resp.NextPageToken}
	for _, it := range *resp.Items {
		sn := it.Snippet
		if sn == nil || sn.Title == nil || sn.ResourceID == nil || sn.ResourceID.VideoID == nil ||
			sn.Thumbnails == nil || sn.Thumbnails.Default == nil || sn.Thumbnails.Default.URL == nil {
			c.log.Warn("skipping malformed playlist item", slog.String("playlist_id", playlistID))
			continue
		}
		id := *sn.ResourceID.VideoID
		pub := sn.PublishedAt
		if p, ok := published[id]; ok && p != "" {
			pub = p
		}
		out.videos = append(out.videos, types.VideoSummary{
			VideoID:     id,
			Title:       *sn.Title,
			Thumbnail:   *sn.Thumbnails.Default.URL,
			PublishedAt: pub,
		})
	}
	return out, nil
}

// publishedDates looks up video publish dates; the playlist snippet only
// carries the time the item was added. Failures fall back to that time.
func (c *Client) publishedDates(ctx context.Context, ids []string) map[string]string {
	if len(ids) == 0 {
		return nil
	}
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("id", strings.Join(ids, ","))
	q.Set("key", c.apiKey)

	var resp videosResp
	if err := c.getJSON(ctx, c.apiBase+"/videos?"+q.Encode(), types.ErrNotFound, &resp); err != nil {
		c.log.Warn("video details lookup failed", slog.Any("error", err))
		return nil
	}
	out := make(map[string]string, len(resp.Items))
	for _, it := range resp.Items {
		out[it.ID] = it.Snippet.PublishedAt
	}
	return out
}
