// Package mcpserver exposes the digest service as MCP tools over stdio.
package mcpserver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/forPelevin/ytdigest/internal/progress"
	"github.com/forPelevin/ytdigest/internal/types"
	"github.com/forPelevin/ytdigest/internal/usecase"
)

// Service is the part of usecase.Service the tools call.
type Service interface {
	Digest(ctx context.Context, videoIDs []string, style types.Style) (usecase.Digest, error)
	Playlist(ctx context.Context, rawURL string) ([]types.VideoSummary, error)
	Progress() *progress.Store
}

type DigestInput struct {
	VideoIDs []string `json:"video_ids" jsonschema:"YouTube video IDs to fetch and process"`
	Style    string   `json:"style,omitempty" jsonschema:"Processing style: default, academic, technical or business"`
}

type DigestOutput struct {
	RunID    string             `json:"run_id"`
	Results  []types.ResultView `json:"results"`
	Document string             `json:"document"`
}

type PlaylistInput struct {
	URL string `json:"url" jsonschema:"YouTube playlist URL"`
}

type PlaylistOutput struct {
	Videos []types.VideoSummary `json:"videos"`
}

type ProgressInput struct {
	VideoIDs []string `json:"video_ids" jsonschema:"Video IDs to report progress for"`
}

type ProgressOutput struct {
	Progress map[string]progress.Code `json:"progress" jsonschema:"0 started, 50 fetched, 75 processed, 100 complete, -1 failed"`
}

// NewServer builds an MCP server with every tool registered.
func NewServer(svc Service, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "ytdigest",
		Version: version,
	}, nil)
	RegisterTools(server, svc)
	return server
}

func RegisterTools(server *mcp.Server, svc Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "digest_videos",
		Description: "Fetch transcripts for YouTube videos, clean them up with an LLM and return structured results plus a combined text document.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input DigestInput) (*mcp.CallToolResult, DigestOutput, error) {
		if len(input.VideoIDs) == 0 {
			return nil, DigestOutput{}, errors.New("video_ids is required")
		}
		d, err := svc.Digest(ctx, input.VideoIDs, types.Style(input.Style))
		if err != nil {
			return nil, DigestOutput{}, err
		}
		return nil, DigestOutput{RunID: d.RunID, Results: types.Views(d.Results), Document: d.Document}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "playlist_videos",
		Description: "List the videos of a YouTube playlist with titles, thumbnails and publish dates.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input PlaylistInput) (*mcp.CallToolResult, PlaylistOutput, error) {
		if input.URL == "" {
			return nil, PlaylistOutput{}, errors.New("url is required")
		}
		videos, err := svc.Playlist(ctx, input.URL)
		if err != nil {
			return nil, PlaylistOutput{}, err
		}
		return nil, PlaylistOutput{Videos: videos}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "download_progress",
		Description: "Report the processing progress code of each video ID.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, input ProgressInput) (*mcp.CallToolResult, ProgressOutput, error) {
		if len(input.VideoIDs) == 0 {
			return nil, ProgressOutput{}, errors.New("video_ids is required")
		}
		return nil, ProgressOutput{Progress: svc.Progress().Snapshot(input.VideoIDs)}, nil
	})
}

// Run serves the tools over stdio until ctx is done or the client disconnects.
func Run(ctx context.Context, svc Service, version string) error {
	slog.Info("starting mcp server", slog.String("transport", "stdio"))
	return NewServer(svc, version).Run(ctx, &mcp.StdioTransport{})
}
