package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/forPelevin/ytdigest/internal/domain/prompts"
	"github.com/forPelevin/ytdigest/internal/domain/transcript"
	"github.com/forPelevin/ytdigest/internal/httpapi"
	"github.com/forPelevin/ytdigest/internal/mcpserver"
	"github.com/forPelevin/ytdigest/internal/ports/adapters/youtube"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			app, err := buildApp()
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return httpapi.New(app.Service, app.Metrics.Handler(), app.Log).ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().String("addr", getenvDefault("YTDIGEST_HTTP_ADDR", ":5000"), "Listen address")
	return cmd
}

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the digest tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return mcpserver.Run(ctx, app.Service, version)
		},
	}
}

func newStylesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "styles",
		Short: "List processing styles",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, s := range prompts.Styles() {
				tpl := prompts.Get(s)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%v\n", s, tpl.Fields)
			}
		},
	}
}

func newTranscriptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcript <video-id-or-url>",
		Short: "Print the raw caption transcript of one video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			timestamps, _ := cmd.Flags().GetBool("timestamps")
			ids, err := videoIDs(args)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				return fmt.Errorf("video ID is required")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			segs, err := youtube.New(os.Getenv("YOUTUBE_API_KEY")).FetchTranscript(ctx, ids[0])
			if err != nil {
				return err
			}
			text := transcript.JoinSegments(segs)
			if timestamps {
				text = transcript.JoinTimed(segs)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().Bool("timestamps", false, "Prefix each line with its start time")
	return cmd
}
