package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/forPelevin/ytdigest/internal/domain/youtubeurl"
	"github.com/forPelevin/ytdigest/internal/pipeline"
	"github.com/forPelevin/ytdigest/internal/types"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [video-id-or-url ...]",
		Short: "Digest videos and write transcripts.txt and results.json",
		RunE:  run,
	}
	cmd.Flags().String("out", "out", "Output directory")
	cmd.Flags().String("style", string(types.StyleDefault), "Processing style")
	cmd.Flags().String("playlist", "", "Playlist URL whose videos are added to the run")
	cmd.Flags().Bool("print", false, "Also print the document to stdout")
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	outDir, _ := cmd.Flags().GetString("out")
	style, _ := cmd.Flags().GetString("style")
	playlist, _ := cmd.Flags().GetString("playlist")
	printDoc, _ := cmd.Flags().GetBool("print")

	ids, err := videoIDs(args)
	if err != nil {
		return err
	}
	if len(ids) == 0 && playlist == "" {
		return fmt.Errorf("at least one video ID, URL or --playlist is required")
	}

	app, err := buildApp()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, 3*time.Hour)
	defer cancelTimeout()

	if playlist != "" {
		videos, err := app.Service.Playlist(ctx, playlist)
		if err != nil {
			return fmt.Errorf("playlist: %w", err)
		}
		for _, v := range videos {
			ids = append(ids, v.VideoID)
		}
	}

	dir, err := app.Run(ctx, pipeline.RunInput{VideoIDs: ids, Style: types.Style(style), OutDir: outDir})
	if err != nil {
		return err
	}
	if printDoc {
		b, err := os.ReadFile(filepath.Join(dir, "transcripts.txt"))
		if err != nil {
			return err
		}
		_, _ = cmd.OutOrStdout().Write(b)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), dir)
	return nil
}

// videoIDs accepts bare IDs or watch URLs.
func videoIDs(args []string) ([]string, error) {
	ids := make([]string, 0, len(args))
	for _, a := range args {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if !strings.Contains(a, "/") {
			ids = append(ids, a)
			continue
		}
		if !youtubeurl.Validate(a) {
			return nil, fmt.Errorf("invalid YouTube URL: %s", a)
		}
		id := youtubeurl.VideoID(a)
		if id == "" {
			return nil, fmt.Errorf("no video ID in URL: %s", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
