package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/forPelevin/ytdigest/internal/domain/normalize"
	"github.com/forPelevin/ytdigest/internal/domain/prompts"
	"github.com/forPelevin/ytdigest/internal/resilience"
	"github.com/forPelevin/ytdigest/internal/types"
)

const opComplete = "complete"

// Processor turns one transcript into a processed record. It never returns an
// error: every failure becomes a FailureRecord.
type Processor struct{ d Deps }

func NewProcessor(d Deps) *Processor { return &Processor{d: d.withDefaults()} }

func (p *Processor) Process(ctx context.Context, in types.TranscriptInput, style types.Style) (res types.Result) {
	style = prompts.ParseStyle(string(style))
	defer func() {
		if r := recover(); r != nil {
			p.d.Log.Error("processor panic", slog.String("video_id", in.VideoID), slog.Any("panic", r))
			res = failure(in.VideoID, fmt.Errorf("internal error: %v", r))
		}
	}()

	if err := validateInput(in); err != nil {
		return failure(in.VideoID, err)
	}

	tpl := prompts.Get(style)
	user := buildUserText(in)

	var out types.NormalizedResult
	err := p.d.Limiter.Do(ctx, opComplete, func(ctx context.Context) error {
		var err error
		out, err = p.complete(ctx, tpl.Instruction, user)
		return err
	})
	p.d.Metrics.LLMCall(err)
	if err == nil {
		err = normalize.Validate(in.TranscriptText, out)
	}
	if err != nil {
		p.d.Log.Warn("transcript processing failed", slog.String("video_id", in.VideoID), slog.Any("error", err))
		return failure(in.VideoID, err)
	}

	p.d.Log.Debug("transcript processed", slog.String("video_id", in.VideoID), slog.String("style", string(style)))
	return types.Succeeded(types.ProcessedRecord{
		NormalizedResult: out,
		VideoID:          in.VideoID,
		Title:            in.Title,
		ChannelName:      in.ChannelName,
		PublishedAt:      in.PublishedAt,
		Style:            style,
	})
}

// complete asks the model again when the call fails or the response cannot
// be parsed.
func (p *Processor) complete(ctx context.Context, instruction, user string) (types.NormalizedResult, error) {
	return resilience.Retry(ctx, p.d.Retry, func(ctx context.Context) (types.NormalizedResult, error) {
		p.d.Metrics.LLMAttempt()
		raw, err := p.d.LLM.Complete(ctx, instruction, user)
		if err != nil {
			return types.NormalizedResult{}, err
		}
		return p.d.Normalizer.Normalize(raw)
	})
}

func validateInput(in types.TranscriptInput) error {
	if strings.TrimSpace(in.VideoID) == "" {
		return fmt.Errorf("%w: missing video_id", types.ErrValidation)
	}
	if strings.TrimSpace(in.TranscriptText) == "" {
		return fmt.Errorf("%w: empty transcript for video %s", types.ErrValidation, in.VideoID)
	}
	return nil
}

// buildUserText prefixes the transcript with a context header the model must
// not copy into formatted_text.
func buildUserText(in types.TranscriptInput) string {
	var b strings.Builder
	b.WriteString("Title: " + orNA(in.Title) + "\n")
	b.WriteString("Channel: " + orNA(in.ChannelName) + "\n")
	b.WriteString("Published: " + orNA(in.PublishedAt) + "\n")
	b.WriteString("Video ID: " + in.VideoID + "\n\n")
	b.WriteString("Transcript:\n")
	b.WriteString(in.TranscriptText)
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func failure(videoID string, err error) types.Result {
	kind := types.KindProcessing
	if errors.Is(err, types.ErrValidation) {
		kind = types.KindValidation
	}
	return types.Failed(types.FailureRecord{VideoID: videoID, Message: err.Error(), Kind: kind})
}
