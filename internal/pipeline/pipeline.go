package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/forPelevin/ytdigest/internal/metrics"
	"github.com/forPelevin/ytdigest/internal/ports"
	"github.com/forPelevin/ytdigest/internal/ports/adapters/openai"
	"github.com/forPelevin/ytdigest/internal/ports/adapters/openrouter"
	"github.com/forPelevin/ytdigest/internal/ports/adapters/youtube"
	"github.com/forPelevin/ytdigest/internal/progress"
	"github.com/forPelevin/ytdigest/internal/resilience"
	"github.com/forPelevin/ytdigest/internal/types"
	"github.com/forPelevin/ytdigest/internal/usecase"
)

const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
)

type Config struct {
	LLMProvider string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	OpenRouterAPIKey       string
	OpenRouterModel        string
	OpenRouterBaseURL      string
	OpenRouterAllowedHosts []string

	YouTubeAPIKey string

	// LLMMinDelay is the minimum gap between the end of one model call and
	// the start of the next.
	LLMMinDelay    time.Duration
	LLMMaxAttempts int

	FetchConcurrency int

	Logger *slog.Logger
}

func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY is required for provider openai")
		}
	case ProviderOpenRouter:
		if c.OpenRouterAPIKey == "" {
			return errors.New("OPENROUTER_API_KEY is required for provider openrouter")
		}
	default:
		return fmt.Errorf("unknown llm provider %q (want %s or %s)", c.LLMProvider, ProviderOpenAI, ProviderOpenRouter)
	}
	if c.LLMMinDelay < 0 {
		return fmt.Errorf("llm min delay must be >= 0")
	}
	if c.LLMMaxAttempts <= 0 {
		return fmt.Errorf("llm max attempts must be > 0")
	}
	if c.LLMProvider != ProviderOpenRouter {
		return nil
	}
	return openrouter.ValidateBaseURL(
		c.OpenRouterBaseURL,
		c.OpenRouterAllowedHosts,
	)
}

// App is the wired set of long-lived components shared by every entry point.
type App struct {
	Service *usecase.Service
	Metrics *metrics.Metrics
	Log     *slog.Logger
}

func Build(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	// adapters
	var llm ports.Completer
	switch cfg.LLMProvider {
	case ProviderOpenAI:
		a := openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
		log.Debug("llm configured", slog.String("provider", cfg.LLMProvider), slog.String("model", a.Model()))
		llm = a
	default:
		a := openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL)
		log.Debug("llm configured", slog.String("provider", cfg.LLMProvider), slog.String("model", a.Model()))
		llm = a
	}
	yt := youtube.New(cfg.YouTubeAPIKey, youtube.WithLogger(log))

	m := metrics.New()
	prog := progress.NewStore()
	prog.OnSet(m.Progress)

	retry := resilience.DefaultRetryPolicy()
	retry.MaxAttempts = cfg.LLMMaxAttempts

	svc := usecase.NewService(usecase.Deps{
		LLM:              llm,
		Transcripts:      yt,
		Metadata:         yt,
		Playlists:        yt,
		Limiter:          resilience.NewRateLimiter(cfg.LLMMinDelay),
		Retry:            retry,
		Progress:         prog,
		Metrics:          m,
		Log:              log,
		FetchConcurrency: cfg.FetchConcurrency,
	})
	return &App{Service: svc, Metrics: m, Log: log}, nil
}

type RunInput struct {
	VideoIDs []string
	Style    types.Style
	OutDir   string
}

// Run digests the videos and writes transcripts.txt and results.json into a
// fresh run directory under in.OutDir. It returns the run directory.
func (a *App) Run(ctx context.Context, in RunInput) (string, error) {
	d, err := a.Service.Digest(ctx, in.VideoIDs, in.Style)
	if err != nil {
		return "", err
	}

	outDir := in.OutDir
	if outDir == "" {
		outDir = "out"
	}
	runOutDir := buildRunOutDir(outDir, string(in.Style), d.RunID, time.Now().UTC())
	if err := os.MkdirAll(runOutDir, 0o755); err != nil {
		return "", err
	}
	a.Log.Info("output run dir", slog.String("path", runOutDir))

	docPath := filepath.Join(runOutDir, "transcripts.txt")
	if err := os.WriteFile(docPath, []byte(d.Document+"\n"), 0o644); err != nil {
		return "", err
	}

	b, err := json.MarshalIndent(types.Views(d.Results), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}
	resultsPath := filepath.Join(runOutDir, "results.json")
	if err := os.WriteFile(resultsPath, b, 0o644); err != nil {
		return "", err
	}
	a.Log.Info("results written", slog.Int("results", len(d.Results)), slog.String("path", resultsPath))
	return runOutDir, nil
}

func buildRunOutDir(outRoot, style, runID string, now time.Time) string {
	name := normalizePathSegment(style)
	if name == "" {
		name = string(types.StyleDefault)
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", runID, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("digest-%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.Completer = (*openai.Adapter)(nil)
var _ ports.Completer = (*openrouter.Adapter)(nil)
var _ ports.TranscriptSource = (*youtube.Client)(nil)
var _ ports.MetadataSource = (*youtube.Client)(nil)
var _ ports.PlaylistSource = (*youtube.Client)(nil)
