package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/forPelevin/ytdigest/internal/pipeline"
	"github.com/forPelevin/ytdigest/internal/ports/adapters/openrouter"
)

func configFromEnv() (pipeline.Config, error) {
	minDelay, err := time.ParseDuration(getenvDefault("YTDIGEST_LLM_MIN_DELAY", "10s"))
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("YTDIGEST_LLM_MIN_DELAY: %w", err)
	}
	attempts, err := strconv.Atoi(getenvDefault("YTDIGEST_LLM_MAX_ATTEMPTS", "3"))
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("YTDIGEST_LLM_MAX_ATTEMPTS: %w", err)
	}
	workers, err := strconv.Atoi(getenvDefault("YTDIGEST_FETCH_CONCURRENCY", "2"))
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("YTDIGEST_FETCH_CONCURRENCY: %w", err)
	}

	cfg := pipeline.Config{
		LLMProvider: getenvDefault("LLM_PROVIDER", pipeline.ProviderOpenAI),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getenvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),

		OpenRouterAPIKey:       os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:        getenvDefault("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
		OpenRouterBaseURL:      getenvDefault("OPENROUTER_BASE_URL", "https://openrouter.ai"),
		OpenRouterAllowedHosts: openrouter.ParseAllowedHosts(os.Getenv("OPENROUTER_ALLOWED_HOSTS")),

		YouTubeAPIKey: os.Getenv("YOUTUBE_API_KEY"),

		LLMMinDelay:      minDelay,
		LLMMaxAttempts:   attempts,
		FetchConcurrency: workers,
		Logger:           slog.Default(),
	}
	if err := cfg.Validate(); err != nil {
		return pipeline.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func buildApp() (*pipeline.App, error) {
	cfg, err := configFromEnv()
	if err != nil {
		return nil, err
	}
	return pipeline.Build(cfg)
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
