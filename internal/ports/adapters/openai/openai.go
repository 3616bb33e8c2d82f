package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	oai "github.com/sashabaranov/go-openai"

	"github.com/forPelevin/ytdigest/internal/types"
)

const (
	DefaultModel   = "gpt-4o-mini"
	requestTimeout = 120 * time.Second
)

type Adapter struct {
	cli         *oai.Client
	model       string
	temperature float32
}

// New builds a chat client. An empty baseURL keeps the library default.
func New(apiKey, model, baseURL string) *Adapter {
	if model == "" {
		model = DefaultModel
	}
	cfg := oai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Adapter{cli: oai.NewClientWithConfig(cfg), model: model, temperature: 0.3}
}

func (a *Adapter) Model() string { return a.model }

func (a *Adapter) Complete(ctx context.Context, systemInstruction, userText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req := oai.ChatCompletionRequest{
		Model: a.model,
		Messages: []oai.ChatCompletionMessage{
			{Role: oai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: oai.ChatMessageRoleUser, Content: userText},
		},
		Temperature: a.temperature,
		ResponseFormat: &oai.ChatCompletionResponseFormat{
			Type: oai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	resp, err := a.cli.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices in response: %w", types.ErrLookup)
	}
	return resp.Choices[0].Message.Content, nil
}

func mapError(err error) error {
	status := 0
	var apiErr *oai.APIError
	var reqErr *oai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("openai: %v: %w", err, types.ErrRateLimited)
	case status >= 500:
		return fmt.Errorf("openai: %v: %w", err, types.ErrServer)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("openai: %v: %w", err, types.ErrTimeout)
	default:
		return fmt.Errorf("openai: %w", err)
	}
}
