// Package llm talks to an OpenAI-compatible chat completion endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"time-tracker/internal/apperr"
)

type Client interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI builds a client with retries disabled; failures surface once.
func NewOpenAI(endpoint, apiKey, deployment string) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if endpoint != "" {
		opts = append(opts, option.WithBaseURL(endpoint))
	}
	return &OpenAI{client: openai.NewClient(opts...), model: deployment}
}

func (c *OpenAI) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &apperr.APIError{StatusCode: apiErr.StatusCode, Body: apiErr.RawJSON(), Err: err}
		}
		return "", &apperr.UpstreamError{Service: "llm call", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
