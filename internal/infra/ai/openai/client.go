package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/legalsense/internal/domain/analysis"
	"github.com/bryanwahyu/legalsense/internal/infra/ai/prompt"
)

const maxTokens = 2048

type Client struct {
	*openai.Client
	Model     string
	ChatModel string
}

func NewClient(apiKey, model, chatModel string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model, ChatModel: chatModel}
}

// Analyze runs the two-module analysis on a stored document and decodes the
// strict JSON response. A response that does not unmarshal or validate is an
// upstream schema error.
func (c *Client) Analyze(ctx context.Context, fileURL string) (*analysis.FullAnalysisResult, error) {
	model := c.Model
	if model == "" {
		model = "gpt-4o-2024-08-06"
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.AnalyzerSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.AnalyzerUserPrompt(fileURL)},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if isReasoningModel(model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, mapErr(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion: %w", analysis.ErrInvalidResult)
	}

	var out analysis.FullAnalysisResult
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		return nil, fmt.Errorf("decoding analyzer response: %v: %w", err, analysis.ErrInvalidResult)
	}
	return &out, nil
}

func isReasoningModel(model string) bool {
	return strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") ||
		strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5")
}

// mapErr translates provider quota errors to the domain sentinel.
func mapErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return analysis.ErrQuotaExceeded
	}
	return fmt.Errorf("failed to create chat completion: %w", err)
}
