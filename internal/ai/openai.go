package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/acadvisor/acadvisor/internal/config"
)

const systemPrompt = `You are an academic advisor for an undergraduate Economics programme.
You receive a deterministic result computed from the course catalog and write a short
explanation for the student. Never add, remove or reorder courses, never change credits
or prerequisites, and do not invent course codes. Write 80 to 150 words in plain
paragraphs without markdown. Keep an encouraging but realistic tone.`

// OpenAIGateway calls an OpenAI-compatible chat completion endpoint.
// The default base URL targets DeepSeek.
type OpenAIGateway struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// NewOpenAIGateway creates a gateway from AI configuration
func NewOpenAIGateway(cfg config.AIConfig, logger *zap.Logger) *OpenAIGateway {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	// The per-call deadline comes from the request context.
	clientCfg.HTTPClient = &http.Client{Timeout: 2 * cfg.Timeout()}

	return &OpenAIGateway{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

func (g *OpenAIGateway) Name() string { return SourceOpenAI }

// Enhance sends the prompt and returns the first choice's content
func (g *OpenAIGateway) Enhance(ctx context.Context, req Request) Result {
	return callWithTimeout(ctx, req.Timeout, SourceOpenAI, func(ctx context.Context) Result {
		resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
			},
			MaxTokens:   g.maxTokens,
			Temperature: g.temperature,
		})
		if err != nil {
			failure := classifyError(ctx, err)
			g.logger.Warn("AI completion failed",
				zap.String("intent", string(req.Intent)),
				zap.String("failure", string(failure)),
				zap.Error(err),
			)
			return Failed(SourceOpenAI, failure)
		}

		if len(resp.Choices) == 0 {
			return Failed(SourceOpenAI, FailureMalformed)
		}
		text := strings.TrimSpace(resp.Choices[0].Message.Content)
		if text == "" {
			return Failed(SourceOpenAI, FailureMalformed)
		}

		g.logger.Debug("AI completion received",
			zap.String("intent", string(req.Intent)),
			zap.Int("prompt_tokens", resp.Usage.PromptTokens),
			zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		)
		return Result{Text: text, Source: SourceOpenAI}
	})
}

func classifyError(ctx context.Context, err error) Failure {
	if ctx.Err() != nil {
		return contextFailure(ctx.Err())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return FailureRateLimited
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return FailureRateLimited
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return FailureMalformed
	}

	return FailureUnavailable
}
