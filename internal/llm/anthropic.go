package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/GoSim-25-26J-441/sitegen-backend/internal/projects/domain"
)

const (
	defaultAnthropicModel = "claude-3-5-sonnet-latest"
	providerAnthropic     = "anthropic"
)

// AnthropicConfig configures the Messages API client.
type AnthropicConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// AnthropicClient generates through the Anthropic Messages API.
type AnthropicClient struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func NewAnthropicClient(cfg AnthropicConfig) *AnthropicClient {
	if cfg.Model == "" {
		cfg.Model = defaultAnthropicModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 8192
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		// The sweeper retries failed messages, so the SDK must not.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicClient{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
	}
}

func toAnthropicMessages(turns []domain.Turn) []anthropic.MessageParam {
	msgs := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		block := anthropic.NewTextBlock(t.Content)
		if t.Role == domain.RoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(block))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(block))
		}
	}
	return msgs
}

// Generate implements Generator. It returns the text of the first content block.
func (c *AnthropicClient) Generate(ctx context.Context, system string, turns []domain.Turn) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  toAnthropicMessages(turns),
	}
	if strings.TrimSpace(system) != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", anthropicError(err)
	}
	if len(resp.Content) == 0 {
		return "", &domain.GenerationError{Provider: providerAnthropic, StatusCode: http.StatusOK, Message: "no completion returned"}
	}
	return resp.Content[0].Text, nil
}

// anthropicError converts an SDK error into a GenerationError. API errors keep
// their HTTP status and the provider's own message; transport errors have
// status 0.
func anthropicError(err error) error {
	genErr := &domain.GenerationError{Provider: providerAnthropic, Message: truncateMessage(err.Error()), Err: err}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		genErr.StatusCode = apiErr.StatusCode
		genErr.Message = truncateMessage(apiErrorMessage(apiErr.RawJSON()))
	}
	return genErr
}

// apiErrorMessage pulls error.message out of an API error body, falling back
// to the raw body.
func apiErrorMessage(raw string) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(raw), &body); err == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	return strings.TrimSpace(raw)
}
