package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/GoSim-25-26J-441/sitegen-backend/internal/projects/domain"
)

const (
	defaultGeminiModel = "gemini-2.5-flash"
	providerGemini     = "gemini"
)

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// GeminiClient generates through the Gemini API using the genai SDK.
type GeminiClient struct {
	client    *genai.Client
	model     string
	maxTokens int
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiClient{client: client, model: cfg.Model, maxTokens: cfg.MaxTokens}, nil
}

// toGeminiContents maps turns onto genai roles; assistant becomes "model".
func toGeminiContents(turns []domain.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := genai.Role(genai.RoleUser)
		if t.Role == domain.RoleAssistant {
			role = genai.Role(genai.RoleModel)
		}
		contents = append(contents, genai.NewContentFromText(t.Content, role))
	}
	return contents
}

// Generate implements Generator.
func (c *GeminiClient) Generate(ctx context.Context, system string, turns []domain.Turn) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if strings.TrimSpace(system) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if c.maxTokens > 0 {
		cfg.MaxOutputTokens = int32(c.maxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, toGeminiContents(turns), cfg)
	if err != nil {
		genErr := &domain.GenerationError{Provider: providerGemini, Message: truncateMessage(err.Error()), Err: err}
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			genErr.StatusCode = apiErr.Code
			genErr.Message = truncateMessage(apiErr.Message)
		}
		return "", genErr
	}

	text := resp.Text()
	if text == "" {
		return "", &domain.GenerationError{Provider: providerGemini, Message: "no completion returned"}
	}
	return text, nil
}
