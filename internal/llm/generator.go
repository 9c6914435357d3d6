package llm

import (
	"context"

	"github.com/GoSim-25-26J-441/sitegen-backend/internal/projects/domain"
)

// SystemPrompt is the fixed instruction sent with every generation call.
const SystemPrompt = `You are a website generator. When asked to create or modify a website, respond with valid HTML that matches the request.
The HTML should be complete and self-contained, including any necessary CSS and JavaScript.
Use modern, semantic HTML5.
Include beautiful styling directly in a <style> tag.
Make the design match brutalist principles - raw, utilitarian, and unpolished aesthetics.
Do not explain the code, just return the HTML.
The response should start with <html> and end with </html>.`

// Generator turns a conversation into the next assistant reply.
// Failures are returned as *domain.GenerationError.
type Generator interface {
	Generate(ctx context.Context, system string, turns []domain.Turn) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, system string, turns []domain.Turn) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, system string, turns []domain.Turn) (string, error) {
	return f(ctx, system, turns)
}
