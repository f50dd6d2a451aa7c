package explain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Generator turns a prompt into model output.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Explainer struct {
	gen    Generator
	model  string
	logger *slog.Logger
}

func New(gen Generator, model string, logger *slog.Logger) *Explainer {
	return &Explainer{gen: gen, model: model, logger: logger}
}

// Explain asks the model to explain one block. It always returns text: on any
// failure the result is FailureNotice for the configured model.
func (e *Explainer) Explain(ctx context.Context, code, title string) string {
	e.logger.Info("querying model", "title", title, "model", e.model)

	out, err := e.gen.Generate(ctx, BuildPrompt(code, title))
	if err != nil {
		e.logger.Error("model request failed", "title", title, "error", err)
		return e.FailureNotice()
	}
	return strings.TrimSpace(out)
}

// FailureNotice is the placeholder used in place of an explanation when the
// model cannot be reached.
func (e *Explainer) FailureNotice() string {
	return fmt.Sprintf(failureNotice, e.model)
}

func BuildPrompt(code, title string) string {
	return fmt.Sprintf(explanationPrompt, title, code)
}
