// Package vision talks to the vision-capable language model that reads the
// floor-plan image.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
)

// Model is the vision model collaborator: given the prompt pair and one image
// it returns a single text reply that should contain JSON.
type Model interface {
	Invoke(ctx context.Context, req Request) (string, error)
}

// Request is one model invocation.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Image        []byte
	MimeType     string
}

// Config configures a vision model provider.
type Config struct {
	Provider    string  `json:"provider"` // openai, ollama, custom
	Model       string  `json:"model"`
	BaseURL     string  `json:"base_url"`
	APIKey      string  `json:"api_key"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// NewModel creates a vision model from configuration. Retries and replies are
// logged to log.
func NewModel(cfg Config, log *slog.Logger) (Model, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg, log), nil
	case "custom":
		return NewOpenAICompat(cfg, log), nil
	case "ollama":
		return NewOllama(cfg, log)
	case "":
		return nil, fmt.Errorf("vision provider not specified")
	default:
		return nil, fmt.Errorf("unknown vision provider: %s", cfg.Provider)
	}
}

// DataURI encodes an image as data:{mime};base64,{bytes}.
func DataURI(mimeType string, image []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
}

// ModelFunc adapts a function to the Model interface.
type ModelFunc func(ctx context.Context, req Request) (string, error)

func (f ModelFunc) Invoke(ctx context.Context, req Request) (string, error) { return f(ctx, req) }
