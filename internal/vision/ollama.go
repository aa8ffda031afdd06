package vision

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"

	"github.com/floorplan-layout/analyzer/internal/logger"
)

// ollamaModel sends the image as raw bytes through the Ollama chat API.
type ollamaModel struct {
	client *api.Client
	cfg    Config
	log    *slog.Logger
}

// NewOllama creates a model backed by a local Ollama server. An empty
// BaseURL falls back to OLLAMA_HOST and an empty Model to llama3.2-vision.
func NewOllama(cfg Config, log *slog.Logger) (Model, error) {
	host := envconfig.Host()
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parsing ollama base url: %w", err)
		}
		host = u
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.2-vision"
	}
	if log == nil {
		log = logger.Default
	}
	return &ollamaModel{
		client: api.NewClient(host, http.DefaultClient),
		cfg:    cfg,
		log:    log,
	}, nil
}

func (m *ollamaModel) Invoke(ctx context.Context, req Request) (string, error) {
	stream := false
	options := map[string]any{"temperature": m.cfg.Temperature}
	if m.cfg.MaxTokens > 0 {
		options["num_predict"] = m.cfg.MaxTokens
	}
	chatReq := api.ChatRequest{
		Model: m.cfg.Model,
		Messages: []api.Message{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt, Images: []api.ImageData{req.Image}},
		},
		Stream:  &stream,
		Options: options,
	}

	var reply strings.Builder
	err := m.client.Chat(ctx, &chatReq, func(resp api.ChatResponse) error {
		_, err := reply.WriteString(resp.Message.Content)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	m.log.Debug("vision reply received", "model", m.cfg.Model, "bytes", reply.Len())
	return reply.String(), nil
}
