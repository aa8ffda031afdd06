// Package config loads analyzer settings from an HCL file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/floorplan-layout/analyzer/internal/assistant"
	"github.com/floorplan-layout/analyzer/internal/floorplan"
	"github.com/floorplan-layout/analyzer/internal/logger"
	"github.com/floorplan-layout/analyzer/internal/normalize"
	"github.com/floorplan-layout/analyzer/internal/vision"
)

// ErrInvalid is returned for invalid configuration values.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all analyzer settings.
type Config struct {
	LogLevel  string
	Shape     floorplan.Shape
	Model     vision.Config
	Normalize normalize.Options
	Stream    Stream
	Server    Server
}

// Stream paces the chat reply.
type Stream struct {
	ChunkSize  int
	ChunkDelay time.Duration
}

// Server configures the HTTP surface.
type Server struct {
	Addr        string
	CORSOrigins string
}

// Default returns the built-in settings: the OpenAI provider at temperature 0.
// Model and BaseURL stay empty so each provider fills in its own defaults.
func Default() Config {
	return Config{
		LogLevel: "info",
		Shape:    floorplan.ShapeAuto,
		Model: vision.Config{
			Provider:    "openai",
			Temperature: 0,
			MaxTokens:   4096,
		},
		Normalize: normalize.DefaultOptions(),
		Stream: Stream{
			ChunkSize:  100,
			ChunkDelay: 50 * time.Millisecond,
		},
		Server: Server{Addr: ":8080"},
	}
}

// Load returns the defaults overlaid with the HCL file at path (if any) and
// then with environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		var f file
		if err := hclsimple.DecodeFile(path, nil, &f); err != nil {
			return Config{}, fmt.Errorf("loading config %s: %w", path, err)
		}
		if err := f.apply(&cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes HCL source; filename must end in .hcl.
func Parse(filename string, src []byte) (Config, error) {
	cfg := Default()
	var f file
	if err := hclsimple.Decode(filename, src, nil, &f); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", filename, err)
	}
	if err := f.apply(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if _, err := floorplan.ParseShape(string(c.Shape)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := normalize.ParseCoolingCheck(string(c.Normalize.CoolingCheck)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch c.Model.Provider {
	case "openai", "custom", "ollama":
	default:
		return fmt.Errorf("%w: unknown model provider %q", ErrInvalid, c.Model.Provider)
	}
	if c.Model.MaxTokens < 0 {
		return fmt.Errorf("%w: max_tokens must not be negative", ErrInvalid)
	}
	if c.Stream.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive", ErrInvalid)
	}
	if c.Stream.ChunkDelay < 0 {
		return fmt.Errorf("%w: chunk_delay_ms must not be negative", ErrInvalid)
	}
	return nil
}

// NormalizeOptions returns the normalizer options; the normalizer expects
// whatever shape the prompt asks for.
func (c *Config) NormalizeOptions() normalize.Options {
	opts := c.Normalize
	opts.Shape = c.Shape
	return opts
}

// AssistantOptions returns the chat turn options.
func (c *Config) AssistantOptions() assistant.Options {
	return assistant.Options{
		Shape:      c.Shape,
		ChunkSize:  c.Stream.ChunkSize,
		ChunkDelay: c.Stream.ChunkDelay,
	}
}

func applyEnv(c *Config) {
	c.LogLevel = getEnv("FLOORPLAN_LOG_LEVEL", c.LogLevel)
	c.Shape = floorplan.Shape(getEnv("FLOORPLAN_SHAPE", string(c.Shape)))
	c.Model.Provider = getEnv("FLOORPLAN_PROVIDER", c.Model.Provider)
	c.Model.Model = getEnv("FLOORPLAN_MODEL", c.Model.Model)
	c.Model.BaseURL = getEnv("FLOORPLAN_BASE_URL", c.Model.BaseURL)
	c.Model.APIKey = getEnv("FLOORPLAN_API_KEY", c.Model.APIKey)
	c.Server.Addr = getEnv("FLOORPLAN_ADDR", c.Server.Addr)
	c.Server.CORSOrigins = getEnv("FLOORPLAN_CORS_ORIGINS", c.Server.CORSOrigins)

	if c.Model.APIKey == "" && c.Model.Provider == "openai" {
		c.Model.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}
