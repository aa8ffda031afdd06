package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/floorplan-layout/analyzer/internal/floorplan"
	"github.com/floorplan-layout/analyzer/internal/normalize"
	"github.com/floorplan-layout/analyzer/internal/vision"
)

func TestParse(t *testing.T) {
	src := []byte(`
log_level = "debug"
shape     = "flat"

model {
  provider    = "ollama"
  name        = "llava"
  base_url    = "http://gpu-box:11434"
  temperature = 0.2
}

normalize {
  cooling_check  = "enforce"
  extract_fenced = true
}

stream {
  chunk_delay_ms = 0
}

server {
  cors_origins = "http://localhost:3000"
}
`)
	cfg, err := Parse("analyzer.hcl", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := Default()
	want.LogLevel = "debug"
	want.Shape = floorplan.ShapeFlat
	want.Model.Provider = "ollama"
	want.Model.Model = "llava"
	want.Model.BaseURL = "http://gpu-box:11434"
	want.Model.Temperature = 0.2
	want.Normalize.CoolingCheck = normalize.CoolingEnforce
	want.Normalize.ExtractFenced = true
	want.Stream.ChunkDelay = 0
	want.Server.CORSOrigins = "http://localhost:3000"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}

	// untouched attributes inside a present block keep their defaults
	if !cfg.Normalize.RepairGeometry || cfg.Model.MaxTokens != 4096 || cfg.Stream.ChunkSize != 100 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestParseProviderDefaults(t *testing.T) {
	cfg, err := Parse("analyzer.hcl", []byte("model {\n  provider = \"ollama\"\n}\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Model.BaseURL != "" || cfg.Model.Model != "" {
		t.Errorf("ollama config inherited base_url=%q model=%q", cfg.Model.BaseURL, cfg.Model.Model)
	}

	t.Setenv("OLLAMA_HOST", "")
	m, err := vision.NewModel(cfg.Model, nil)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if got := fmt.Sprintf("%T", m); got != "*vision.ollamaModel" {
		t.Errorf("model type = %s", got)
	}
}

func TestLoadEnvProviderOllama(t *testing.T) {
	t.Setenv("FLOORPLAN_PROVIDER", "ollama")
	t.Setenv("FLOORPLAN_BASE_URL", "")
	t.Setenv("FLOORPLAN_MODEL", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model.Provider != "ollama" || cfg.Model.BaseURL != "" || cfg.Model.Model != "" {
		t.Errorf("model = %+v", cfg.Model)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"shape", `shape = "tree"`},
		{"cooling", "normalize {\n  cooling_check = \"strict\"\n}"},
		{"provider", "model {\n  provider = \"bard\"\n}"},
		{"chunk size", "stream {\n  chunk_size = 0\n}"},
		{"log level", `log_level = "loud"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("analyzer.hcl", []byte(tt.src))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Parse(%q) err = %v, want ErrInvalid", tt.src, err)
			}
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	if _, err := Parse("analyzer.hcl", []byte(`model {`)); err == nil {
		t.Error("Parse succeeded on broken HCL")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analyzer.hcl")
	if err := os.WriteFile(path, []byte("shape = \"nested\"\nserver {\n  addr = \":9000\"\n}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FLOORPLAN_ADDR", ":9100")
	t.Setenv("FLOORPLAN_MODEL", "gpt-4o-mini")
	t.Setenv("FLOORPLAN_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Shape != floorplan.ShapeNested {
		t.Errorf("Shape = %s, want nested from file", cfg.Shape)
	}
	if cfg.Server.Addr != ":9100" {
		t.Errorf("Addr = %s, want env override", cfg.Server.Addr)
	}
	if cfg.Model.Model != "gpt-4o-mini" {
		t.Errorf("Model = %s", cfg.Model.Model)
	}
	if cfg.Model.APIKey != "sk-test" {
		t.Errorf("APIKey = %q, want OPENAI_API_KEY fallback", cfg.Model.APIKey)
	}
}

func TestLoadEnvInvalid(t *testing.T) {
	t.Setenv("FLOORPLAN_SHAPE", "spiral")
	if _, err := Load(""); !errors.Is(err, ErrInvalid) {
		t.Errorf("Load err = %v, want ErrInvalid", err)
	}
}

func TestDerivedOptions(t *testing.T) {
	cfg := Default()
	cfg.Shape = floorplan.ShapeFlat
	cfg.Stream.ChunkDelay = 10 * time.Millisecond

	if got := cfg.NormalizeOptions().Shape; got != floorplan.ShapeFlat {
		t.Errorf("NormalizeOptions().Shape = %s", got)
	}
	a := cfg.AssistantOptions()
	if a.Shape != floorplan.ShapeFlat || a.ChunkSize != 100 || a.ChunkDelay != 10*time.Millisecond {
		t.Errorf("AssistantOptions = %+v", a)
	}
}
