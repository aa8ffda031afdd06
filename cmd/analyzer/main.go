package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/floorplan-layout/analyzer/internal/assistant"
	"github.com/floorplan-layout/analyzer/internal/attachment"
	"github.com/floorplan-layout/analyzer/internal/config"
	"github.com/floorplan-layout/analyzer/internal/export"
	"github.com/floorplan-layout/analyzer/internal/floorplan"
	_ "github.com/floorplan-layout/analyzer/internal/handler" // register element handlers
	"github.com/floorplan-layout/analyzer/internal/logger"
	"github.com/floorplan-layout/analyzer/internal/normalize"
	"github.com/floorplan-layout/analyzer/internal/result"
	"github.com/floorplan-layout/analyzer/internal/vision"
)

func main() {
	image := flag.String("image", "", "Path to floor plan image")
	raw := flag.String("raw", "", "Path to a saved model reply to normalize (or - for stdin); skips the model call")
	configPath := flag.String("config", "", "Path to HCL config file")
	shape := flag.String("shape", "", "Layout shape: auto, nested or flat (overrides config)")
	output := flag.String("o", "output", "Output directory")
	hcl := flag.Bool("hcl", false, "Also write layout.hcl")
	jsonOut := flag.Bool("json", false, "Print the full result as JSON instead of writing files")
	flag.Parse()

	if (*image == "") == (*raw == "") {
		fmt.Fprintln(os.Stderr, "usage: analyzer (-image <file> | -raw <file|->) [-config file.hcl] [-shape auto|nested|flat] [-o output] [-hcl] [-json]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *shape != "" {
		s, err := floorplan.ParseShape(*shape)
		if err != nil {
			fmt.Fprintf(os.Stderr, "shape: %v\n", err)
			os.Exit(1)
		}
		cfg.Shape = s
	}
	level, _ := logger.ParseLevel(cfg.LogLevel)
	log := logger.New(level)

	norm := normalize.New(cfg.NormalizeOptions()).WithLogger(log)

	var res *result.Result
	if *raw != "" {
		text, err := readInput(*raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read reply: %v\n", err)
			os.Exit(1)
		}
		res = norm.Normalize(string(text))
	} else {
		res, err = analyzeImage(cfg, norm, log, *image)
		if err != nil {
			fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
			os.Exit(1)
		}
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(res)
		if !res.Success() {
			os.Exit(1)
		}
		return
	}

	for _, e := range res.Errors {
		fmt.Fprintf(os.Stderr, "ERROR [%s] %s\n", e.NodeID, e.Message)
		if e.Suggestion != "" {
			fmt.Fprintf(os.Stderr, "  suggestion: %s\n", e.Suggestion)
		}
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "WARN [%s] %s\n", w.NodeID, w.Message)
	}
	if res.Kind == result.KindUnstructured {
		fmt.Fprintln(os.Stderr, "model reply is not JSON; raw reply saved")
	}

	files, err := export.Files(res, *hcl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*output, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}
	for _, name := range export.Names(files) {
		path := filepath.Join(*output, name)
		if err := os.WriteFile(path, files[name], 0644); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Println("wrote", path)
	}
	if !res.Success() {
		os.Exit(1)
	}
}

func analyzeImage(cfg config.Config, norm *normalize.Normalizer, log *slog.Logger, path string) (*result.Result, error) {
	att, err := attachment.Load(path)
	if err != nil {
		return nil, err
	}
	model, err := vision.NewModel(cfg.Model, log)
	if err != nil {
		return nil, err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := assistant.New(model, norm, cfg.AssistantOptions()).WithLogger(log)
	return a.Analyze(ctx, nil, att)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
