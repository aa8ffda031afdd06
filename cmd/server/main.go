package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/floorplan-layout/analyzer/internal/config"
	_ "github.com/floorplan-layout/analyzer/internal/handler" // register element handlers
	"github.com/floorplan-layout/analyzer/internal/logger"
	"github.com/floorplan-layout/analyzer/internal/server"
	"github.com/floorplan-layout/analyzer/internal/vision"
)

func main() {
	configPath := flag.String("config", os.Getenv("FLOORPLAN_CONFIG"), "Path to HCL config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	level, _ := logger.ParseLevel(cfg.LogLevel)
	log := logger.New(level)

	model, err := vision.NewModel(cfg.Model, log)
	if err != nil {
		log.Error("creating vision model", "error", err)
		os.Exit(1)
	}

	srv := server.New(cfg, model, log)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := srv.Shutdown(10 * time.Second); err != nil {
			log.Error("shutdown", "error", err)
		}
	}()

	if err := srv.Listen(); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
