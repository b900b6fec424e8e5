package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"path/filepath"
	"syscall"

	"lessonforge/internal/config"
	"lessonforge/internal/daemon"
	"lessonforge/internal/logging"
	"lessonforge/internal/project"
)

func main() {
	configFlag := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", filepath.Join(cfg.Paths.LogDir, "lessonforged.log")},
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := project.Open(cfg)
	if err != nil {
		logger.Error("open project store", logging.Error(err))
		return
	}

	orch, err := buildOrchestrator(cfg, store, logger)
	if err != nil {
		logger.Error("build pipeline", logging.Error(err))
		_ = store.Close()
		return
	}

	d, err := daemon.New(cfg, store, orch, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = store.Close()
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("lessonforged shutting down")
}
