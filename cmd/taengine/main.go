package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"ta-enginev1/internal/logger"
	"ta-enginev1/internal/taengine"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	logger.Init("taengine", slog.LevelInfo)

	cfg := taengine.LoadConfig()
	log.Printf("[taengine] enabled TFs: %v, snapshot interval: %ds", cfg.EnabledTFs, cfg.SnapshotIntervalS)

	svc, err := taengine.New(cfg)
	if err != nil {
		log.Fatalf("[taengine] init failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := svc.Run(ctx); err != nil {
		log.Fatalf("[taengine] fatal: %v", err)
	}
}
