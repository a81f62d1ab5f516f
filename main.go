package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bustracker/internal/bootstrap"
	"bustracker/internal/shared/config"
	"bustracker/internal/shared/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalln("failed to load config:", err)
	}

	lg, err := logger.NewLoggerWithOptions("bustracker", cfg.Logging.Level, cfg.Logging.Dir)
	if err != nil {
		log.Fatalln("failed to create logger:", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	go func() { <-quit; cancel() }()

	bootstrap.Run(ctx, cfg, lg)
}
