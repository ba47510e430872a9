package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/progress-engine/internal/app"
	"github.com/yungbote/progress-engine/internal/platform/envutil"
	"github.com/yungbote/progress-engine/internal/platform/logger"
)

func main() {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig(log)
	if err != nil {
		log.Fatal("config invalid", "error", err)
	}
	a, err := app.New(ctx, log, cfg)
	if err != nil {
		log.Fatal("failed to init app", "error", err)
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		log.Error("server failed", "error", err)
		a.Close()
		os.Exit(1)
	}
}
