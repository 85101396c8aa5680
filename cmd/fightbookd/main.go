// Package main starts the fightbook arena daemon: the JSON API plus the
// optional terminal arena.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fightbook/internal/config"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	a, cleanup, err := initApp(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("initializing: %v", err)
	}
	defer cleanup()

	a.Logger.Info("fightbookd starting",
		zap.String("http", cfg.HTTP.Addr()),
		zap.Bool("telnet", cfg.Telnet.Enabled),
		zap.String("store", a.Storage.Kind),
		zap.Duration("startup", time.Since(start)),
	)

	if err := a.Lifecycle.Run(context.Background()); err != nil {
		a.Logger.Error("server stopped with error", zap.Error(err))
		return
	}
	a.Logger.Info("fightbookd stopped")
}
