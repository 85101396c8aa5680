// Package main provides a CLI tool that empties the arena roster.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cory-johannsen/fightbook/internal/config"
	"github.com/cory-johannsen/fightbook/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	confirm := flag.Bool("yes", false, "confirm deletion of every registered fighter")
	flag.Parse()

	if !*confirm {
		fmt.Fprintln(os.Stderr, "refusing to clear the roster without -yes")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if cfg.Arena.Store != config.StorePostgres {
		log.Fatalf("arena.store is %q; only the postgres roster persists", cfg.Arena.Store)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()

	n, err := postgres.NewFighterRepository(pool.DB()).Clear(ctx)
	if err != nil {
		log.Fatalf("clearing roster: %v", err)
	}

	fmt.Fprintf(os.Stdout, "removed %d fighters [%s]\n", n, time.Since(start))
}
