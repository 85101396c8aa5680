package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fightbook/internal/arena"
	"github.com/cory-johannsen/fightbook/internal/config"
	"github.com/cory-johannsen/fightbook/internal/frontend/handlers"
	"github.com/cory-johannsen/fightbook/internal/frontend/telnet"
	"github.com/cory-johannsen/fightbook/internal/game/combat"
	"github.com/cory-johannsen/fightbook/internal/game/command"
	"github.com/cory-johannsen/fightbook/internal/game/dice"
	"github.com/cory-johannsen/fightbook/internal/httpapi"
	"github.com/cory-johannsen/fightbook/internal/observability"
	"github.com/cory-johannsen/fightbook/internal/ratelimit"
	"github.com/cory-johannsen/fightbook/internal/server"
	"github.com/cory-johannsen/fightbook/internal/storage/memory"
	"github.com/cory-johannsen/fightbook/internal/storage/postgres"
)

const (
	healthTimeout = 2 * time.Second
	shutdownGrace = 10 * time.Second
	sweepInterval = time.Minute
)

var providerSet = wire.NewSet(
	provideLogger,
	observability.NewMetrics,
	provideStorage,
	provideSource,
	provideEngine,
	provideRegisterGate,
	provideSettings,
	provideService,
	provideHTTPServer,
	provideAcceptor,
	provideLifecycle,
	wire.Struct(new(app), "*"),
)

// app holds the assembled daemon.
type app struct {
	Logger    *zap.Logger
	Lifecycle *server.Lifecycle
	Storage   *storage
}

// storage is the selected persistence backend.
type storage struct {
	Fighters arena.FighterStore
	Fights   arena.FightStore
	// Health is nil for the in-memory backend.
	Health httpapi.HealthChecker
	Kind   string
}

func provideLogger(cfg config.Config) (*zap.Logger, func(), error) {
	logger, err := observability.NewLogger(cfg.Logging, "fightbookd")
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func provideStorage(ctx context.Context, cfg config.Config, logger *zap.Logger) (*storage, func(), error) {
	switch cfg.Arena.Store {
	case config.StoreMemory:
		logger.Warn("using in-memory store; the roster is lost on exit")
		return &storage{
			Fighters: memory.NewFighterStore(),
			Fights:   memory.NewFightStore(),
			Kind:     config.StoreMemory,
		}, func() {}, nil
	case config.StorePostgres:
		start := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(start)),
		)
		return &storage{
			Fighters: postgres.NewFighterRepository(pool.DB()),
			Fights:   postgres.NewFightRepository(pool.DB()),
			Health: func(ctx context.Context) error {
				return pool.Health(ctx, healthTimeout)
			},
			Kind: config.StorePostgres,
		}, pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown arena.store %q", cfg.Arena.Store)
}

func provideSource(cfg config.Config) dice.Source {
	if cfg.Engine.Seed != 0 {
		return dice.NewSeededSource(cfg.Engine.Seed)
	}
	return dice.NewCryptoSource()
}

func provideEngine(src dice.Source, logger *zap.Logger) *combat.Engine {
	return combat.NewEngine(src, logger)
}

func provideRegisterGate(cfg config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Arena.RegisterLimit, cfg.Arena.RegisterWindow)
}

func provideSettings(cfg config.Config) arena.Settings {
	a := cfg.Arena
	return arena.Settings{
		FightLimit:     a.FightLimit,
		FightWindow:    a.FightWindow,
		HistoryDefault: a.HistoryDefault,
		HistoryMax:     a.HistoryMax,
		LeaderboardMax: a.LeaderboardMax,
		AdminTokenHash: a.AdminTokenHash,
	}
}

func provideService(
	st *storage,
	engine *combat.Engine,
	gate *ratelimit.Limiter,
	settings arena.Settings,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *arena.Service {
	return arena.NewService(st.Fighters, st.Fights, engine, gate, settings, logger,
		arena.WithRecorder(metrics),
	)
}

func provideHTTPServer(
	cfg config.Config,
	svc *arena.Service,
	st *storage,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *http.Server {
	opts := []httpapi.Option{
		httpapi.WithMetrics(metrics),
		httpapi.WithAllowedOrigin(cfg.HTTP.AllowedOrigin),
	}
	if st.Health != nil {
		opts = append(opts, httpapi.WithHealthCheck(st.Health))
	}
	api := httpapi.NewServer(svc, logger, opts...)
	return &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      api.Handler(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
}

// provideAcceptor returns nil when the terminal arena is disabled.
func provideAcceptor(
	cfg config.Config,
	svc *arena.Service,
	src dice.Source,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *telnet.Acceptor {
	if !cfg.Telnet.Enabled {
		return nil
	}
	h := handlers.NewArenaHandler(svc, command.DefaultRegistry(), src, cfg.Telnet.LineDelay, logger)
	return telnet.NewAcceptor(cfg.Telnet, h, logger, telnet.WithSessionObserver(metrics))
}

func provideLifecycle(
	httpServer *http.Server,
	acceptor *telnet.Acceptor,
	gate *ratelimit.Limiter,
	logger *zap.Logger,
) *server.Lifecycle {
	lc := server.NewLifecycle(logger)
	lc.Add("http", server.HTTPService(httpServer, shutdownGrace))
	if acceptor != nil {
		lc.Add("telnet", &server.FuncService{
			StartFn: acceptor.ListenAndServe,
			StopFn:  acceptor.Stop,
		})
	}
	lc.Add("limiter-sweep", server.TickerService(sweepInterval, func(time.Time) {
		if n := gate.Sweep(); n > 0 {
			logger.Debug("swept expired rate windows", zap.Int("count", n))
		}
	}))
	return lc
}
