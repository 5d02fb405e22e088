package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	votingengine "elect/contexts/election-operations/voting-engine"
	postgresadapter "elect/contexts/election-operations/voting-engine/adapters/postgres"
	"elect/contexts/election-operations/voting-engine/application/workers"
	"elect/internal/platform/config"
	"elect/internal/platform/db"
	"elect/internal/platform/httpserver"
	"elect/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres          *db.Postgres
	scheduler         workers.StatusScheduler
	relay             workers.EventRelay
	schedulerInterval time.Duration
	relayInterval     time.Duration
	schedulerEnabled  bool
	relayEnabled      bool
	logger            *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	module := votingengine.NewModule(votingengine.Dependencies{
		Elections:      repo,
		Voters:         repo,
		Participations: repo,
		Ballots:        repo,
		Outbox:         repo,
		Clock:          postgresadapter.SystemClock{},
		IDGen:          postgresadapter.UUIDGenerator{},
		Logger:         logger,
	})

	server := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		scheduler: workers.StatusScheduler{
			Elections: repo,
			Outbox:    repo,
			Clock:     postgresadapter.SystemClock{},
			IDGen:     postgresadapter.UUIDGenerator{},
			Logger:    logger,
		},
		relay: workers.EventRelay{
			Outbox:    repo,
			Publisher: kafka,
			Clock:     postgresadapter.SystemClock{},
			BatchSize: cfg.RelayBatchSize,
			Logger:    logger,
		},
		schedulerInterval: cfg.SchedulerInterval,
		relayInterval:     cfg.RelayInterval,
		schedulerEnabled:  cfg.EnableStatusScheduler,
		relayEnabled:      cfg.EnableEventRelay,
		logger:            logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

// Run drives both worker loops from one ticker. The relay runs every pass;
// the status scheduler runs when its longer interval has elapsed, with one
// immediate pass at startup so missed transitions are repaired right away.
func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.relayInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"relay_interval", w.relayInterval.String(),
		"scheduler_interval", w.schedulerInterval.String(),
	)

	nextSchedulerPass := time.Now()
	for {
		if w.schedulerEnabled && !time.Now().Before(nextSchedulerPass) {
			if _, err := w.scheduler.Tick(ctx); err != nil {
				w.logger.Error("status scheduler pass failed",
					"event", "bootstrap_scheduler_pass_failed",
					"module", "internal/app/bootstrap",
					"layer", "platform",
					"error", err.Error(),
				)
			}
			nextSchedulerPass = time.Now().Add(w.schedulerInterval)
		}
		if w.relayEnabled {
			if err := w.relay.RunOnce(ctx); err != nil {
				w.logger.Error("event relay pass failed",
					"event", "bootstrap_relay_pass_failed",
					"module", "internal/app/bootstrap",
					"layer", "platform",
					"error", err.Error(),
				)
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
