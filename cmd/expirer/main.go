package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/crewmap/internal/adapters/nats"
	"github.com/samirrijal/crewmap/internal/adapters/postgres"
	"github.com/samirrijal/crewmap/internal/adapters/valkey"
	"github.com/samirrijal/crewmap/internal/core/ports"
	"github.com/samirrijal/crewmap/internal/core/usecases"
	"github.com/samirrijal/crewmap/internal/pkg/config"
	"github.com/samirrijal/crewmap/internal/pkg/logging"
	"github.com/samirrijal/crewmap/internal/workflows"
)

func main() {
	cfg, err := config.Load("crewmap-expirer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Expiring a listing must drop its cached copies and tell the API
	// instances, so both are wired when reachable.
	var cacheSvc ports.CacheService
	if cache, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable, cached listings expire by TTL only", "error", err)
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	var publisher ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, open maps will not see expiries", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	// No scheduler here: expiring never reschedules.
	jobs := usecases.NewJobService(postgres.NewJobRepo(db), cacheSvc, publisher, nil)
	events := usecases.NewEventService(postgres.NewEventRepo(db), cacheSvc, publisher, nil)

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.ListingExpiryWorkflow)
	w.RegisterActivity(&workflows.ExpiryActivities{Jobs: jobs, Events: events})

	slog.Info("expirer worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
