package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/crewmap/internal/adapters/http"
	natsadapter "github.com/samirrijal/crewmap/internal/adapters/nats"
	"github.com/samirrijal/crewmap/internal/adapters/postgres"
	"github.com/samirrijal/crewmap/internal/adapters/valkey"
	"github.com/samirrijal/crewmap/internal/core/domain"
	"github.com/samirrijal/crewmap/internal/core/mapsync"
	"github.com/samirrijal/crewmap/internal/core/ports"
	"github.com/samirrijal/crewmap/internal/core/usecases"
	"github.com/samirrijal/crewmap/internal/pkg/config"
	"github.com/samirrijal/crewmap/internal/pkg/logging"
	"github.com/samirrijal/crewmap/internal/pkg/metrics"
	"github.com/samirrijal/crewmap/internal/pkg/telemetry"
	"github.com/samirrijal/crewmap/internal/workflows"
)

func main() {
	cfg, err := config.Load("crewmap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go reportPoolStats(ctx, db)

	// Cache; services run uncached without it.
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// NATS
	var publisher ports.EventPublisher
	var broker http.Broker
	var local *localChanges
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats publisher unavailable, record changes stay on this instance", "error", err)
		local = &localChanges{}
		publisher = local
	} else {
		defer pub.Close()
		publisher, broker = pub, pub
	}

	// Temporal expiry scheduling
	var scheduler ports.ExpiryScheduler
	if cfg.Temporal.Enabled {
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
			Logger:    slog.Default(),
		})
		if err != nil {
			slog.Warn("temporal unavailable, listings will not expire", "error", err)
		} else {
			defer tc.Close()
			scheduler = workflows.NewScheduler(tc, cfg.Temporal.TaskQueue)
		}
	}

	// Repos
	jobRepo := postgres.NewJobRepo(db)
	eventRepo := postgres.NewEventRepo(db)
	postRepo := postgres.NewPostRepo(db)
	locationRepo := postgres.NewLocationRepo(db)

	// Use cases
	locations, err := usecases.NewLocationResolver(locationRepo, cacheSvc, publisher)
	if err != nil {
		log.Fatalf("location resolver: %v", err)
	}
	jobSvc := usecases.NewJobService(jobRepo, cacheSvc, publisher, scheduler)
	eventSvc := usecases.NewEventService(eventRepo, cacheSvc, publisher, scheduler)
	listing := usecases.NewListingService(jobSvc, eventSvc, locations)
	sessions := usecases.NewMapSessionService(listing, mapsync.Options{
		FlyToZoom:     cfg.Map.FlyToZoom,
		FlyToDuration: cfg.Map.FlyToDuration(),
	})
	if local != nil {
		local.sessions = sessions
	}
	if !cfg.Map.Available() {
		slog.Warn("interactive map disabled; /ws/map will answer 503", "enabled", cfg.Map.Enabled)
	}

	// Record changes from any instance refresh the map sessions open here.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats subscriber unavailable, open maps will not refresh", "error", err)
	} else {
		defer sub.Close()
		if err := sub.SubscribeRecordChanges(ctx, sessions.HandleRecordChange); err != nil {
			slog.Warn("subscribe record changes failed", "error", err)
		}
	}

	deps := &http.Dependencies{
		Jobs:      jobSvc,
		Events:    eventSvc,
		Posts:     usecases.NewPostService(postRepo),
		Locations: locations,
		Listing:   listing,
		Sessions:  sessions,
		Broker:    broker,
		DB:        db,
		Cache:     cache,
		Auth:      cfg.Auth,
		Map:       cfg.Map,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Crewmap API",
	})
	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Map sockets stay open until their sessions end.
	sessions.CloseAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		}
	}
}

// localChanges hands record changes straight to this instance's map sessions
// when there is no broker.
type localChanges struct {
	sessions *usecases.MapSessionService
}

func (l *localChanges) PublishRecordChange(ctx context.Context, change domain.RecordChange) error {
	if l.sessions == nil {
		return nil
	}
	return l.sessions.HandleRecordChange(ctx, change)
}
