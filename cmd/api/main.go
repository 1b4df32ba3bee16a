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
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/lootaura/lootaura/internal/adapters/geo"
	"github.com/lootaura/lootaura/internal/adapters/http"
	natsadapter "github.com/lootaura/lootaura/internal/adapters/nats"
	"github.com/lootaura/lootaura/internal/adapters/postgres"
	"github.com/lootaura/lootaura/internal/adapters/valkey"
	"github.com/lootaura/lootaura/internal/core/ports"
	"github.com/lootaura/lootaura/internal/core/usecases"
	"github.com/lootaura/lootaura/internal/pkg/config"
	"github.com/lootaura/lootaura/internal/pkg/logging"
	"github.com/lootaura/lootaura/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("lootaura-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("lootaura-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Session storage
	store, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.SessionTTL)
	if err != nil {
		slog.Warn("valkey unavailable, sessions are memory-only", "error", err)
	} else {
		defer store.Close()
	}

	// NATS
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer publisher.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Collaborators
	lookupTimeout := time.Duration(cfg.Geocoder.TimeoutSeconds) * time.Second
	geocoder := geo.NewZipGeocoder(cfg.Geocoder.ZipBaseURL, lookupTimeout)
	ipLocator := geo.NewIPLocator(cfg.Geocoder.IPBaseURL, lookupTimeout)

	// Nil interfaces must stay nil when the adapter is unavailable.
	var storage ports.SessionStorage
	if store != nil {
		storage = store
	}
	var events ports.EventPublisher
	if publisher != nil {
		events = publisher
	}

	// Core
	policy := usecases.DefaultIntentPolicy()
	saleRepo := postgres.NewSaleRepo(db)
	sessions := usecases.NewRegistry(storage, events, policy,
		time.Duration(cfg.Search.SessionIdleMin)*time.Minute, slog.Default())
	searchSvc := usecases.NewSearchService(saleRepo, storage, events, policy,
		cfg.Search.MaxBboxSpanDeg, cfg.Search.ResultLimit, slog.Default())
	resolver := usecases.NewLocationResolver(geocoder, ipLocator, storage, usecases.ResolverConfig{
		DefaultZoom:   cfg.Search.DefaultZoom,
		FallbackZoom:  cfg.Search.FallbackZoom,
		LookupTimeout: lookupTimeout,
	}, slog.Default())
	sessions.OnEvict = resolver.Forget

	// Evict idle sessions in the background.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sessions.Sweep()
			case <-ctx.Done():
				return
			}
		}
	}()

	deps := &http.Dependencies{
		Search:   searchSvc,
		Sessions: sessions,
		Resolver: resolver,
		Geocoder: geocoder,
		NATS:     natsConn,
		DB:       db,
		Store:    store,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "LootAura Search API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.lootaura.com",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, X-Session-ID",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
