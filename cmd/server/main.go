// Command server runs the asset tracking backend: the HTTP/websocket API,
// the embedded MQTT broker for handheld scanners, and the single dispatch
// worker everything funnels into.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fieldtrack/assettrack/internal/api"
	"github.com/fieldtrack/assettrack/internal/api/handler"
	"github.com/fieldtrack/assettrack/internal/auth"
	"github.com/fieldtrack/assettrack/internal/core/ports"
	"github.com/fieldtrack/assettrack/internal/core/service"
	"github.com/fieldtrack/assettrack/internal/infrastructure/broker"
	"github.com/fieldtrack/assettrack/internal/infrastructure/config"
	"github.com/fieldtrack/assettrack/internal/infrastructure/db/postgres"
	appredis "github.com/fieldtrack/assettrack/internal/infrastructure/db/redis"
	"github.com/fieldtrack/assettrack/internal/transport/dispatch"
	"github.com/fieldtrack/assettrack/internal/transport/handlers"
	"github.com/fieldtrack/assettrack/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		lg := logger.Init(logger.Options{})
		lg.Fatal().Err(err).Msg("configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
	})

	// --- Storage ---
	db, err := postgres.Connect(ctx, postgres.Config{
		DSN:          cfg.Postgres.DSN,
		MaxOpenConns: cfg.Postgres.MaxOpenConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("postgres unavailable")
	}
	defer db.Close()

	var rdb *redislib.Client
	var debouncer ports.ScanDebouncer
	if cfg.Redis.Addr != "" {
		rdb, err = appredis.Connect(ctx, appredis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("redis unavailable")
		}
		defer rdb.Close()
		debouncer = appredis.NewScanDebouncer(rdb, service.DebounceWindow)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis scan debouncer active")
	} else {
		debouncer = service.NewMemoryDebouncer()
		log.Info().Msg("in-process scan debouncer active")
	}

	// --- Domain services ---
	orderRepo := postgres.NewOrderRepository(db)
	itemRepo := postgres.NewItemRepository(db)
	relRepo := postgres.NewOrderItemRepository(db)
	readRepo := postgres.NewItemReadRepository(db)
	personRepo := postgres.NewPersonRepository(db)
	userRepo := postgres.NewUserRepository(db)

	orders := service.NewOrderService(orderRepo, log)
	items := service.NewItemService(itemRepo, log)
	orderItems := service.NewOrderItemService(orderRepo, itemRepo, relRepo, log)
	itemReads := service.NewItemReadService(itemRepo, readRepo, debouncer, log)
	people := service.NewPersonService(personRepo, log)
	users := service.NewUserService(userRepo, log)

	// --- Dispatch pipeline ---
	dispatcher := dispatch.New(log)
	handlers.RegisterAll(dispatcher, orders, items, orderItems, itemReads, people, users, log)
	go dispatcher.Run(ctx)

	// --- Device broker ---
	mqttBroker, err := broker.New(broker.Config{
		Addr:      cfg.Broker.Addr,
		ScanTopic: cfg.Broker.ScanTopic,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("broker setup")
	}
	if err := broker.NewBridge(dispatcher, log).Attach(mqttBroker); err != nil {
		log.Fatal().Err(err).Msg("broker bridge")
	}
	go func() {
		if err := mqttBroker.Serve(); err != nil {
			log.Error().Err(err).Msg("broker stopped")
		}
	}()

	// --- Auth ---
	verifier := auth.NewSymmetric(cfg.JWT.Issuer, cfg.JWT.Audience, []byte(cfg.JWT.Secret))
	if cfg.IDP.Issuer != "" {
		if err := verifier.AddRemote(cfg.IDP.Issuer, cfg.IDP.Audience, cfg.IDP.JWKSURL); err != nil {
			log.Fatal().Err(err).Str("issuer", cfg.IDP.Issuer).Msg("remote issuer setup")
		}
		log.Info().Str("issuer", cfg.IDP.Issuer).Msg("remote issuer trusted")
	}

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Users:      handler.NewAuthHandler(users, verifier, cfg.JWT.TTL),
		Health:     handler.NewHealthHandler(),
		Readiness:  handler.NewReadinessHandler(db, rdb),
		Verifier:   verifier,
		Dispatcher: dispatcher,
		Log:        log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := mqttBroker.Close(); err != nil {
		log.Error().Err(err).Msg("broker shutdown")
	}
}
