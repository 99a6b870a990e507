package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/org-calendar/internal/application/event"
	"github.com/baechuer/org-calendar/internal/application/request"
	"github.com/baechuer/org-calendar/internal/config"
	rediscache "github.com/baechuer/org-calendar/internal/infrastructure/caching/redis"
	"github.com/baechuer/org-calendar/internal/infrastructure/db/postgres"
	rabbitpub "github.com/baechuer/org-calendar/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/org-calendar/internal/logger"
	"github.com/baechuer/org-calendar/internal/transport/http/handlers"
	authmw "github.com/baechuer/org-calendar/internal/transport/http/middleware"
	"github.com/baechuer/org-calendar/internal/transport/http/router"
)

// sysClock is the production clock.
type sysClock struct{}

func (sysClock) Now() time.Time { return time.Now().UTC() }

type App struct {
	Config *config.Config
	Server *http.Server
	Pool   *pgxpool.Pool

	Publisher *rabbitpub.Publisher
	Cache     *rediscache.Client
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal().Err(err).Msg("db pool init failed")
	}
	defer pool.Close()

	{
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			zlog.Fatal().Err(err).Msg("db ping failed")
		}
	}

	app := NewApp(ctx, cfg, pool)
	defer func() {
		if app.Publisher != nil {
			_ = app.Publisher.Close()
		}
		if app.Cache != nil {
			_ = app.Cache.Close()
		}
	}()

	zlog.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
	if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zlog.Fatal().Err(err).Msg("server crashed")
	}
}

func NewApp(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) *App {
	// 1) Infrastructure
	eventRepo := postgres.NewEventRepo(pool)
	requestRepo := postgres.NewRequestRepo(pool)
	deptRepo := postgres.NewDepartmentRepo(pool)

	if err := deptRepo.Seed(ctx, defaultDepartments); err != nil {
		zlog.Warn().Err(err).Msg("department seeding failed")
	}

	var rabbit *rabbitpub.Publisher
	var pub request.Publisher
	if cfg.RabbitURL != "" {
		p, err := rabbitpub.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			zlog.Fatal().Err(err).Msg("rabbit publisher init failed")
		}
		rabbit = p
		pub = p
		zlog.Info().Str("exchange", cfg.RabbitExchange).Msg("rabbit publisher ready")
	} else {
		zlog.Warn().Msg("RABBIT_URL empty: notifications will not be published")
	}

	var rcache *rediscache.Client
	var cache request.Cache
	if cfg.RedisURL != "" {
		c, err := rediscache.New(cfg.RedisURL)
		if err != nil {
			zlog.Warn().Err(err).Msg("redis unavailable, pending count served from db")
		} else {
			rcache = c
			cache = c
		}
	}

	// 2) Application
	eventSvc := event.New(eventRepo, deptRepo, sysClock{})
	requestSvc := request.New(requestRepo, eventSvc, sysClock{}, pub, cache, cfg.CacheTTLPending)

	// 3) Transport
	requestsH := handlers.NewRequestsHandler(requestSvc)
	eventsH := handlers.NewEventsHandler(eventSvc)
	healthH := handlers.NewHealthHandler(pool)
	auth := authmw.NewAuth(cfg.JWTSecret, cfg.JWTIssuer)

	httpHandler := router.New(requestsH, eventsH, healthH, auth, cfg)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpHandler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return &App{
		Config:    cfg,
		Server:    srv,
		Pool:      pool,
		Publisher: rabbit,
		Cache:     rcache,
	}
}
