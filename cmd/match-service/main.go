package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	mcache "github.com/F-M-GROUP/betika-odds-platform/internal/match-service/cache"
	httpapi "github.com/F-M-GROUP/betika-odds-platform/internal/match-service/http"
	"github.com/F-M-GROUP/betika-odds-platform/internal/match-service/repo"
	"github.com/F-M-GROUP/betika-odds-platform/internal/match-service/ws"
	sharedcache "github.com/F-M-GROUP/betika-odds-platform/internal/shared/cache"
	"github.com/F-M-GROUP/betika-odds-platform/internal/shared/config"
	"github.com/F-M-GROUP/betika-odds-platform/internal/shared/db"
	"github.com/F-M-GROUP/betika-odds-platform/internal/shared/logger"
	"github.com/F-M-GROUP/betika-odds-platform/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// conecta com db Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	// conecta com cache Redis
	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// API REST da visão de partidas
	api := &httpapi.API{
		Log:      log,
		ReadRepo: &repo.ReadRepo{DB: pg},
		Cache:    mcache.New(redisClient),
	}

	// Hub WebSocket alimentado pelo Redis Pub/Sub do match-refresh-worker
	hub := ws.NewHub(func(r *http.Request) bool { return true }) // origem liberada, mesmo CORS da API
	ws.StartRedisSubscriber(ctx, redisClient, cfg.RedisPubSubChannel, hub, log)

	root := chi.NewRouter()
	root.Mount("/", api.Router())
	root.Get("/ws", hub.HandleWS)

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: root}
	go func() {
		log.Info("match api listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	// Servidor de métricas e health: valida dependências críticas
	msrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})
	log.Info("metrics/health listening", zap.String("addr", msrv.Addr))

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = msrv.Shutdown(shutdownCtx)
	log.Info("match-service stopped")
}
