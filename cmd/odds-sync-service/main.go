package main

import (
	"context"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/F-M-GROUP/betika-odds-platform/internal/odds-sync/client"
	httpapi "github.com/F-M-GROUP/betika-odds-platform/internal/odds-sync/http"
	"github.com/F-M-GROUP/betika-odds-platform/internal/odds-sync/publisher"
	"github.com/F-M-GROUP/betika-odds-platform/internal/odds-sync/repo"
	"github.com/F-M-GROUP/betika-odds-platform/internal/odds-sync/service"
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

	if cfg.OddsAPIKey == "" {
		log.Fatal("ODDS_API_KEY not configured")
	}

	// Inicializa dependências: Postgres e Kafka
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	pub := publisher.NewKafkaPublisher(
		strings.Split(cfg.KafkaBrokers, ","),
		cfg.TopicQuoteUpdates,
		log,
	)
	defer pub.Close()

	// Cliente da Odds API, limitado a 1 req/s: a cota é paga
	apiClient := client.New(cfg.OddsAPIBaseURL, cfg.OddsAPIKey, rate.Limit(1), log)

	// Métricas Prometheus para monitoramento dos ciclos de sync
	synced := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "odds_sync_rows_total", Help: "linhas processadas por tipo de ciclo"}, []string{"kind"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "odds_sync_runs_total", Help: "ciclos de sync por tipo"}, []string{"kind"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "odds_sync_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(synced, runs, errorsBy)

	store := repo.NewPostgres(pg)
	syncer := &service.Syncer{
		Log:       log,
		Fetcher:   apiClient,
		Store:     store,
		Publisher: pub,
		Source:    cfg.ServiceName,
		OnSynced: func(kind string, rows int) {
			runs.WithLabelValues(kind).Inc()
			synced.WithLabelValues(kind).Add(float64(rows))
		},
		OnError: func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Último sucesso vem do banco e entra explícito no gatilho periódico;
	// nada de flag de sessão implícita
	lastSync, ok, err := store.LastSuccessfulSync(ctx, service.KindOdds)
	if err != nil {
		log.Warn("last sync lookup failed", zap.Error(err))
	}
	if !ok {
		log.Info("no previous successful sync, starting fresh")
	}
	go syncer.RunPeriodic(ctx, cfg.DefaultSportKey, cfg.SyncInterval, lastSync)

	// Gatilhos sob demanda via REST
	api := &httpapi.API{Log: log, Syncer: syncer, DefaultSportKey: cfg.DefaultSportKey}
	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: api.Router()}
	go func() {
		log.Info("sync trigger api listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	// Servidor de métricas e health check
	msrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})
	log.Info("metrics/health listening", zap.String("addr", msrv.Addr))

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = msrv.Shutdown(shutdownCtx)
	log.Info("odds-sync-service stopped")
}
