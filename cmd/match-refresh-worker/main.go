package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/F-M-GROUP/betika-odds-platform/internal/match-refresh/cache"
	"github.com/F-M-GROUP/betika-odds-platform/internal/match-refresh/consumer"
	"github.com/F-M-GROUP/betika-odds-platform/internal/match-refresh/pubsub"
	"github.com/F-M-GROUP/betika-odds-platform/internal/match-refresh/repository"
	sharedcache "github.com/F-M-GROUP/betika-odds-platform/internal/shared/cache"
	"github.com/F-M-GROUP/betika-odds-platform/internal/shared/config"
	"github.com/F-M-GROUP/betika-odds-platform/internal/shared/db"
	sharedkafka "github.com/F-M-GROUP/betika-odds-platform/internal/shared/kafka"
	"github.com/F-M-GROUP/betika-odds-platform/internal/shared/logger"
	"github.com/F-M-GROUP/betika-odds-platform/internal/shared/metrics"
	"github.com/F-M-GROUP/betika-odds-platform/pkg/matchview"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Cache Redis da visão de partidas e repositório de snapshots
	ttl := 60 * time.Second
	mcache := cache.NewRedisCache(redisClient, ttl)
	repo := repository.NewPostgresRepo(pg)

	// Consumer Kafka (consumer group match-refresh)
	brokers := strings.Split(cfg.KafkaBrokers, ",")
	reader := sharedkafka.NewReader(brokers, cfg.TopicQuoteUpdates, "match-refresh")
	defer reader.Close()

	// Métricas Prometheus para monitoramento do recálculo
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "match_refresh_messages_consumed_total", Help: "mensagens consumidas"})
	refreshed := prometheus.NewCounter(prometheus.CounterOpts{Name: "match_refresh_matches_total", Help: "visões recalculadas"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "match_refresh_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, refreshed, errorsBy)

	// Broadcaster para publicar visões recalculadas no Redis Pub/Sub
	// (usado pelo match-service/ws)
	broadcaster := pubsub.NewRedisBroadcaster(redisClient)

	ref := &consumer.Refresher{
		Log:         log,
		Reader:      reader,
		Repo:        repo,
		Cache:       mcache,
		OnConsumed:  func() { consumed.Inc() },
		OnRefreshed: func() { refreshed.Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },

		// Após recalcular, envia a partida para o WebSocket via Redis Pub/Sub
		OnAfterRefresh: func(m matchview.Match) {
			msg := pubsub.WSUpdate{MatchID: m.ID, Payload: m}
			b, _ := json.Marshal(msg)

			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			if err := broadcaster.Publish(ctx, cfg.RedisPubSubChannel, b); err != nil {
				log.Warn("ws broadcast publish failed", zap.Error(err))
			}
		},
	}

	// Servidor HTTP para métricas e health check
	msrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})
	log.Info("metrics/health listening", zap.String("addr", msrv.Addr))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("match-refresh-worker started")
	if err := ref.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("refresher stopped with error", zap.Error(err))
	}
	log.Info("match-refresh-worker stopped")
}
