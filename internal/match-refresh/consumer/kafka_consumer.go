package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/F-M-GROUP/betika-odds-platform/internal/match-refresh/cache"
	"github.com/F-M-GROUP/betika-odds-platform/internal/match-refresh/repository"
	"github.com/F-M-GROUP/betika-odds-platform/pkg/contracts/events"
	"github.com/F-M-GROUP/betika-odds-platform/pkg/matchview"
)

// Refresher consome QuoteUpdate do Kafka e recalcula a visão de partida:
// recarrega o snapshot do evento no banco, roda a agregação pura, grava o
// resultado no cache e repassa a partida derivada para broadcast.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa.
type Refresher struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Repo   *repository.PostgresRepo
	Cache  *cache.RedisCache

	Now func() time.Time // injetável em teste; default time.Now

	OnConsumed  func()       // métricas (counter++)
	OnRefreshed func()       // métricas
	OnError     func(string) // métricas por fase

	// Após recalcular, envia a partida para o WebSocket via Redis Pub/Sub
	OnAfterRefresh func(m matchview.Match)
}

func (r *Refresher) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

// Run inicia o loop principal de consumo e recálculo
func (r *Refresher) Run(ctx context.Context) error {
	for {
		m, err := r.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			r.Log.Warn("kafka read failed", zap.Error(err))
			r.reportError("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if r.OnConsumed != nil {
			r.OnConsumed()
		}

		var upd events.QuoteUpdate
		if err := json.Unmarshal(m.Value, &upd); err != nil {
			r.Log.Warn("invalid message", zap.Error(err))
			r.reportError("decode")
			continue
		}

		r.refresh(ctx, upd.EventID)
	}
}

func (r *Refresher) refresh(ctx context.Context, eventID string) {
	ev, ok, err := r.Repo.GetEventSnapshot(ctx, eventID)
	if err != nil {
		r.Log.Warn("event snapshot load failed", zap.String("event_id", eventID), zap.Error(err))
		r.reportError("load")
		return
	}
	if !ok {
		// mensagem de evento que não existe mais; nada a recalcular
		r.Log.Debug("event not found, skipping", zap.String("event_id", eventID))
		return
	}

	matches, err := matchview.Aggregate([]matchview.RawEvent{ev}, r.now())
	if err != nil {
		// pré-condição violada upstream; a linha fica de fora até ser corrigida
		r.Log.Error("match aggregation defect", zap.String("event_id", eventID), zap.Error(err))
		r.reportError("aggregate")
		return
	}
	match := matches[0]

	if err := r.Cache.SetMatch(ctx, match); err != nil {
		r.Log.Warn("redis set failed", zap.String("event_id", eventID), zap.Error(err))
		r.reportError("cache")
		// não bloqueia o broadcast se falhar o cache
	}

	if r.OnRefreshed != nil {
		r.OnRefreshed()
	}
	if r.OnAfterRefresh != nil {
		r.OnAfterRefresh(match)
	}
}

func (r *Refresher) reportError(stage string) {
	if r.OnError != nil {
		r.OnError(stage)
	}
}
