package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/F-M-GROUP/betika-odds-platform/internal/odds-sync/client"
	"github.com/F-M-GROUP/betika-odds-platform/internal/odds-sync/repo"
	"github.com/F-M-GROUP/betika-odds-platform/pkg/contracts/events"
)

// Tipos de ciclo registrados em sync_runs.
const (
	KindCatalog = "catalog"
	KindOdds    = "odds"
)

// Fetcher é a fatia da Odds API que o sync consome.
type Fetcher interface {
	ListSports(ctx context.Context) ([]client.Sport, error)
	ListOdds(ctx context.Context, sportKey string) ([]client.Event, error)
}

// Store é a fatia de persistência que o sync usa (upserts idempotentes).
type Store interface {
	UpsertSport(ctx context.Context, s repo.Sport) error
	UpsertBookmaker(ctx context.Context, key, title string) error
	UpsertEvent(ctx context.Context, e repo.Event) error
	UpsertQuote(ctx context.Context, q repo.QuoteRow) error
	RecordSyncRun(ctx context.Context, r repo.SyncRun) error
}

// Publisher publica um QuoteUpdate por evento atualizado.
type Publisher interface {
	Publish(ctx context.Context, e events.QuoteUpdate) error
}

// Syncer orquestra os dois gatilhos de ingestão: catálogo de esportes e
// odds por esporte. Ambos são fire-and-forget e idempotentes; uma falha
// vale como "nenhuma linha atualizada neste ciclo", nunca invalida o que
// já está no banco.
type Syncer struct {
	Log       *zap.Logger
	Fetcher   Fetcher
	Store     Store
	Publisher Publisher
	Source    string // nome do serviço, vai no evento publicado

	Now func() time.Time // injetável em teste; default time.Now

	OnSynced func(kind string, rows int) // métricas
	OnError  func(stage string)          // métricas por fase
}

func (s *Syncer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// SyncCatalog atualiza o catálogo de esportes/competições.
// Retorna quantas linhas foram processadas antes de um eventual erro.
func (s *Syncer) SyncCatalog(ctx context.Context) (int, error) {
	started := s.now()
	runID := uuid.NewString()

	sports, err := s.Fetcher.ListSports(ctx)
	if err != nil {
		s.reportError("fetch_catalog")
		s.recordRun(ctx, repo.SyncRun{
			ID: runID, Kind: KindCatalog, RowsProcessed: 0,
			Error: err.Error(), StartedAt: started, FinishedAt: s.now(),
		})
		return 0, err
	}

	rows := 0
	for _, sp := range sports {
		err := s.Store.UpsertSport(ctx, repo.Sport{
			Key:          sp.Key,
			GroupName:    sp.Group,
			Title:        sp.Title,
			Description:  sp.Description,
			Active:       sp.Active,
			HasOutrights: sp.HasOutrights,
		})
		if err != nil {
			// uma linha ruim não derruba o ciclo
			s.Log.Warn("sport upsert failed", zap.String("sport", sp.Key), zap.Error(err))
			s.reportError("upsert_sport")
			continue
		}
		rows++
	}

	s.recordRun(ctx, repo.SyncRun{
		ID: runID, Kind: KindCatalog, RowsProcessed: rows,
		StartedAt: started, FinishedAt: s.now(),
	})
	if s.OnSynced != nil {
		s.OnSynced(KindCatalog, rows)
	}
	s.Log.Info("catalog synced", zap.Int("sports", rows))
	return rows, nil
}

// SyncOdds atualiza eventos e cotações de um esporte e publica um
// QuoteUpdate por evento gravado. sportKey "upcoming" cobre todos.
// Retorna quantas linhas de cotação foram gravadas antes de um eventual erro.
func (s *Syncer) SyncOdds(ctx context.Context, sportKey string) (int, error) {
	started := s.now()
	runID := uuid.NewString()

	evs, err := s.Fetcher.ListOdds(ctx, sportKey)
	if err != nil {
		s.reportError("fetch_odds")
		s.recordRun(ctx, repo.SyncRun{
			ID: runID, Kind: KindOdds, SportKey: sportKey, RowsProcessed: 0,
			Error: err.Error(), StartedAt: started, FinishedAt: s.now(),
		})
		return 0, err
	}

	rows := 0
	for _, ev := range evs {
		err := s.Store.UpsertEvent(ctx, repo.Event{
			ID:           ev.ID,
			SportKey:     ev.SportKey,
			SportTitle:   ev.SportTitle,
			CommenceTime: ev.CommenceTime,
			HomeTeam:     ev.HomeTeam,
			AwayTeam:     ev.AwayTeam,
			Completed:    false,
		})
		if err != nil {
			s.Log.Warn("event upsert failed", zap.String("event_id", ev.ID), zap.Error(err))
			s.reportError("upsert_event")
			continue // sem evento não faz sentido gravar cotações
		}

		quoteRows := 0
		for _, bk := range ev.Bookmakers {
			if err := s.Store.UpsertBookmaker(ctx, bk.Key, bk.Title); err != nil {
				s.Log.Warn("bookmaker upsert failed", zap.String("bookmaker", bk.Key), zap.Error(err))
				s.reportError("upsert_bookmaker")
				continue
			}
			for _, mk := range bk.Markets {
				err := s.Store.UpsertQuote(ctx, repo.QuoteRow{
					EventID:      ev.ID,
					BookmakerKey: bk.Key,
					MarketKey:    mk.Key,
					Outcomes:     mk.Outcomes,
					LastUpdate:   bk.LastUpdate,
				})
				if err != nil {
					s.Log.Warn("quote upsert failed",
						zap.String("event_id", ev.ID),
						zap.String("bookmaker", bk.Key),
						zap.Error(err),
					)
					s.reportError("upsert_quote")
					continue
				}
				quoteRows++
				rows++
			}
		}

		if s.Publisher != nil {
			err := s.Publisher.Publish(ctx, events.QuoteUpdate{
				EventID:   ev.ID,
				SportKey:  ev.SportKey,
				HomeTeam:  ev.HomeTeam,
				AwayTeam:  ev.AwayTeam,
				QuoteRows: quoteRows,
				SyncRunID: runID,
				Source:    s.Source,
				UpdatedAt: s.now(),
			})
			if err != nil {
				// o banco já tem as linhas; o worker pega no próximo ciclo
				s.Log.Error("quote update publish failed", zap.String("event_id", ev.ID), zap.Error(err))
				s.reportError("publish")
			}
		}
	}

	s.recordRun(ctx, repo.SyncRun{
		ID: runID, Kind: KindOdds, SportKey: sportKey, RowsProcessed: rows,
		StartedAt: started, FinishedAt: s.now(),
	})
	if s.OnSynced != nil {
		s.OnSynced(KindOdds, rows)
	}
	s.Log.Info("odds synced",
		zap.String("sport_key", sportKey),
		zap.Int("events", len(evs)),
		zap.Int("quote_rows", rows),
	)
	return rows, nil
}

// ShouldSync decide se um ciclo deve rodar já, dado o timestamp do último
// sucesso (injetado pelo chamador, nunca estado implícito de sessão).
func ShouldSync(lastSync, now time.Time, interval time.Duration) bool {
	return now.Sub(lastSync) >= interval
}

// RunPeriodic dispara SyncOdds na cadência configurada. lastSync vem de fora
// (sync_runs); se o último sucesso já estourou o intervalo, sincroniza de
// imediato em vez de esperar o primeiro tick.
func (s *Syncer) RunPeriodic(ctx context.Context, sportKey string, interval time.Duration, lastSync time.Time) {
	if ShouldSync(lastSync, s.now(), interval) {
		if _, err := s.SyncOdds(ctx, sportKey); err != nil {
			s.Log.Warn("initial odds sync failed", zap.Error(err))
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Log.Info("periodic sync stopped")
			return
		case <-ticker.C:
			if _, err := s.SyncOdds(ctx, sportKey); err != nil {
				s.Log.Warn("periodic odds sync failed", zap.Error(err))
			}
		}
	}
}

func (s *Syncer) recordRun(ctx context.Context, r repo.SyncRun) {
	if err := s.Store.RecordSyncRun(ctx, r); err != nil {
		s.Log.Warn("sync run record failed", zap.String("run_id", r.ID), zap.Error(err))
	}
}

func (s *Syncer) reportError(stage string) {
	if s.OnError != nil {
		s.OnError(stage)
	}
}
