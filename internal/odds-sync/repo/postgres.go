package repo

import (
	"context"
	"database/sql"
	"time"
)

// Postgres implementa a persistência do sync de odds.
// Todas as escritas são upserts idempotentes: repetir um ciclo com o mesmo
// payload não duplica linhas nem corrompe o que já está gravado.
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de sync
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// UpsertSport insere ou atualiza uma entrada do catálogo de esportes
func (p *Postgres) UpsertSport(ctx context.Context, s Sport) error {
	const q = `
		INSERT INTO sports (key, group_name, title, description, active, has_outrights, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,now())
		ON CONFLICT (key) DO UPDATE SET
		  group_name    = EXCLUDED.group_name,
		  title         = EXCLUDED.title,
		  description   = EXCLUDED.description,
		  active        = EXCLUDED.active,
		  has_outrights = EXCLUDED.has_outrights,
		  updated_at    = now()
	`
	_, err := p.db.ExecContext(ctx, q, s.Key, s.GroupName, s.Title, s.Description, s.Active, s.HasOutrights)
	return err
}

// UpsertBookmaker insere ou atualiza uma casa de apostas
func (p *Postgres) UpsertBookmaker(ctx context.Context, key, title string) error {
	const q = `
		INSERT INTO bookmakers (key, title)
		VALUES ($1,$2)
		ON CONFLICT (key) DO UPDATE SET title = EXCLUDED.title
	`
	_, err := p.db.ExecContext(ctx, q, key, title)
	return err
}

// UpsertEvent insere ou atualiza um evento esportivo
func (p *Postgres) UpsertEvent(ctx context.Context, e Event) error {
	const q = `
		INSERT INTO events (id, sport_key, sport_title, commence_time, home_team, away_team, completed, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,now())
		ON CONFLICT (id) DO UPDATE SET
		  sport_key     = EXCLUDED.sport_key,
		  sport_title   = EXCLUDED.sport_title,
		  commence_time = EXCLUDED.commence_time,
		  home_team     = EXCLUDED.home_team,
		  away_team     = EXCLUDED.away_team,
		  completed     = EXCLUDED.completed,
		  updated_at    = now()
	`
	_, err := p.db.ExecContext(ctx, q,
		e.ID, e.SportKey, e.SportTitle, e.CommenceTime, e.HomeTeam, e.AwayTeam, e.Completed,
	)
	return err
}

// UpsertQuote insere ou sobrescreve a cotação de um bookmaker para um mercado
// de um evento (last-write-wins por (event_id, bookmaker_key, market_key))
func (p *Postgres) UpsertQuote(ctx context.Context, q QuoteRow) error {
	const stmt = `
		INSERT INTO odds_quotes (event_id, bookmaker_key, market_key, outcomes, last_update, updated_at)
		VALUES ($1,$2,$3,$4,$5,now())
		ON CONFLICT (event_id, bookmaker_key, market_key) DO UPDATE SET
		  outcomes    = EXCLUDED.outcomes,
		  last_update = EXCLUDED.last_update,
		  updated_at  = now()
	`
	_, err := p.db.ExecContext(ctx, stmt,
		q.EventID, q.BookmakerKey, q.MarketKey, []byte(q.Outcomes), q.LastUpdate,
	)
	return err
}

// RecordSyncRun grava o resultado de um ciclo de sync
func (p *Postgres) RecordSyncRun(ctx context.Context, r SyncRun) error {
	const q = `
		INSERT INTO sync_runs (id, kind, sport_key, rows_processed, error, started_at, finished_at)
		VALUES ($1,$2,$3,$4,NULLIF($5,''),$6,$7)
	`
	_, err := p.db.ExecContext(ctx, q,
		r.ID, r.Kind, r.SportKey, r.RowsProcessed, r.Error, r.StartedAt, r.FinishedAt,
	)
	return err
}

// LastSuccessfulSync retorna o timestamp do último ciclo bem-sucedido do tipo
// informado. ok=false quando nunca houve sucesso.
func (p *Postgres) LastSuccessfulSync(ctx context.Context, kind string) (time.Time, bool, error) {
	const q = `
		SELECT finished_at FROM sync_runs
		WHERE kind = $1 AND error IS NULL
		ORDER BY finished_at DESC
		LIMIT 1
	`
	var ts time.Time
	err := p.db.QueryRowContext(ctx, q, kind).Scan(&ts)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return ts, true, nil
}
