package repository

import (
	"context"
	"database/sql"

	"github.com/F-M-GROUP/betika-odds-platform/pkg/matchview"
)

// PostgresRepo carrega o snapshot cru de um evento (linha do evento + todas
// as cotações) para o recálculo da visão de partida.
type PostgresRepo struct {
	DB *sql.DB
}

// NewPostgresRepo retorna uma instância de repositório Postgres
func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// GetEventSnapshot busca um evento e suas cotações. ok=false quando o evento
// não existe (mensagem atrasada de evento já removido, por exemplo).
func (r *PostgresRepo) GetEventSnapshot(ctx context.Context, eventID string) (matchview.RawEvent, bool, error) {
	const evq = `
		SELECT id, sport_title, commence_time, home_team, away_team, completed
		FROM events
		WHERE id = $1
	`
	var ev matchview.RawEvent
	err := r.DB.QueryRowContext(ctx, evq, eventID).Scan(
		&ev.ID, &ev.LeagueTitle, &ev.CommenceTime, &ev.HomeTeam, &ev.AwayTeam, &ev.Completed,
	)
	if err == sql.ErrNoRows {
		return matchview.RawEvent{}, false, nil
	}
	if err != nil {
		return matchview.RawEvent{}, false, err
	}

	const qq = `
		SELECT event_id, bookmaker_key, market_key, outcomes, last_update
		FROM odds_quotes
		WHERE event_id = $1
		ORDER BY bookmaker_key, market_key
	`
	rows, err := r.DB.QueryContext(ctx, qq, eventID)
	if err != nil {
		return matchview.RawEvent{}, false, err
	}
	defer rows.Close()

	for rows.Next() {
		var q matchview.RawQuote
		var outcomes []byte
		if err := rows.Scan(&q.EventID, &q.BookmakerKey, &q.MarketKey, &outcomes, &q.LastUpdate); err != nil {
			return matchview.RawEvent{}, false, err
		}
		q.Outcomes = outcomes
		ev.Quotes = append(ev.Quotes, q)
	}
	if err := rows.Err(); err != nil {
		return matchview.RawEvent{}, false, err
	}

	return ev, true, nil
}
