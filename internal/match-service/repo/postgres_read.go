package repo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/F-M-GROUP/betika-odds-platform/pkg/matchview"
)

// Limite de eventos por listagem, o mesmo da tela de partidas.
const listLimit = 50

type ReadRepo struct {
	DB *sql.DB
}

// ListOpenEventSnapshots retorna os eventos ainda não concluídos, ordenados
// por horário de início, cada um com suas cotações cruas.
func (r *ReadRepo) ListOpenEventSnapshots(ctx context.Context) ([]matchview.RawEvent, error) {
	const evq = `
		SELECT id, sport_title, commence_time, home_team, away_team, completed
		FROM events
		WHERE completed = false
		ORDER BY commence_time ASC
		LIMIT $1
	`
	rows, err := r.DB.QueryContext(ctx, evq, listLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []matchview.RawEvent
	var ids []string
	index := map[string]int{}
	for rows.Next() {
		var ev matchview.RawEvent
		if err := rows.Scan(&ev.ID, &ev.LeagueTitle, &ev.CommenceTime, &ev.HomeTeam, &ev.AwayTeam, &ev.Completed); err != nil {
			return nil, err
		}
		index[ev.ID] = len(out)
		ids = append(ids, ev.ID)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	quotes, err := r.quotesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, q := range quotes {
		if i, ok := index[q.EventID]; ok {
			out[i].Quotes = append(out[i].Quotes, q)
		}
	}
	return out, nil
}

// GetEventSnapshot retorna um evento com suas cotações. ok=false quando não existe.
func (r *ReadRepo) GetEventSnapshot(ctx context.Context, eventID string) (matchview.RawEvent, bool, error) {
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

	quotes, err := r.quotesFor(ctx, []string{eventID})
	if err != nil {
		return matchview.RawEvent{}, false, err
	}
	ev.Quotes = quotes
	return ev, true, nil
}

func (r *ReadRepo) quotesFor(ctx context.Context, eventIDs []string) ([]matchview.RawQuote, error) {
	const q = `
		SELECT event_id, bookmaker_key, market_key, outcomes, last_update
		FROM odds_quotes
		WHERE event_id = ANY($1)
		ORDER BY event_id, bookmaker_key, market_key
	`
	rows, err := r.DB.QueryContext(ctx, q, pq.Array(eventIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []matchview.RawQuote
	for rows.Next() {
		var quote matchview.RawQuote
		var outcomes []byte
		if err := rows.Scan(&quote.EventID, &quote.BookmakerKey, &quote.MarketKey, &outcomes, &quote.LastUpdate); err != nil {
			return nil, err
		}
		quote.Outcomes = outcomes
		out = append(out, quote)
	}
	return out, rows.Err()
}
