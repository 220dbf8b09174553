package events

import "time"

// Evento publicado no tópico "odds_quote_updates" a cada evento esportivo
// atualizado por um ciclo de sync. Dispara o recálculo da visão de partida.
type QuoteUpdate struct {
	EventID   string    `json:"event_id"`
	SportKey  string    `json:"sport_key"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	QuoteRows int       `json:"quote_rows"` // linhas de cotação gravadas neste ciclo
	SyncRunID string    `json:"sync_run_id"`
	Source    string    `json:"source"` // "odds-sync-service"
	UpdatedAt time.Time `json:"updated_at"`
}
