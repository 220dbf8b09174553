package repo

import (
	"encoding/json"
	"time"
)

// Sport é uma entrada do catálogo persistido.
type Sport struct {
	Key          string
	GroupName    string
	Title        string
	Description  string
	Active       bool
	HasOutrights bool
}

// Event é o evento esportivo persistido.
type Event struct {
	ID           string
	SportKey     string
	SportTitle   string
	CommenceTime time.Time
	HomeTeam     string
	AwayTeam     string
	Completed    bool
}

// QuoteRow é uma cotação de bookmaker persistida, chaveada por
// (event_id, bookmaker_key, market_key) com last-write-wins.
type QuoteRow struct {
	EventID      string
	BookmakerKey string
	MarketKey    string
	Outcomes     json.RawMessage
	LastUpdate   time.Time
}

// SyncRun registra um ciclo de sync: quantas linhas foram processadas antes
// de um eventual erro, nunca um sucesso parcial mais granular que isso.
type SyncRun struct {
	ID            string
	Kind          string // "catalog" | "odds"
	SportKey      string
	RowsProcessed int
	Error         string
	StartedAt     time.Time
	FinishedAt    time.Time
}
