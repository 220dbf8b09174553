package matchview

import (
	"encoding/json"
	"time"
)

// Mercado consumido pela agregação: resultado final (casa/empate/fora).
const MarketH2H = "h2h"

// Nome literal usado pelos bookmakers para a seleção de empate.
// A comparação é case-sensitive.
const DrawOutcomeName = "Draw"

// DefaultFallbackOdds é a odd atribuída a casa/fora quando nenhum bookmaker
// cotou o evento. Decisão de política nomeada para poder ser ajustada sem
// mexer no algoritmo.
const DefaultFallbackOdds = 2.0

// PopularBookmakerThreshold define a contagem de bookmakers a partir da qual
// (estritamente maior) um evento é marcado como popular.
const PopularBookmakerThreshold = 3

// LiveClockCapMinutes limita o relógio exibido de partidas ao vivo.
// Vale só para exibição; o status continua "live" além dos 90 minutos.
const LiveClockCapMinutes = 90

// RawQuote é a cotação crua de um bookmaker para um mercado de um evento.
// Outcomes carrega o payload jsonb sem decodificar: payloads malformados são
// tratados linha a linha pela agregação, nunca derrubam o cálculo inteiro.
type RawQuote struct {
	EventID      string          `json:"eventId"`
	BookmakerKey string          `json:"bookmakerKey"`
	MarketKey    string          `json:"marketKey"`
	Outcomes     json.RawMessage `json:"outcomes"`
	LastUpdate   time.Time       `json:"lastUpdate"`
}

// Outcome é uma entrada de preço dentro do payload de um mercado.
type Outcome struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// RawEvent é uma partida como persistida pelo sync, com zero ou mais cotações.
type RawEvent struct {
	ID           string
	HomeTeam     string
	AwayTeam     string
	LeagueTitle  string
	CommenceTime time.Time
	Completed    bool
	Quotes       []RawQuote
}

// Status de exibição de uma partida.
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusLive     Status = "live"
	StatusFinished Status = "finished"
)

// Odds médias por seleção, arredondadas a 2 casas.
// Draw é ponteiro: ausente quando nenhum bookmaker cotou empate.
type Odds struct {
	Home float64  `json:"home"`
	Draw *float64 `json:"draw,omitempty"`
	Away float64  `json:"away"`
}

// Match é a visão canônica de uma partida, recalculada do zero a cada refresh.
type Match struct {
	ID        string `json:"id"`
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
	League    string `json:"league"`
	Time      string `json:"time"`
	Status    Status `json:"status"`
	Odds      Odds   `json:"odds"`
	IsPopular bool   `json:"isPopular"`
}
