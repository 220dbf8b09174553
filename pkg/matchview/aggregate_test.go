package matchview_test

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/F-M-GROUP/betika-odds-platform/pkg/matchview"
)

var testNow = time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

func h2hQuote(t *testing.T, bookmaker string, outcomes []matchview.Outcome) matchview.RawQuote {
	t.Helper()
	raw, err := json.Marshal(outcomes)
	if err != nil {
		t.Fatalf("marshal outcomes: %v", err)
	}
	return matchview.RawQuote{
		EventID:      "ev-1",
		BookmakerKey: bookmaker,
		MarketKey:    matchview.MarketH2H,
		Outcomes:     raw,
		LastUpdate:   testNow.Add(-5 * time.Minute),
	}
}

func baseEvent(quotes ...matchview.RawQuote) matchview.RawEvent {
	return matchview.RawEvent{
		ID:           "ev-1",
		HomeTeam:     "Arsenal",
		AwayTeam:     "Chelsea",
		LeagueTitle:  "Premier League",
		CommenceTime: testNow.Add(2 * time.Hour),
		Quotes:       quotes,
	}
}

func TestAggregateNoQuotesDefaults(t *testing.T) {
	matches, err := matchview.Aggregate([]matchview.RawEvent{baseEvent()}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}

	m := matches[0]
	if m.Odds.Home != 2.00 || m.Odds.Away != 2.00 {
		t.Errorf("fallback odds = %.2f/%.2f, want 2.00/2.00", m.Odds.Home, m.Odds.Away)
	}
	if m.Odds.Draw != nil {
		t.Errorf("draw = %v, want absent", *m.Odds.Draw)
	}
	if m.IsPopular {
		t.Error("event without quotes must not be popular")
	}
}

func TestAggregateAveraging(t *testing.T) {
	// Três bookmakers cotam casa e fora; só dois cotam empate. O divisor do
	// empate continua sendo 3 (quirk documentado, não política verificada).
	ev := baseEvent(
		h2hQuote(t, "bet365", []matchview.Outcome{
			{Name: "Arsenal", Price: 2.0},
			{Name: "Draw", Price: 3.0},
			{Name: "Chelsea", Price: 2.0},
		}),
		h2hQuote(t, "pinnacle", []matchview.Outcome{
			{Name: "Arsenal", Price: 2.5},
			{Name: "Draw", Price: 3.5},
			{Name: "Chelsea", Price: 1.8},
		}),
		h2hQuote(t, "betfair", []matchview.Outcome{
			{Name: "Arsenal", Price: 3.0},
			{Name: "Chelsea", Price: 1.6},
		}),
	)

	matches, err := matchview.Aggregate([]matchview.RawEvent{ev}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := matches[0]
	if m.Odds.Home != 2.50 {
		t.Errorf("home = %v, want 2.50", m.Odds.Home)
	}
	if m.Odds.Away != 1.80 {
		t.Errorf("away = %v, want 1.80", m.Odds.Away)
	}
	if m.Odds.Draw == nil {
		t.Fatal("draw absent, want (3.0+3.5)/3")
	}
	if *m.Odds.Draw != 2.17 {
		t.Errorf("draw = %v, want 2.17", *m.Odds.Draw)
	}
}

func TestAggregatePopularityThreshold(t *testing.T) {
	quote := func(bk string) matchview.RawQuote {
		return h2hQuote(t, bk, []matchview.Outcome{
			{Name: "Arsenal", Price: 2.0},
			{Name: "Chelsea", Price: 2.0},
		})
	}

	tests := []struct {
		name       string
		bookmakers []string
		want       bool
	}{
		{"three contributing rows", []string{"a", "b", "c"}, false},
		{"four contributing rows", []string{"a", "b", "c", "d"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var quotes []matchview.RawQuote
			for _, bk := range tt.bookmakers {
				quotes = append(quotes, quote(bk))
			}
			matches, err := matchview.Aggregate([]matchview.RawEvent{baseEvent(quotes...)}, testNow)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if matches[0].IsPopular != tt.want {
				t.Errorf("isPopular = %v, want %v", matches[0].IsPopular, tt.want)
			}
		})
	}
}

func TestAggregateSkipsNonContributingRows(t *testing.T) {
	ev := baseEvent(
		// mercado errado: ignorado por completo
		matchview.RawQuote{
			EventID:      "ev-1",
			BookmakerKey: "bet365",
			MarketKey:    "totals",
			Outcomes:     json.RawMessage(`[{"name":"Arsenal","price":9.9}]`),
		},
		// payload que não é lista: linha descartada, cálculo segue
		matchview.RawQuote{
			EventID:      "ev-1",
			BookmakerKey: "pinnacle",
			MarketKey:    matchview.MarketH2H,
			Outcomes:     json.RawMessage(`{"broken":true}`),
		},
		// payload vazio (coluna nula)
		matchview.RawQuote{
			EventID:      "ev-1",
			BookmakerKey: "betfair",
			MarketKey:    matchview.MarketH2H,
		},
		// nomes que não batem com nenhum time: linha pulada sem erro
		h2hQuote(t, "betway", []matchview.Outcome{
			{Name: "Liverpool", Price: 1.5},
			{Name: "Everton", Price: 2.5},
		}),
		// única linha contribuinte
		h2hQuote(t, "unibet", []matchview.Outcome{
			{Name: "Arsenal", Price: 1.9},
			{Name: "Chelsea", Price: 4.2},
		}),
	)

	matches, err := matchview.Aggregate([]matchview.RawEvent{ev}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := matches[0]
	if m.Odds.Home != 1.90 || m.Odds.Away != 4.20 {
		t.Errorf("odds = %.2f/%.2f, want 1.90/4.20", m.Odds.Home, m.Odds.Away)
	}
	if m.IsPopular {
		t.Error("one contributing row must not be popular")
	}
}

func TestAggregateDrawOnlyRowQuirk(t *testing.T) {
	// Linha que só cotou o empate: não conta como contribuinte, mas o preço
	// de empate entra na soma. Comportamento herdado, mantido por compatibilidade.
	ev := baseEvent(
		h2hQuote(t, "bet365", []matchview.Outcome{
			{Name: "Arsenal", Price: 2.0},
			{Name: "Chelsea", Price: 2.0},
			{Name: "Draw", Price: 3.0},
		}),
		h2hQuote(t, "oddball", []matchview.Outcome{
			{Name: "Draw", Price: 4.0},
		}),
	)

	matches, err := matchview.Aggregate([]matchview.RawEvent{ev}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := matches[0]
	if m.Odds.Draw == nil {
		t.Fatal("draw absent, want (3.0+4.0)/1")
	}
	if *m.Odds.Draw != 7.00 {
		t.Errorf("draw = %v, want 7.00", *m.Odds.Draw)
	}
	if m.IsPopular {
		t.Error("draw-only row must not count towards popularity")
	}
}

func TestAggregateDrawOnlyEventUsesFallback(t *testing.T) {
	// Empate cotado mas nenhuma linha contribuinte: a divisão por zero nunca
	// acontece, o caminho de fallback omite o empate.
	ev := baseEvent(
		h2hQuote(t, "oddball", []matchview.Outcome{
			{Name: "Draw", Price: 4.0},
		}),
	)

	matches, err := matchview.Aggregate([]matchview.RawEvent{ev}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := matches[0]
	if m.Odds.Home != 2.00 || m.Odds.Away != 2.00 {
		t.Errorf("odds = %.2f/%.2f, want fallback 2.00/2.00", m.Odds.Home, m.Odds.Away)
	}
	if m.Odds.Draw != nil {
		t.Errorf("draw = %v, want absent", *m.Odds.Draw)
	}
}

func TestAggregateRoundingHalfAwayFromZero(t *testing.T) {
	// Média exata 2.005 deve subir para 2.01 (regra fixada: metade para longe
	// de zero sobre o valor decimal).
	ev := baseEvent(
		h2hQuote(t, "a", []matchview.Outcome{
			{Name: "Arsenal", Price: 2.00},
			{Name: "Chelsea", Price: 3.00},
		}),
		h2hQuote(t, "b", []matchview.Outcome{
			{Name: "Arsenal", Price: 2.01},
			{Name: "Chelsea", Price: 3.00},
		}),
	)

	matches, err := matchview.Aggregate([]matchview.RawEvent{ev}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := matches[0].Odds.Home; got != 2.01 {
		t.Errorf("home = %v, want 2.01", got)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	events := []matchview.RawEvent{
		baseEvent(
			h2hQuote(t, "bet365", []matchview.Outcome{
				{Name: "Arsenal", Price: 2.1},
				{Name: "Draw", Price: 3.3},
				{Name: "Chelsea", Price: 3.8},
			}),
		),
		{
			ID:           "ev-2",
			HomeTeam:     "Flamengo",
			AwayTeam:     "Palmeiras",
			LeagueTitle:  "Brasileirão",
			CommenceTime: testNow.Add(-30 * time.Minute),
		},
	}

	first, err := matchview.Aggregate(events, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := matchview.Aggregate(events, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("same snapshot and now produced different output:\n%+v\n%+v", first, second)
	}
	if first[0].ID != "ev-1" || first[1].ID != "ev-2" {
		t.Errorf("output order must follow input order, got %s,%s", first[0].ID, first[1].ID)
	}
}

func TestAggregateSameTeamsIsDefect(t *testing.T) {
	ev := baseEvent()
	ev.AwayTeam = ev.HomeTeam

	if _, err := matchview.Aggregate([]matchview.RawEvent{ev}, testNow); err == nil {
		t.Fatal("expected error for home == away, got nil")
	}
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	ev := baseEvent(
		h2hQuote(t, "bet365", []matchview.Outcome{
			{Name: "Arsenal", Price: 2.0},
			{Name: "Chelsea", Price: 2.0},
		}),
	)
	events := []matchview.RawEvent{ev}
	before, err := json.Marshal(events)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if _, err := matchview.Aggregate(events, testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after, err := json.Marshal(events)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(before) != string(after) {
		t.Error("aggregation mutated its input snapshot")
	}
}
