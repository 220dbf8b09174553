package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/F-M-GROUP/betika-odds-platform/internal/odds-sync/client"
)

func TestListOdds(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}

		w.Header().Set("x-requests-remaining", "499")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{
				"id": "ev-1",
				"sport_key": "soccer_epl",
				"sport_title": "Premier League",
				"commence_time": "2025-03-10T20:00:00Z",
				"home_team": "Arsenal",
				"away_team": "Chelsea",
				"bookmakers": [
					{
						"key": "bet365",
						"title": "Bet365",
						"last_update": "2025-03-10T18:00:00Z",
						"markets": [
							{"key": "h2h", "outcomes": [{"name": "Arsenal", "price": 1.9}]}
						]
					}
				]
			}
		]`))
	}))
	defer srv.Close()

	c := client.New(srv.URL, "secret-key", rate.Inf, zap.NewNop())
	events, err := c.ListOdds(context.Background(), "soccer_epl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/v4/sports/soccer_epl/odds" {
		t.Errorf("path = %q, want /v4/sports/soccer_epl/odds", gotPath)
	}
	want := map[string]string{
		"apiKey":     "secret-key",
		"regions":    "us,uk,eu",
		"markets":    "h2h",
		"oddsFormat": "decimal",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]
	if ev.ID != "ev-1" || ev.HomeTeam != "Arsenal" || len(ev.Bookmakers) != 1 {
		t.Errorf("unexpected event: %+v", ev)
	}
	if ev.Bookmakers[0].Markets[0].Key != "h2h" {
		t.Errorf("market key = %q, want h2h", ev.Bookmakers[0].Markets[0].Key)
	}
	if len(ev.Bookmakers[0].Markets[0].Outcomes) == 0 {
		t.Error("raw outcomes payload must be preserved")
	}
}

func TestListSports(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v4/sports" {
			t.Errorf("path = %q, want /v4/sports", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"key":"soccer_epl","group":"Soccer","title":"Premier League","active":true,"has_outrights":false}]`))
	}))
	defer srv.Close()

	c := client.New(srv.URL, "secret-key", rate.Inf, zap.NewNop())
	sports, err := c.ListSports(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sports) != 1 || sports[0].Key != "soccer_epl" || !sports[0].Active {
		t.Errorf("unexpected sports: %+v", sports)
	}
}

func TestNonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := client.New(srv.URL, "bad-key", rate.Inf, zap.NewNop())
	if _, err := c.ListSports(context.Background()); err == nil {
		t.Fatal("expected error on 401, got nil")
	}
}
