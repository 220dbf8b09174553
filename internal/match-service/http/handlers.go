package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/F-M-GROUP/betika-odds-platform/internal/match-service/cache"
	"github.com/F-M-GROUP/betika-odds-platform/internal/match-service/repo"
	"github.com/F-M-GROUP/betika-odds-platform/pkg/matchview"
)

// TTL da visão calculada sob demanda; o refresh cadenciado roda por minuto,
// então leituras quentes ficam no Redis entre um ciclo e outro.
const viewTTL = 30 * time.Second

// API expõe os endpoints REST da visão canônica de partidas.
// Leitura cache-first (Redis), com fallback para snapshot do Postgres
// agregado na hora.
type API struct {
	Log      *zap.Logger
	ReadRepo *repo.ReadRepo // acesso ao banco de dados
	Cache    *cache.Cache   // cache da visão de partidas

	Now func() time.Time // injetável em teste; default time.Now
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	r.Get("/v1/matches", a.listMatches)            // Lista partidas abertas
	r.Get("/v1/matches/{id}", a.getMatch)          // Visão de uma partida
	r.Get("/v1/matches/{id}/odds", a.getMatchOdds) // Odds médias, opcionalmente por seleção
	return r
}

func (a *API) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// listMatches retorna a visão de todas as partidas abertas
func (a *API) listMatches(w http.ResponseWriter, r *http.Request) {
	if matches, ok, _ := a.Cache.GetMatches(r.Context()); ok {
		writeJSON(w, http.StatusOK, matches)
		return
	}

	events, err := a.ReadRepo.ListOpenEventSnapshots(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	matches, err := matchview.Aggregate(events, a.now())
	if err != nil {
		// pré-condição violada em algum evento; defeito de dado upstream
		a.Log.Error("aggregation defect", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	_ = a.Cache.SetMatches(r.Context(), matches, viewTTL)
	writeJSON(w, http.StatusOK, matches)
}

// getMatch retorna a visão de uma partida, preferencialmente do cache
func (a *API) getMatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	m, ok, err := a.loadMatch(r, id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// getMatchOdds retorna as odds médias; com ?selection=home|draw|away devolve
// só o preço da seleção pedida
func (a *API) getMatchOdds(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	m, ok, err := a.loadMatch(r, id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	raw := r.URL.Query().Get("selection")
	if raw == "" {
		writeJSON(w, http.StatusOK, m.Odds)
		return
	}

	sel, err := matchview.ParseSelection(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	price, quoted := m.PriceFor(sel)
	if !quoted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "selection not quoted"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"selection": sel, "price": price})
}

// loadMatch resolve a visão de uma partida: cache, senão snapshot + agregação
func (a *API) loadMatch(r *http.Request, id string) (matchview.Match, bool, error) {
	if m, ok, _ := a.Cache.GetMatch(r.Context(), id); ok {
		return m, true, nil
	}

	ev, ok, err := a.ReadRepo.GetEventSnapshot(r.Context(), id)
	if err != nil {
		return matchview.Match{}, false, err
	}
	if !ok {
		return matchview.Match{}, false, nil
	}

	matches, err := matchview.Aggregate([]matchview.RawEvent{ev}, a.now())
	if err != nil {
		a.Log.Error("aggregation defect", zap.String("event_id", id), zap.Error(err))
		return matchview.Match{}, false, err
	}

	m := matches[0]
	_ = a.Cache.SetMatch(r.Context(), m, viewTTL)
	return m, true, nil
}
