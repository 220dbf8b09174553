package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/F-M-GROUP/betika-odds-platform/internal/odds-sync/service"
)

// API expõe os dois gatilhos de ingestão sob demanda:
// sincronizar o catálogo de esportes e sincronizar odds de um esporte.
type API struct {
	Log             *zap.Logger
	Syncer          *service.Syncer
	DefaultSportKey string // usado quando o corpo não traz sportKey
}

// Router retorna o roteador HTTP dos gatilhos de sync.
// CORS liberado: os gatilhos são chamados direto do front-end.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	r.Post("/v1/sync/sports", a.syncSports) // sincroniza catálogo
	r.Post("/v1/sync/odds", a.syncOdds)     // sincroniza odds de um esporte
	return r
}

type syncOddsRequest struct {
	SportKey string `json:"sportKey"`
}

type syncResponse struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// syncSports dispara a sincronização do catálogo de esportes
func (a *API) syncSports(w http.ResponseWriter, r *http.Request) {
	rows, err := a.Syncer.SyncCatalog(r.Context())
	if err != nil {
		a.Log.Warn("catalog sync failed", zap.Error(err))
		// falha opaca: o chamador tenta de novo no próximo ciclo
		writeJSON(w, http.StatusBadGateway, syncResponse{Count: rows, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, syncResponse{Success: true, Count: rows, Message: "sports synced"})
}

// syncOdds dispara a sincronização de odds; corpo opcional {"sportKey": "..."}
func (a *API) syncOdds(w http.ResponseWriter, r *http.Request) {
	var req syncOddsRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // corpo vazio é válido
	}
	sportKey := req.SportKey
	if sportKey == "" {
		sportKey = a.DefaultSportKey
	}

	rows, err := a.Syncer.SyncOdds(r.Context(), sportKey)
	if err != nil {
		a.Log.Warn("odds sync failed", zap.String("sport_key", sportKey), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, syncResponse{Count: rows, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, syncResponse{Success: true, Count: rows, Message: "odds synced"})
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
