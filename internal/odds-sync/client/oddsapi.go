package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Parâmetros fixos das consultas de odds: regiões, mercado h2h e formato decimal.
// Mantêm o payload compatível com o que a agregação espera.
const (
	regionsParam    = "us,uk,eu"
	marketsParam    = "h2h"
	oddsFormatParam = "decimal"
)

// Client é o cliente HTTP da The Odds API v4.
// As chamadas passam por um rate limiter: a API cobra por requisição e o
// sync periódico não pode estourar a cota por engano.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// New cria um cliente com limite de requisições por segundo.
func New(baseURL, apiKey string, rps rate.Limit, log *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rps, 1),
		log:     log,
	}
}

// Sport é uma entrada do catálogo de esportes/competições.
type Sport struct {
	Key          string `json:"key"`
	Group        string `json:"group"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Active       bool   `json:"active"`
	HasOutrights bool   `json:"has_outrights"`
}

// Event é um evento esportivo com as cotações de todos os bookmakers.
type Event struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker agrupa os mercados cotados por uma casa.
type Bookmaker struct {
	Key        string    `json:"key"`
	Title      string    `json:"title"`
	LastUpdate time.Time `json:"last_update"`
	Markets    []Market  `json:"markets"`
}

// Market mantém o payload de outcomes cru; a validação é responsabilidade
// da agregação, linha a linha.
type Market struct {
	Key      string          `json:"key"`
	Outcomes json.RawMessage `json:"outcomes"`
}

// ListSports busca o catálogo de esportes (GET /v4/sports).
func (c *Client) ListSports(ctx context.Context) ([]Sport, error) {
	var sports []Sport
	if err := c.getJSON(ctx, "/v4/sports", nil, &sports); err != nil {
		return nil, fmt.Errorf("list sports: %w", err)
	}
	return sports, nil
}

// ListOdds busca eventos e cotações h2h de um esporte
// (GET /v4/sports/{key}/odds). sportKey "upcoming" cobre todos os esportes.
func (c *Client) ListOdds(ctx context.Context, sportKey string) ([]Event, error) {
	q := url.Values{}
	q.Set("regions", regionsParam)
	q.Set("markets", marketsParam)
	q.Set("oddsFormat", oddsFormatParam)

	var events []Event
	path := "/v4/sports/" + url.PathEscape(sportKey) + "/odds"
	if err := c.getJSON(ctx, path, q, &events); err != nil {
		return nil, fmt.Errorf("list odds for %s: %w", sportKey, err)
	}
	return events, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// a API devolve a cota restante em header; útil pra acompanhar o consumo
	if remaining := resp.Header.Get("x-requests-remaining"); remaining != "" {
		c.log.Debug("odds api quota", zap.String("requests_remaining", remaining))
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("odds api status %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}
