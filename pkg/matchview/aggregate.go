package matchview

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Aggregate transforma um snapshot de eventos crus na lista canônica de
// partidas, avaliada contra o relógio "now" informado pelo chamador.
//
// Função pura: não faz I/O, não modifica a entrada e preserva a ordem dos
// eventos na saída. Chamadas concorrentes sobre snapshots distintos são
// seguras. Dados malformados são absorvidos linha a linha; o único erro
// possível é violação de pré-condição do próprio evento (ver aggregateOne).
func Aggregate(events []RawEvent, now time.Time) ([]Match, error) {
	matches := make([]Match, 0, len(events))
	for i := range events {
		m, err := aggregateOne(&events[i], now)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func aggregateOne(ev *RawEvent, now time.Time) (Match, error) {
	// Pré-condição criada upstream; sinaliza defeito ao chamador em vez de
	// produzir uma partida sem sentido.
	if ev.HomeTeam == ev.AwayTeam {
		return Match{}, fmt.Errorf("event %s: home and away team are both %q", ev.ID, ev.HomeTeam)
	}

	sums := extractH2H(ev)
	status, clock := deriveStatus(ev.CommenceTime, ev.Completed, now)

	return Match{
		ID:        ev.ID,
		HomeTeam:  ev.HomeTeam,
		AwayTeam:  ev.AwayTeam,
		League:    ev.LeagueTitle,
		Time:      clock,
		Status:    status,
		Odds:      averageOdds(sums),
		IsPopular: sums.count > PopularBookmakerThreshold,
	}, nil
}

// priceSums acumula somas de preços por seleção e a contagem de linhas
// contribuintes (linhas onde casa ou fora foi encontrado).
type priceSums struct {
	home  float64
	away  float64
	draw  float64
	count int
}

// extractH2H varre as cotações h2h do evento e acumula os preços por seleção.
//
// Regras herdadas do comportamento de produção:
//   - nome do outcome comparado por igualdade exata com HomeTeam/AwayTeam/"Draw";
//   - payload de outcomes que não decodifica em lista é descartado em silêncio;
//   - a linha só conta como contribuinte se casa ou fora foi encontrado;
//   - um preço de empate soma mesmo em linha não contribuinte.
func extractH2H(ev *RawEvent) priceSums {
	var s priceSums
	for _, q := range ev.Quotes {
		if q.MarketKey != MarketH2H {
			continue
		}

		var outcomes []Outcome
		if err := json.Unmarshal(q.Outcomes, &outcomes); err != nil {
			continue
		}

		var homeFound, awayFound, drawFound bool
		var homePrice, awayPrice, drawPrice float64
		for _, o := range outcomes {
			switch o.Name {
			case ev.HomeTeam:
				if !homeFound {
					homeFound, homePrice = true, o.Price
				}
			case ev.AwayTeam:
				if !awayFound {
					awayFound, awayPrice = true, o.Price
				}
			case DrawOutcomeName:
				if !drawFound {
					drawFound, drawPrice = true, o.Price
				}
			}
		}

		if homeFound {
			s.home += homePrice
		}
		if awayFound {
			s.away += awayPrice
		}
		if drawFound {
			s.draw += drawPrice
		}
		if homeFound || awayFound {
			s.count++
		}
	}
	return s
}

// averageOdds calcula a média aritmética por seleção.
//
// O divisor do empate é a MESMA contagem de linhas com casa/fora, não a
// contagem de linhas que cotaram empate. Quirk herdado e documentado: quando
// menos bookmakers cotam o empate, a média do empate sai subestimada. Mantido
// por compatibilidade com o comportamento observado.
func averageOdds(s priceSums) Odds {
	if s.count == 0 {
		// nunca divide por zero; caminho de fallback
		return Odds{Home: DefaultFallbackOdds, Away: DefaultFallbackOdds}
	}

	o := Odds{
		Home: round2(s.home / float64(s.count)),
		Away: round2(s.away / float64(s.count)),
	}
	if s.draw > 0 {
		d := round2(s.draw / float64(s.count))
		o.Draw = &d
	}
	return o
}

// round2 arredonda a 2 casas decimais, metade para longe de zero.
// Regra fixada via decimal para que 2.005 vire 2.01 e não dependa da
// representação binária do float.
func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
