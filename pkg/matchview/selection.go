package matchview

import "fmt"

// Selection é a variante fechada de seleções de um mercado h2h.
type Selection string

const (
	SelectionHome Selection = "home"
	SelectionDraw Selection = "draw"
	SelectionAway Selection = "away"
)

// ParseSelection valida uma seleção vinda de fora (query string, payload).
func ParseSelection(s string) (Selection, error) {
	switch Selection(s) {
	case SelectionHome, SelectionDraw, SelectionAway:
		return Selection(s), nil
	}
	return "", fmt.Errorf("unknown selection %q", s)
}

// PriceFor retorna a odd média da seleção. O segundo retorno é false quando a
// seleção não foi cotada (empate sem cotação nunca recebe fallback).
func (m Match) PriceFor(sel Selection) (float64, bool) {
	switch sel {
	case SelectionHome:
		return m.Odds.Home, true
	case SelectionAway:
		return m.Odds.Away, true
	case SelectionDraw:
		if m.Odds.Draw != nil {
			return *m.Odds.Draw, true
		}
	}
	return 0, false
}
