package matchview

import (
	"fmt"
	"time"
)

// deriveStatus classifica a partida e monta o relógio de exibição.
//
// Precedência: Completed sempre vence, mesmo com CommenceTime no futuro.
// Partida não concluída com início no passado é "live" por tempo indefinido;
// o limite de 90 minutos vale apenas para o texto do relógio.
func deriveStatus(commence time.Time, completed bool, now time.Time) (Status, string) {
	if completed {
		return StatusFinished, commence.Format("15:04")
	}

	if commence.Before(now) {
		elapsed := int(now.Sub(commence).Minutes())
		if elapsed > LiveClockCapMinutes {
			elapsed = LiveClockCapMinutes
		}
		return StatusLive, fmt.Sprintf("LIVE %d'", elapsed)
	}

	return StatusUpcoming, commence.Format("15:04")
}
