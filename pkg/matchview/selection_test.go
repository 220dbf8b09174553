package matchview_test

import (
	"testing"

	"github.com/F-M-GROUP/betika-odds-platform/pkg/matchview"
)

func TestParseSelection(t *testing.T) {
	for _, valid := range []string{"home", "draw", "away"} {
		if _, err := matchview.ParseSelection(valid); err != nil {
			t.Errorf("ParseSelection(%q) failed: %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "Home", "over", "1x2"} {
		if _, err := matchview.ParseSelection(invalid); err == nil {
			t.Errorf("ParseSelection(%q) accepted an invalid selection", invalid)
		}
	}
}

func TestPriceFor(t *testing.T) {
	draw := 3.25
	quoted := matchview.Match{Odds: matchview.Odds{Home: 1.85, Draw: &draw, Away: 4.10}}
	noDraw := matchview.Match{Odds: matchview.Odds{Home: 2.00, Away: 2.00}}

	if p, ok := quoted.PriceFor(matchview.SelectionHome); !ok || p != 1.85 {
		t.Errorf("home price = %v/%v, want 1.85/true", p, ok)
	}
	if p, ok := quoted.PriceFor(matchview.SelectionDraw); !ok || p != 3.25 {
		t.Errorf("draw price = %v/%v, want 3.25/true", p, ok)
	}
	if _, ok := noDraw.PriceFor(matchview.SelectionDraw); ok {
		t.Error("unquoted draw must not resolve to a price")
	}
}
