package service

import (
	"testing"

	"card-battle/internal/domain"
)

func tallyOf(outcomes ...domain.Outcome) domain.Tally {
	var t domain.Tally
	for _, o := range outcomes {
		switch o {
		case domain.OutcomeUserWon:
			t.UserWon++
		case domain.OutcomeHouseWon:
			t.HouseWon++
		case domain.OutcomeDraw:
			t.Draws++
		}
	}
	return t
}

func TestDecide(t *testing.T) {
	const (
		u = domain.OutcomeUserWon
		h = domain.OutcomeHouseWon
		d = domain.OutcomeDraw
	)

	tests := []struct {
		name  string
		plays []domain.Outcome
		want  domain.Outcome
	}{
		{name: "two wins over one loss", plays: []domain.Outcome{u, u, h, d, d}, want: u},
		{name: "one each with draws", plays: []domain.Outcome{u, h, d, d, d}, want: d},
		{name: "house majority", plays: []domain.Outcome{h, h, h, u, u}, want: h},
		{name: "single win decides", plays: []domain.Outcome{d, d, u, d, d}, want: u},
		{name: "all draws", plays: []domain.Outcome{d, d, d, d, d}, want: d},
		{name: "sweep", plays: []domain.Outcome{u, u, u, u, u}, want: u},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tallyOf(tt.plays...)); got != tt.want {
				t.Errorf("Decide(%v) = %s, want %s", tt.plays, got, tt.want)
			}
		})
	}
}
