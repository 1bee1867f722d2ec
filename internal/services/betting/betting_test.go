package betting

import (
	"errors"
	"testing"
	"time"

	"github.com/radieske/sportsbook-backend/internal/game"
	"github.com/radieske/sportsbook-backend/internal/shared/apperr"
)

func fp(v float64) *float64 { return &v }

func TestValidateStake(t *testing.T) {
	tests := []struct {
		name       string
		stakeCents int64
		wantErr    bool
	}{
		{"zero", 0, true},
		{"negative", -500, true},
		{"below minimum", 999, true},
		{"exact minimum", 1000, false},
		{"above minimum", 25000, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateStake(tc.stakeCents)
			if tc.wantErr && !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("validateStake(%d) = %v, want ErrValidation", tc.stakeCents, err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("validateStake(%d) = %v, want nil", tc.stakeCents, err)
			}
		})
	}
}

func TestResolvePlacement(t *testing.T) {
	now := time.Now().UTC()
	open := &game.Game{
		Status:    game.StatusScheduled,
		StartTime: now.Add(2 * time.Hour),
		Odds:      game.OddsCatalog{HomeWin: fp(1.95)},
	}

	odds, err := resolvePlacement(open, game.MarketHomeWin, "", now)
	if err != nil || odds != 1.95 {
		t.Fatalf("resolvePlacement = %v, %v; want 1.95", odds, err)
	}

	// jogo fora de scheduled bloqueia antes da resolução de odd
	live := &game.Game{Status: game.StatusLive, StartTime: now.Add(time.Hour)}
	if _, err := resolvePlacement(live, game.MarketHomeWin, "", now); !errors.Is(err, apperr.ErrStateConflict) {
		t.Errorf("live game: err = %v, want ErrStateConflict", err)
	}

	finished := &game.Game{Status: game.StatusFinished}
	if _, err := resolvePlacement(finished, game.MarketHomeWin, "", now); !errors.Is(err, apperr.ErrStateConflict) {
		t.Errorf("finished game: err = %v, want ErrStateConflict", err)
	}

	// scheduled mas com horário de início passado
	started := &game.Game{
		Status:    game.StatusScheduled,
		StartTime: now.Add(-time.Minute),
		Odds:      game.OddsCatalog{HomeWin: fp(1.95)},
	}
	if _, err := resolvePlacement(started, game.MarketHomeWin, "", now); !errors.Is(err, apperr.ErrStateConflict) {
		t.Errorf("started game: err = %v, want ErrStateConflict", err)
	}

	// a checagem de estado vem antes da checagem de mercado
	if _, err := resolvePlacement(live, game.MarketAwayWin, "", now); !errors.Is(err, apperr.ErrStateConflict) {
		t.Errorf("state check should precede market check, got %v", err)
	}

	// mercado não ofertado neste jogo
	if _, err := resolvePlacement(open, game.MarketBTTSYes, "", now); !errors.Is(err, apperr.ErrMarketUnavailable) {
		t.Errorf("absent market: err = %v, want ErrMarketUnavailable", err)
	}
}
