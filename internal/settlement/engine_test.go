package settlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/sportsbook-backend/internal/bet"
	"github.com/radieske/sportsbook-backend/internal/game"
	"github.com/radieske/sportsbook-backend/internal/shared/apperr"
	"github.com/radieske/sportsbook-backend/pkg/contracts/events"
)

type fakeStore struct {
	game    *game.Game
	gameErr error
	wagers  []*bet.Wager

	settled    map[string]int64 // betID -> prêmio aplicado
	alreadyOut map[string]bool  // apostas que outra execução já liquidou
	failOn     map[string]error
}

func (f *fakeStore) Game(_ context.Context, _ string) (*game.Game, error) {
	if f.gameErr != nil {
		return nil, f.gameErr
	}
	return f.game, nil
}

func (f *fakeStore) PendingWagers(_ context.Context, _ string) ([]*bet.Wager, error) {
	return f.wagers, nil
}

func (f *fakeStore) SettleWager(_ context.Context, w *bet.Wager, won bool, payoutCents int64, _ time.Time) (bool, error) {
	if err, ok := f.failOn[w.ID]; ok {
		return false, err
	}
	if f.alreadyOut[w.ID] {
		return false, nil
	}
	if f.settled == nil {
		f.settled = map[string]int64{}
	}
	f.settled[w.ID] = payoutCents
	return true, nil
}

type fakePublisher struct {
	events []events.BetSettled
}

func (f *fakePublisher) PublishBetSettled(_ context.Context, ev events.BetSettled) error {
	f.events = append(f.events, ev)
	return nil
}

func finishedGame(res *game.Result) *game.Game {
	return &game.Game{ID: "g1", Status: game.StatusFinished, Result: res}
}

func pendingWager(id string, mkt game.MarketType, value string, odds float64, stake int64) *bet.Wager {
	return &bet.Wager{
		ID:         id,
		UserID:     "u1",
		GameID:     "g1",
		Outcome:    bet.Selection{Type: mkt, Value: value, Odds: odds},
		StakeCents: stake,
		Status:     bet.StatusPending,
	}
}

func TestSettleGame_PaysWinnersFromLockedOdds(t *testing.T) {
	store := &fakeStore{
		game: finishedGame(result(game.OutcomeHomeWin, 2, 0)),
		wagers: []*bet.Wager{
			pendingWager("b1", game.MarketHomeWin, "", 2.50, 2000),
			pendingWager("b2", game.MarketAwayWin, "", 3.00, 1000),
			pendingWager("b3", game.MarketOver15, "", 1.80, 1500),
		},
	}
	publ := &fakePublisher{}
	eng := NewEngine(zap.NewNop(), store, publ)

	report, err := eng.SettleGame(context.Background(), "g1")
	require.NoError(t, err)

	require.Equal(t, 2, report.WonCount)
	require.Equal(t, 1, report.LostCount)
	require.Empty(t, report.Errors)

	// prêmio vem da odd travada na criação, recalculado em centavos
	require.Equal(t, int64(5000), store.settled["b1"])
	require.Equal(t, int64(0), store.settled["b2"])
	require.Equal(t, int64(2700), store.settled["b3"])

	require.Len(t, publ.events, 3)
}

func TestSettleGame_RequiresFinalResult(t *testing.T) {
	eng := NewEngine(zap.NewNop(), &fakeStore{
		game: &game.Game{ID: "g1", Status: game.StatusLive},
	}, nil)

	_, err := eng.SettleGame(context.Background(), "g1")
	require.ErrorIs(t, err, apperr.ErrPreconditionFailed)

	// finished mas sem resultado gravado também não liquida
	eng = NewEngine(zap.NewNop(), &fakeStore{
		game: &game.Game{ID: "g1", Status: game.StatusFinished},
	}, nil)
	_, err = eng.SettleGame(context.Background(), "g1")
	require.ErrorIs(t, err, apperr.ErrPreconditionFailed)
}

func TestSettleGame_GameLookupError(t *testing.T) {
	boom := errors.New("pq: connection reset")
	eng := NewEngine(zap.NewNop(), &fakeStore{gameErr: boom}, nil)

	_, err := eng.SettleGame(context.Background(), "g1")
	require.ErrorIs(t, err, boom)
}

func TestSettleGame_SkipsAlreadyTerminal(t *testing.T) {
	store := &fakeStore{
		game: finishedGame(result(game.OutcomeHomeWin, 1, 0)),
		wagers: []*bet.Wager{
			pendingWager("b1", game.MarketHomeWin, "", 2.0, 1000),
			pendingWager("b2", game.MarketHomeWin, "", 2.0, 1000),
		},
		alreadyOut: map[string]bool{"b1": true},
	}
	publ := &fakePublisher{}
	eng := NewEngine(zap.NewNop(), store, publ)

	report, err := eng.SettleGame(context.Background(), "g1")
	require.NoError(t, err)

	// b1 já saiu de pending em outra execução: pulada, sem pagamento duplo
	require.Equal(t, 1, report.WonCount)
	require.NotContains(t, store.settled, "b1")
	require.Len(t, publ.events, 1)
	require.Equal(t, "b2", publ.events[0].BetID)
}

func TestSettleGame_CollectsPerWagerErrors(t *testing.T) {
	store := &fakeStore{
		game: finishedGame(result(game.OutcomeDraw, 0, 0)),
		wagers: []*bet.Wager{
			pendingWager("b1", game.MarketDraw, "", 3.0, 1000),
			pendingWager("b2", game.MarketDraw, "", 3.0, 1000),
			pendingWager("b3", game.MarketHomeWin, "", 2.0, 1000),
		},
		failOn: map[string]error{"b2": errors.New("deadlock detected")},
	}
	eng := NewEngine(zap.NewNop(), store, nil)

	report, err := eng.SettleGame(context.Background(), "g1")
	require.NoError(t, err)

	// a falha de b2 vai para o relatório; as demais seguem normalmente
	require.Len(t, report.Errors, 1)
	require.Equal(t, "b2", report.Errors[0].BetID)
	require.Equal(t, 1, report.WonCount)
	require.Equal(t, 1, report.LostCount)
}

func TestSettleGame_NoPendingWagers(t *testing.T) {
	eng := NewEngine(zap.NewNop(), &fakeStore{
		game: finishedGame(result(game.OutcomeAwayWin, 0, 2)),
	}, nil)

	report, err := eng.SettleGame(context.Background(), "g1")
	require.NoError(t, err)
	require.Zero(t, report.WonCount)
	require.Zero(t, report.LostCount)
	require.Empty(t, report.Errors)
}
