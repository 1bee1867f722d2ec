package betting

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/sportsbook-backend/internal/bet"
	betrepo "github.com/radieske/sportsbook-backend/internal/bet/repo"
	"github.com/radieske/sportsbook-backend/internal/game"
	gamerepo "github.com/radieske/sportsbook-backend/internal/game/repo"
	"github.com/radieske/sportsbook-backend/internal/shared/apperr"
	"github.com/radieske/sportsbook-backend/internal/shared/pgtest"
	"github.com/radieske/sportsbook-backend/internal/wallet"
	walletrepo "github.com/radieske/sportsbook-backend/internal/wallet/repo"
)

func newTestService(t *testing.T) (*Service, *sql.DB, *walletrepo.Postgres) {
	t.Helper()
	d := pgtest.Connect(t)
	wallets := walletrepo.NewPostgres(d)
	svc := New(zap.NewNop(), d, gamerepo.NewPostgres(d), betrepo.NewPostgres(d), wallets)
	return svc, d, wallets
}

func newOpenGame(t *testing.T, d *sql.DB) string {
	t.Helper()
	odd := 2.0
	id, err := gamerepo.NewPostgres(d).Create(context.Background(), &game.Game{
		HomeTeam:  "Alfa",
		AwayTeam:  "Beta",
		Sport:     "football",
		StartTime: time.Now().Add(24 * time.Hour),
		Odds:      game.OddsCatalog{HomeWin: &odd},
	})
	require.NoError(t, err)
	return id
}

func userLedger(t *testing.T, d *sql.DB, userID string) (sum int64, count int) {
	t.Helper()
	err := d.QueryRow(`
		SELECT COALESCE(SUM(l.amount_cents), 0), COUNT(*)
		FROM wallet_ledger l JOIN wallets w ON w.id = l.wallet_id
		WHERE w.user_id=$1`, userID).Scan(&sum, &count)
	require.NoError(t, err)
	return sum, count
}

func TestPlaceBet_FreshUserGetsSeededWallet(t *testing.T) {
	svc, d, wallets := newTestService(t)
	gameID := newOpenGame(t, d)
	ctx := context.Background()

	// nenhuma chamada de carteira antes: a primeira interação é a aposta
	w, err := svc.PlaceBet(ctx, "novato", gameID, game.MarketHomeWin, "", 2000)
	require.NoError(t, err)
	require.Equal(t, bet.StatusPending, w.Status)

	balance, err := wallets.Balance(ctx, "novato")
	require.NoError(t, err)
	require.Equal(t, int64(wallet.InitialBalanceCents-2000), balance)

	// extrato: semeadura inicial + débito da aposta, e soma == saldo
	sum, count := userLedger(t, d, "novato")
	require.Equal(t, balance, sum)
	require.Equal(t, 2, count)
}

func TestPlaceBet_ReturnsPersistedWager(t *testing.T) {
	svc, d, _ := newTestService(t)
	gameID := newOpenGame(t, d)
	ctx := context.Background()

	w, err := svc.PlaceBet(ctx, "u1", gameID, game.MarketHomeWin, "", 2000)
	require.NoError(t, err)
	require.NotEmpty(t, w.ID)
	require.False(t, w.CreatedAt.IsZero())

	stored, err := betrepo.NewPostgres(d).Get(ctx, w.ID)
	require.NoError(t, err)
	require.Equal(t, w.UserID, stored.UserID)
	require.Equal(t, w.GameID, stored.GameID)
	require.Equal(t, w.StakeCents, stored.StakeCents)
	require.Equal(t, w.PotentialCents, stored.PotentialCents)
	require.Equal(t, w.Outcome, stored.Outcome)
	require.Equal(t, w.Status, stored.Status)
}

func TestPlaceBet_InsufficientFundsNoPartialState(t *testing.T) {
	svc, d, wallets := newTestService(t)
	gameID := newOpenGame(t, d)
	ctx := context.Background()

	_, err := svc.PlaceBet(ctx, "u1", gameID, game.MarketHomeWin, "",
		wallet.InitialBalanceCents+1)
	require.ErrorIs(t, err, apperr.ErrInsufficientFunds)

	// saldo intacto e nenhuma aposta criada
	balance, err := wallets.Balance(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, int64(wallet.InitialBalanceCents), balance)

	var bets int
	require.NoError(t, d.QueryRow(`SELECT COUNT(*) FROM bets WHERE user_id='u1'`).Scan(&bets))
	require.Zero(t, bets)

	sum, count := userLedger(t, d, "u1")
	require.Equal(t, balance, sum)
	require.Equal(t, 1, count) // apenas a semeadura inicial
}

func TestPlaceBet_ConcurrentDebitsNeverOvershoot(t *testing.T) {
	svc, d, wallets := newTestService(t)
	gameID := newOpenGame(t, d)
	ctx := context.Background()

	// saldo 1000.00 comporta no máximo 3 apostas de 300.00
	const stake = 30000
	const racers = 5
	errs := make([]error, racers)

	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.PlaceBet(ctx, "u1", gameID, game.MarketHomeWin, "", stake)
		}(i)
	}
	wg.Wait()

	placed := 0
	for _, err := range errs {
		if err == nil {
			placed++
			continue
		}
		require.ErrorIs(t, err, apperr.ErrInsufficientFunds)
	}
	require.Equal(t, 3, placed)

	balance, err := wallets.Balance(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, int64(wallet.InitialBalanceCents-3*stake), balance)

	sum, _ := userLedger(t, d, "u1")
	require.Equal(t, balance, sum)
}

func TestCancelBet_RefundsAtomically(t *testing.T) {
	svc, d, wallets := newTestService(t)
	gameID := newOpenGame(t, d)
	ctx := context.Background()

	w, err := svc.PlaceBet(ctx, "u1", gameID, game.MarketHomeWin, "", 5000)
	require.NoError(t, err)

	require.NoError(t, svc.CancelBet(ctx, w.ID, "u1", false))

	balance, err := wallets.Balance(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, int64(wallet.InitialBalanceCents), balance)

	sum, _ := userLedger(t, d, "u1")
	require.Equal(t, balance, sum)

	stored, err := betrepo.NewPostgres(d).Get(ctx, w.ID)
	require.NoError(t, err)
	require.Equal(t, bet.StatusCancelled, stored.Status)

	// segundo cancelamento não encontra aposta pendente
	err = svc.CancelBet(ctx, w.ID, "u1", false)
	require.ErrorIs(t, err, apperr.ErrStateConflict)
}
