package repo

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/radieske/sportsbook-backend/internal/shared/apperr"
	"github.com/radieske/sportsbook-backend/internal/shared/db"
	"github.com/radieske/sportsbook-backend/internal/shared/pgtest"
	"github.com/radieske/sportsbook-backend/internal/wallet"
)

func ledgerSum(t *testing.T, d *sql.DB, walletID string) int64 {
	t.Helper()
	var sum int64
	err := d.QueryRow(`SELECT COALESCE(SUM(amount_cents), 0) FROM wallet_ledger WHERE wallet_id=$1`, walletID).Scan(&sum)
	require.NoError(t, err)
	return sum
}

func ledgerCount(t *testing.T, d *sql.DB, walletID string) int {
	t.Helper()
	var n int
	err := d.QueryRow(`SELECT COUNT(*) FROM wallet_ledger WHERE wallet_id=$1`, walletID).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestGetOrCreate_SeedsInitialBalance(t *testing.T) {
	d := pgtest.Connect(t)
	repo := NewPostgres(d)
	ctx := context.Background()

	w, err := repo.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, int64(wallet.InitialBalanceCents), w.BalanceCents)

	// o saldo inicial entra pelo extrato: saldo explicável desde a primeira linha
	require.Equal(t, w.BalanceCents, ledgerSum(t, d, w.ID))
	require.Equal(t, 1, ledgerCount(t, d, w.ID))

	// segunda chamada devolve a mesma carteira, sem nova semeadura
	again, err := repo.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, w.ID, again.ID)
	require.Equal(t, 1, ledgerCount(t, d, w.ID))
}

func TestGetOrCreate_ConcurrentSameUser(t *testing.T) {
	d := pgtest.Connect(t)
	repo := NewPostgres(d)

	const callers = 4
	ids := make([]string, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w, err := repo.GetOrCreate(context.Background(), "u-race")
			if err == nil {
				ids[i] = w.ID
			}
			errs[i] = err
		}(i)
	}
	wg.Wait()

	// todos recebem a mesma carteira; nenhum vê o conflito de unicidade
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, ids[0], ids[i])
	}
	require.Equal(t, 1, ledgerCount(t, d, ids[0]))
}

func TestApplyTransactionTx_KeepsLedgerSumInvariant(t *testing.T) {
	d := pgtest.Connect(t)
	repo := NewPostgres(d)
	ctx := context.Background()

	w, err := repo.GetOrCreate(ctx, "u1")
	require.NoError(t, err)

	steps := []struct {
		txType wallet.TxType
		amount int64
	}{
		{wallet.TxDeposit, 5000},
		{wallet.TxBet, -30000},
		{wallet.TxWin, 54000},
		{wallet.TxBet, -100000},
		{wallet.TxWithdrawal, 30000}, // estorno
	}

	for _, st := range steps {
		err := db.WithTx(ctx, d, func(tx *sql.Tx) error {
			_, err := repo.ApplyTransactionTx(ctx, tx, "u1", st.txType, st.amount, "test")
			return err
		})
		require.NoError(t, err)

		// após qualquer operação, saldo == soma do extrato
		balance, err := repo.Balance(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, ledgerSum(t, d, w.ID), balance)
	}
}

func TestApplyTransactionTx_InsufficientFundsNoPartialState(t *testing.T) {
	d := pgtest.Connect(t)
	repo := NewPostgres(d)
	ctx := context.Background()

	w, err := repo.GetOrCreate(ctx, "u1")
	require.NoError(t, err)

	before := ledgerCount(t, d, w.ID)
	err = db.WithTx(ctx, d, func(tx *sql.Tx) error {
		_, err := repo.ApplyTransactionTx(ctx, tx, "u1", wallet.TxBet,
			-(wallet.InitialBalanceCents + 1), "overdraft attempt")
		return err
	})
	require.ErrorIs(t, err, apperr.ErrInsufficientFunds)

	// nada foi escrito: nem saldo, nem extrato
	balance, err := repo.Balance(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, int64(wallet.InitialBalanceCents), balance)
	require.Equal(t, before, ledgerCount(t, d, w.ID))
}

func TestApplyTransactionTx_UnknownWallet(t *testing.T) {
	d := pgtest.Connect(t)
	repo := NewPostgres(d)
	ctx := context.Background()

	err := db.WithTx(ctx, d, func(tx *sql.Tx) error {
		_, err := repo.ApplyTransactionTx(ctx, tx, "ghost", wallet.TxDeposit, 1000, "test")
		return err
	})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
