package settlement

import (
	"context"
	"database/sql"
	"time"

	"github.com/radieske/sportsbook-backend/internal/bet"
	betrepo "github.com/radieske/sportsbook-backend/internal/bet/repo"
	"github.com/radieske/sportsbook-backend/internal/game"
	gamerepo "github.com/radieske/sportsbook-backend/internal/game/repo"
	"github.com/radieske/sportsbook-backend/internal/shared/db"
	"github.com/radieske/sportsbook-backend/internal/wallet"
	walletrepo "github.com/radieske/sportsbook-backend/internal/wallet/repo"
)

// PostgresStore implementa Store sobre os repositórios Postgres.
type PostgresStore struct {
	db      *sql.DB
	games   *gamerepo.Postgres
	bets    *betrepo.Postgres
	wallets *walletrepo.Postgres
}

func NewPostgresStore(d *sql.DB, games *gamerepo.Postgres, bets *betrepo.Postgres, wallets *walletrepo.Postgres) *PostgresStore {
	return &PostgresStore{db: d, games: games, bets: bets, wallets: wallets}
}

func (s *PostgresStore) Game(ctx context.Context, gameID string) (*game.Game, error) {
	return s.games.Get(ctx, gameID)
}

func (s *PostgresStore) PendingWagers(ctx context.Context, gameID string) ([]*bet.Wager, error) {
	return s.bets.ListPendingByGame(ctx, gameID)
}

// SettleWager aplica a transição de status e o crédito do prêmio como uma
// única transação SQL. O compare-and-set decide: se a aposta já não está
// pending, a transação não escreve nada e applied=false.
func (s *PostgresStore) SettleWager(ctx context.Context, w *bet.Wager, won bool, payoutCents int64, settledAt time.Time) (bool, error) {
	applied := false
	err := db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		status := bet.StatusLost
		if won {
			status = bet.StatusWon
		}

		ok, err := s.bets.SettleTx(ctx, tx, w.ID, status, payoutCents, settledAt)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		applied = true

		if won {
			_, err = s.wallets.ApplyTransactionTx(ctx, tx, w.UserID, wallet.TxWin,
				payoutCents, "win: bet "+w.ID)
			return err
		}
		// derrota não movimenta carteira: o stake saiu na criação
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}
