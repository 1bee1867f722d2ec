package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/sportsbook-backend/internal/shared/apperr"
	"github.com/radieske/sportsbook-backend/internal/shared/db"
	"github.com/radieske/sportsbook-backend/internal/shared/metrics"
	"github.com/radieske/sportsbook-backend/internal/wallet"
)

// Postgres implementa operações de carteira em banco.
// Toda mutação de saldo passa por ApplyTransactionTx: lock pessimista na
// linha da carteira, checagem de saldo e escrita no extrato na mesma
// transação, preservando o invariante saldo == soma do extrato.
type Postgres struct{ db *sql.DB }

func NewPostgres(d *sql.DB) *Postgres { return &Postgres{db: d} }

// GetOrCreate retorna a carteira de um usuário, criando-a se não existir.
// Carteira nova nasce com o saldo inicial registrado como depósito no
// extrato, para que o saldo seja sempre explicável pelas transações.
func (p *Postgres) GetOrCreate(ctx context.Context, userID string) (*wallet.Wallet, error) {
	var w wallet.Wallet
	err := db.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`SELECT id, user_id, balance_cents, version FROM wallets WHERE user_id=$1`,
			userID).Scan(&w.ID, &w.UserID, &w.BalanceCents, &w.Version)
		if err == nil {
			return nil
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("%w: get wallet: %v", apperr.ErrPersistence, err)
		}

		w = wallet.Wallet{
			ID:           uuid.NewString(),
			UserID:       userID,
			BalanceCents: wallet.InitialBalanceCents,
			Version:      1,
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO wallets(id, user_id, balance_cents, version) VALUES($1,$2,$3,1)
			 ON CONFLICT (user_id) DO NOTHING`,
			w.ID, userID, w.BalanceCents)
		if err != nil {
			return fmt.Errorf("%w: create wallet: %v", apperr.ErrPersistence, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: rows affected: %v", apperr.ErrPersistence, err)
		}
		if n == 0 {
			// corrida: outra transação criou a carteira primeiro
			if err := tx.QueryRowContext(ctx,
				`SELECT id, user_id, balance_cents, version FROM wallets WHERE user_id=$1`,
				userID).Scan(&w.ID, &w.UserID, &w.BalanceCents, &w.Version); err != nil {
				return fmt.Errorf("%w: get wallet after conflict: %v", apperr.ErrPersistence, err)
			}
			return nil
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO wallet_ledger(wallet_id, tx_type, amount_cents, description) VALUES($1,$2,$3,$4)`,
			w.ID, wallet.TxDeposit, wallet.InitialBalanceCents, "initial balance"); err != nil {
			return fmt.Errorf("%w: seed ledger: %v", apperr.ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// ApplyTransactionTx aplica uma transação de carteira dentro de uma
// transação SQL do chamador. Único caminho sancionado de mutação de saldo:
// débito de aposta, estorno de cancelamento, crédito de prêmio e depósito
// passam todos por aqui. amountCents é assinado; a operação falha com
// ErrInsufficientFunds antes de escrever qualquer coisa se o saldo
// resultante ficasse negativo.
func (p *Postgres) ApplyTransactionTx(ctx context.Context, tx *sql.Tx, userID string, txType wallet.TxType, amountCents int64, description string) (int64, error) {
	if !txType.Valid() {
		return 0, fmt.Errorf("%w: unknown transaction type %q", apperr.ErrValidation, txType)
	}

	var walletID string
	var balance int64
	err := tx.QueryRowContext(ctx,
		`SELECT id, balance_cents FROM wallets WHERE user_id=$1 FOR UPDATE`,
		userID).Scan(&walletID, &balance)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: wallet for user %s", apperr.ErrNotFound, userID)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: lock wallet: %v", apperr.ErrPersistence, err)
	}

	newBalance := balance + amountCents
	if newBalance < 0 {
		return 0, apperr.ErrInsufficientFunds
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE wallets SET balance_cents=$1, version=version+1 WHERE id=$2`,
		newBalance, walletID); err != nil {
		return 0, fmt.Errorf("%w: update balance: %v", apperr.ErrPersistence, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO wallet_ledger(wallet_id, tx_type, amount_cents, description) VALUES($1,$2,$3,$4)`,
		walletID, txType, amountCents, description); err != nil {
		return 0, fmt.Errorf("%w: append ledger: %v", apperr.ErrPersistence, err)
	}

	metrics.WalletTransactions.WithLabelValues(string(txType)).Inc()
	return newBalance, nil
}

// Deposit credita saldo avulso na carteira do usuário
func (p *Postgres) Deposit(ctx context.Context, userID string, amountCents int64, description string) (int64, error) {
	if amountCents <= 0 {
		return 0, fmt.Errorf("%w: deposit amount must be positive", apperr.ErrValidation)
	}

	var newBalance int64
	err := db.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		var err error
		newBalance, err = p.ApplyTransactionTx(ctx, tx, userID, wallet.TxDeposit, amountCents, description)
		return err
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Balance retorna o saldo corrente (sem lock; adequado para leitura)
func (p *Postgres) Balance(ctx context.Context, userID string) (int64, error) {
	var balance int64
	err := p.db.QueryRowContext(ctx,
		`SELECT balance_cents FROM wallets WHERE user_id=$1`, userID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: wallet for user %s", apperr.ErrNotFound, userID)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: get balance: %v", apperr.ErrPersistence, err)
	}
	return balance, nil
}

// TxFilter filtros opcionais do extrato
type TxFilter struct {
	Type wallet.TxType
	From *time.Time
	To   *time.Time
}

// ListTransactions retorna o extrato paginado, mais recente primeiro
func (p *Postgres) ListTransactions(ctx context.Context, userID string, f TxFilter, page, limit int) ([]wallet.Transaction, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	where := `w.user_id=$1`
	args := []any{userID}
	if f.Type != "" {
		args = append(args, f.Type)
		where += fmt.Sprintf(" AND l.tx_type=$%d", len(args))
	}
	if f.From != nil && f.To != nil {
		args = append(args, *f.From, *f.To)
		where += fmt.Sprintf(" AND l.created_at BETWEEN $%d AND $%d", len(args)-1, len(args))
	}

	var total int
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM wallet_ledger l
		JOIN wallets w ON w.id = l.wallet_id
		WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: count transactions: %v", apperr.ErrPersistence, err)
	}

	args = append(args, limit, (page-1)*limit)
	rows, err := p.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT l.id, l.wallet_id, l.tx_type, l.amount_cents, l.description, l.created_at
		FROM wallet_ledger l
		JOIN wallets w ON w.id = l.wallet_id
		WHERE %s
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list transactions: %v", apperr.ErrPersistence, err)
	}
	defer rows.Close()

	var out []wallet.Transaction
	for rows.Next() {
		var t wallet.Transaction
		if err := rows.Scan(&t.ID, &t.WalletID, &t.Type, &t.AmountCents, &t.Description, &t.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("%w: scan transaction: %v", apperr.ErrPersistence, err)
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

// Stats agrega o extrato em um resumo financeiro
func (p *Postgres) Stats(ctx context.Context, userID string) (*wallet.Stats, error) {
	var s wallet.Stats
	err := p.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN l.tx_type='deposit'    THEN l.amount_cents END), 0),
			COALESCE(SUM(CASE WHEN l.tx_type='withdrawal' THEN l.amount_cents END), 0),
			COALESCE(SUM(CASE WHEN l.tx_type='bet'        THEN ABS(l.amount_cents) END), 0),
			COALESCE(SUM(CASE WHEN l.tx_type='win'        THEN l.amount_cents END), 0)
		FROM wallet_ledger l
		JOIN wallets w ON w.id = l.wallet_id
		WHERE w.user_id=$1`, userID).
		Scan(&s.DepositsCents, &s.WithdrawalsCents, &s.BetAmountsCents, &s.WinningsCents)
	if err != nil {
		return nil, fmt.Errorf("%w: wallet stats: %v", apperr.ErrPersistence, err)
	}
	s.ProfitLossCents = s.WinningsCents - s.BetAmountsCents
	return &s, nil
}
