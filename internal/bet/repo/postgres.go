package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/sportsbook-backend/internal/bet"
	"github.com/radieske/sportsbook-backend/internal/shared/apperr"
)

// Postgres implementa operações de persistência de apostas em banco Postgres
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// CreatePendingTx insere uma nova aposta com status pending, dentro da
// transação do chamador (a mesma que debita a carteira). Preenche no
// wager o id gerado e os timestamps atribuídos pelo banco, de modo que o
// chamador não precise reler a linha depois do commit.
func (p *Postgres) CreatePendingTx(ctx context.Context, tx *sql.Tx, w *bet.Wager) (string, error) {
	id := uuid.NewString()
	err := tx.QueryRowContext(ctx, `
		INSERT INTO bets (id, user_id, game_id, outcome_type, outcome_value, odd_value, stake_cents, potential_cents, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,'pending')
		RETURNING created_at, updated_at`,
		id, w.UserID, w.GameID, w.Outcome.Type, nullIfEmpty(w.Outcome.Value),
		w.Outcome.Odds, w.StakeCents, w.PotentialCents,
	).Scan(&w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("%w: insert bet: %v", apperr.ErrPersistence, err)
	}
	w.ID = id
	return id, nil
}

// Get carrega uma aposta pelo id
func (p *Postgres) Get(ctx context.Context, id string) (*bet.Wager, error) {
	row := p.db.QueryRowContext(ctx, selectWager+` WHERE id=$1`, id)
	return scanWager(row)
}

// Filter filtros opcionais de listagem de apostas
type Filter struct {
	Status bet.Status
	GameID string
	From   *time.Time
	To     *time.Time
}

// ListByUser retorna as apostas de um usuário, filtradas e paginadas,
// mais recentes primeiro
func (p *Postgres) ListByUser(ctx context.Context, userID string, f Filter, page, limit int) ([]*bet.Wager, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	where := `user_id=$1`
	args := []any{userID}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND status=$%d", len(args))
	}
	if f.GameID != "" {
		args = append(args, f.GameID)
		where += fmt.Sprintf(" AND game_id=$%d", len(args))
	}
	if f.From != nil && f.To != nil {
		args = append(args, *f.From, *f.To)
		where += fmt.Sprintf(" AND settled_at BETWEEN $%d AND $%d", len(args)-1, len(args))
	}

	var total int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bets WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: count bets: %v", apperr.ErrPersistence, err)
	}

	args = append(args, limit, (page-1)*limit)
	rows, err := p.db.QueryContext(ctx, fmt.Sprintf(
		`%s WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		selectWager, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list bets: %v", apperr.ErrPersistence, err)
	}
	defer rows.Close()

	var out []*bet.Wager
	for rows.Next() {
		w, err := scanWager(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, w)
	}
	return out, total, rows.Err()
}

// ListPendingByGame retorna todas as apostas pendentes de um jogo,
// insumo do motor de liquidação
func (p *Postgres) ListPendingByGame(ctx context.Context, gameID string) ([]*bet.Wager, error) {
	rows, err := p.db.QueryContext(ctx, selectWager+` WHERE game_id=$1 AND status='pending' ORDER BY created_at`, gameID)
	if err != nil {
		return nil, fmt.Errorf("%w: list pending bets: %v", apperr.ErrPersistence, err)
	}
	defer rows.Close()

	var out []*bet.Wager
	for rows.Next() {
		w, err := scanWager(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// SettleTx transiciona pending→won/lost via compare-and-set, dentro da
// transação do chamador. Retorna false se a aposta já saiu de pending
// (liquidação concorrente ou cancelamento venceu a corrida); nesse caso
// nada foi escrito e o chamador não deve creditar prêmio.
func (p *Postgres) SettleTx(ctx context.Context, tx *sql.Tx, betID string, status bet.Status, actualCents int64, settledAt time.Time) (bool, error) {
	if status != bet.StatusWon && status != bet.StatusLost {
		return false, fmt.Errorf("%w: settle status must be won or lost", apperr.ErrValidation)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE bets SET status=$1, actual_cents=$2, settled_at=$3, updated_at=NOW()
		WHERE id=$4 AND status='pending'`,
		status, actualCents, settledAt, betID)
	if err != nil {
		return false, fmt.Errorf("%w: settle bet: %v", apperr.ErrPersistence, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: rows affected: %v", apperr.ErrPersistence, err)
	}
	return n == 1, nil
}

// CancelTx transiciona pending→cancelled via compare-and-set, dentro da
// transação do chamador (a mesma que credita o estorno)
func (p *Postgres) CancelTx(ctx context.Context, tx *sql.Tx, betID string, settledAt time.Time) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE bets SET status='cancelled', settled_at=$1, updated_at=NOW()
		WHERE id=$2 AND status='pending'`,
		settledAt, betID)
	if err != nil {
		return false, fmt.Errorf("%w: cancel bet: %v", apperr.ErrPersistence, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: rows affected: %v", apperr.ErrPersistence, err)
	}
	return n == 1, nil
}

// Stats agrega as apostas de um usuário em estatísticas de desempenho.
// Apostas canceladas ficam fora de totalStaked: o stake foi estornado.
func (p *Postgres) Stats(ctx context.Context, userID string) (*bet.UserStats, error) {
	var s bet.UserStats
	var avgOdds sql.NullFloat64
	err := p.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status='won'),
			COUNT(*) FILTER (WHERE status='lost'),
			COUNT(*) FILTER (WHERE status='pending'),
			COUNT(*) FILTER (WHERE status='cancelled'),
			COALESCE(SUM(stake_cents) FILTER (WHERE status <> 'cancelled'), 0),
			COALESCE(SUM(actual_cents) FILTER (WHERE status='won'), 0),
			AVG(odd_value)
		FROM bets WHERE user_id=$1`, userID).
		Scan(&s.TotalBets, &s.WonBets, &s.LostBets, &s.PendingBets, &s.CancelledBets,
			&s.TotalStaked, &s.TotalWon, &avgOdds)
	if err != nil {
		return nil, fmt.Errorf("%w: bet stats: %v", apperr.ErrPersistence, err)
	}

	if resolved := s.WonBets + s.LostBets; resolved > 0 {
		s.WinRate = float64(s.WonBets) / float64(resolved) * 100
	}
	s.ProfitLoss = s.TotalWon - s.TotalStaked
	if s.TotalStaked > 0 {
		s.ROI = float64(s.ProfitLoss) / float64(s.TotalStaked) * 100
	}
	if avgOdds.Valid {
		s.AvgOdds = avgOdds.Float64
	}
	return &s, nil
}

const selectWager = `
	SELECT id, user_id, game_id, outcome_type, outcome_value, odd_value,
	       stake_cents, potential_cents, actual_cents, status, settled_at, created_at, updated_at
	FROM bets`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWager(row rowScanner) (*bet.Wager, error) {
	var (
		w         bet.Wager
		value     sql.NullString
		settledAt sql.NullTime
		status    string
	)
	err := row.Scan(&w.ID, &w.UserID, &w.GameID, &w.Outcome.Type, &value, &w.Outcome.Odds,
		&w.StakeCents, &w.PotentialCents, &w.ActualCents, &status, &settledAt, &w.CreatedAt, &w.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: bet", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan bet: %v", apperr.ErrPersistence, err)
	}

	w.Status = bet.Status(status)
	if value.Valid {
		w.Outcome.Value = value.String
	}
	if settledAt.Valid {
		t := settledAt.Time
		w.SettledAt = &t
	}
	return &w, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
