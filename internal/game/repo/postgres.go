package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/radieske/sportsbook-backend/internal/game"
	"github.com/radieske/sportsbook-backend/internal/shared/apperr"
)

// Postgres implementa operações de persistência de jogos em banco Postgres
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de jogos
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Create insere um novo jogo com status scheduled e catálogo de odds
func (p *Postgres) Create(ctx context.Context, g *game.Game) (string, error) {
	oddsJSON, err := json.Marshal(g.Odds)
	if err != nil {
		return "", fmt.Errorf("marshal odds: %w", err)
	}

	id := uuid.NewString()
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO games (id, home_team, away_team, sport, start_time, status, odds)
		VALUES ($1,$2,$3,$4,$5,'scheduled',$6)`,
		id, g.HomeTeam, g.AwayTeam, g.Sport, g.StartTime, oddsJSON,
	)
	if err != nil {
		return "", fmt.Errorf("%w: insert game: %v", apperr.ErrPersistence, err)
	}
	return id, nil
}

// Get carrega um jogo pelo id, incluindo catálogo de odds e resultado
func (p *Postgres) Get(ctx context.Context, id string) (*game.Game, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, home_team, away_team, sport, start_time, status, odds, result, created_at, updated_at
		FROM games WHERE id=$1`, id)
	return scanGame(row)
}

// List retorna jogos, opcionalmente filtrados por status e esporte
func (p *Postgres) List(ctx context.Context, status game.Status, sport string) ([]*game.Game, error) {
	q := `
		SELECT id, home_team, away_team, sport, start_time, status, odds, result, created_at, updated_at
		FROM games WHERE 1=1`
	args := []any{}
	if status != "" {
		args = append(args, status)
		q += fmt.Sprintf(" AND status=$%d", len(args))
	}
	if sport != "" {
		args = append(args, sport)
		q += fmt.Sprintf(" AND sport=$%d", len(args))
	}
	q += " ORDER BY start_time"

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list games: %v", apperr.ErrPersistence, err)
	}
	defer rows.Close()

	var out []*game.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// UpdateOdds substitui o catálogo de odds de um jogo ainda não finalizado.
// Apostas já criadas não são afetadas: a odd foi copiada na criação.
func (p *Postgres) UpdateOdds(ctx context.Context, id string, odds game.OddsCatalog) error {
	oddsJSON, err := json.Marshal(odds)
	if err != nil {
		return fmt.Errorf("marshal odds: %w", err)
	}

	res, err := p.db.ExecContext(ctx, `
		UPDATE games SET odds=$1, updated_at=NOW()
		WHERE id=$2 AND status IN ('scheduled','live')`,
		oddsJSON, id)
	if err != nil {
		return fmt.Errorf("%w: update odds: %v", apperr.ErrPersistence, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", apperr.ErrPersistence, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: game not open for odds update", apperr.ErrStateConflict)
	}
	return nil
}

// RecordResult grava o resultado final e transiciona o jogo para finished.
// A condição de status na cláusula WHERE torna a transição one-way: um
// segundo registro de resultado falha com conflito de estado.
func (p *Postgres) RecordResult(ctx context.Context, id string, r *game.Result) error {
	resultJSON, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	res, err := p.db.ExecContext(ctx, `
		UPDATE games SET status='finished', result=$1, updated_at=NOW()
		WHERE id=$2 AND status IN ('scheduled','live')`,
		resultJSON, id)
	if err != nil {
		return fmt.Errorf("%w: record result: %v", apperr.ErrPersistence, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", apperr.ErrPersistence, err)
	}
	if n == 0 {
		// jogo inexistente ou já finalizado/cancelado
		if _, gerr := p.Get(ctx, id); gerr != nil {
			return gerr
		}
		return fmt.Errorf("%w: result already recorded or game canceled", apperr.ErrStateConflict)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*game.Game, error) {
	var (
		g          game.Game
		oddsJSON   []byte
		resultJSON []byte
		status     string
	)
	err := row.Scan(&g.ID, &g.HomeTeam, &g.AwayTeam, &g.Sport, &g.StartTime,
		&status, &oddsJSON, &resultJSON, &g.CreatedAt, &g.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: game", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan game: %v", apperr.ErrPersistence, err)
	}

	g.Status = game.Status(status)
	if err := json.Unmarshal(oddsJSON, &g.Odds); err != nil {
		return nil, fmt.Errorf("unmarshal odds: %w", err)
	}
	if len(resultJSON) > 0 {
		var r game.Result
		if err := json.Unmarshal(resultJSON, &r); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		g.Result = &r
	}

	return &g, nil
}
