package betting

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/sportsbook-backend/internal/bet"
	betrepo "github.com/radieske/sportsbook-backend/internal/bet/repo"
	"github.com/radieske/sportsbook-backend/internal/game"
	gamerepo "github.com/radieske/sportsbook-backend/internal/game/repo"
	"github.com/radieske/sportsbook-backend/internal/shared/apperr"
	"github.com/radieske/sportsbook-backend/internal/shared/db"
	"github.com/radieske/sportsbook-backend/internal/shared/metrics"
	"github.com/radieske/sportsbook-backend/internal/wallet"
	walletrepo "github.com/radieske/sportsbook-backend/internal/wallet/repo"
)

// Service é o controlador de ciclo de vida das apostas: criação,
// cancelamento e consulta, com as pré-condições de negócio e as
// unidades atômicas carteira+aposta.
type Service struct {
	log     *zap.Logger
	db      *sql.DB
	games   *gamerepo.Postgres
	bets    *betrepo.Postgres
	wallets *walletrepo.Postgres
}

func New(log *zap.Logger, d *sql.DB, games *gamerepo.Postgres, bets *betrepo.Postgres, wallets *walletrepo.Postgres) *Service {
	return &Service{log: log, db: d, games: games, bets: bets, wallets: wallets}
}

// validateStake primeira pré-condição da criação: stake positivo e acima
// do mínimo, checado antes mesmo de carregar o jogo
func validateStake(stakeCents int64) error {
	if stakeCents <= 0 {
		return fmt.Errorf("%w: stake must be greater than 0", apperr.ErrValidation)
	}
	if stakeCents < bet.MinStakeCents {
		return fmt.Errorf("%w: stake below minimum of %d cents", apperr.ErrValidation, bet.MinStakeCents)
	}
	return nil
}

// resolvePlacement valida as pré-condições dependentes do jogo, na ordem
// exigida (primeira falha vence), e resolve a odd que será travada na aposta.
func resolvePlacement(g *game.Game, mkt game.MarketType, value string, now time.Time) (float64, error) {
	if g.Status != game.StatusScheduled {
		return 0, fmt.Errorf("%w: game is not open for betting", apperr.ErrStateConflict)
	}
	if !g.StartTime.After(now) {
		return 0, fmt.Errorf("%w: game has already started", apperr.ErrStateConflict)
	}
	return g.Odds.ResolveOdd(mkt, value)
}

// PlaceBet cria uma aposta pendente, debitando o stake da carteira na
// mesma transação da criação: ou os dois acontecem, ou nenhum.
func (s *Service) PlaceBet(ctx context.Context, userID, gameID string, mkt game.MarketType, value string, stakeCents int64) (*bet.Wager, error) {
	if userID == "" || gameID == "" {
		return nil, fmt.Errorf("%w: userId and gameId are required", apperr.ErrValidation)
	}
	if err := validateStake(stakeCents); err != nil {
		return nil, err
	}

	g, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}

	odds, err := resolvePlacement(g, mkt, value, time.Now())
	if err != nil {
		return nil, err
	}

	// primeira aposta de um usuário pode chegar antes de qualquer chamada
	// de carteira; garante a carteira semeada antes do débito
	if _, err := s.wallets.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	w := &bet.Wager{
		UserID: userID,
		GameID: gameID,
		Outcome: bet.Selection{
			Type:  mkt,
			Value: value,
			Odds:  odds,
		},
		StakeCents:     stakeCents,
		PotentialCents: bet.PayoutCents(stakeCents, odds),
		Status:         bet.StatusPending,
	}

	err = db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		// débito e criação na mesma transação; o lock FOR UPDATE na
		// carteira serializa criações concorrentes do mesmo usuário
		if _, err := s.wallets.ApplyTransactionTx(ctx, tx, userID, wallet.TxBet,
			-stakeCents, fmt.Sprintf("bet on game %s (%s)", gameID, mkt)); err != nil {
			return err
		}
		_, err := s.bets.CreatePendingTx(ctx, tx, w)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.BetsPlaced.Inc()
	s.log.Info("bet placed",
		zap.String("betId", w.ID),
		zap.String("userId", userID),
		zap.String("gameId", gameID),
		zap.String("market", string(mkt)),
		zap.Int64("stakeCents", stakeCents),
		zap.Float64("odds", odds))

	// o wager já carrega id e timestamps da inserção; nenhuma releitura
	// após o commit, que poderia falhar para uma aposta de fato criada
	return w, nil
}

// CancelBet cancela uma aposta pendente antes do início do jogo e estorna
// o stake. Estorno e mudança de status são uma única unidade atômica; o
// compare-and-set protege contra corrida com a liquidação.
func (s *Service) CancelBet(ctx context.Context, betID, requesterID string, isAdmin bool) error {
	w, err := s.bets.Get(ctx, betID)
	if err != nil {
		return err
	}
	if w.UserID != requesterID && !isAdmin {
		return fmt.Errorf("%w: not the bet owner", apperr.ErrUnauthorized)
	}
	if w.Status != bet.StatusPending {
		return fmt.Errorf("%w: bet is %s, only pending bets can be cancelled", apperr.ErrStateConflict, w.Status)
	}

	g, err := s.games.Get(ctx, w.GameID)
	if err != nil {
		return err
	}
	// startTime é imutável: re-checar aqui equivale a re-checar no commit
	if !g.StartTime.After(time.Now()) {
		return fmt.Errorf("%w: game has already started", apperr.ErrStateConflict)
	}

	err = db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		ok, err := s.bets.CancelTx(ctx, tx, betID, time.Now().UTC())
		if err != nil {
			return err
		}
		if !ok {
			// liquidação venceu a corrida
			return fmt.Errorf("%w: bet already settled", apperr.ErrStateConflict)
		}
		_, err = s.wallets.ApplyTransactionTx(ctx, tx, w.UserID, wallet.TxWithdrawal,
			w.StakeCents, "refund: cancelled bet "+betID)
		return err
	})
	if err != nil {
		return err
	}

	metrics.BetsCancelled.Inc()
	s.log.Info("bet cancelled",
		zap.String("betId", betID),
		zap.String("requesterId", requesterID),
		zap.Bool("admin", isAdmin))

	return nil
}

// GetBet retorna uma aposta, visível apenas para o dono ou admin
func (s *Service) GetBet(ctx context.Context, betID, requesterID string, isAdmin bool) (*bet.Wager, error) {
	w, err := s.bets.Get(ctx, betID)
	if err != nil {
		return nil, err
	}
	if w.UserID != requesterID && !isAdmin {
		return nil, fmt.Errorf("%w: not the bet owner", apperr.ErrUnauthorized)
	}
	return w, nil
}

// ListBets lista as apostas do usuário com filtros e paginação
func (s *Service) ListBets(ctx context.Context, userID string, f betrepo.Filter, page, limit int) ([]*bet.Wager, int, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, f.Status)
	}
	return s.bets.ListByUser(ctx, userID, f, page, limit)
}

// Stats estatísticas agregadas de apostas do usuário
func (s *Service) Stats(ctx context.Context, userID string) (*bet.UserStats, error) {
	return s.bets.Stats(ctx, userID)
}
