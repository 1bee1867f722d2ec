package settlement

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/sportsbook-backend/internal/bet"
	"github.com/radieske/sportsbook-backend/internal/game"
	"github.com/radieske/sportsbook-backend/internal/shared/apperr"
	"github.com/radieske/sportsbook-backend/internal/shared/metrics"
	"github.com/radieske/sportsbook-backend/pkg/contracts/events"
)

// Store define o que o motor precisa da camada de persistência.
// SettleWager é a unidade atômica por aposta: transição de status via
// compare-and-set mais crédito de prêmio na mesma transação. Retorna
// applied=false quando a aposta já saiu de pending — nesse caso nada
// foi escrito.
type Store interface {
	Game(ctx context.Context, gameID string) (*game.Game, error)
	PendingWagers(ctx context.Context, gameID string) ([]*bet.Wager, error)
	SettleWager(ctx context.Context, w *bet.Wager, won bool, payoutCents int64, settledAt time.Time) (applied bool, err error)
}

// Publisher emite eventos de aposta liquidada (Kafka em produção)
type Publisher interface {
	PublishBetSettled(ctx context.Context, ev events.BetSettled) error
}

// WagerError falha individual de liquidação, coletada no relatório
type WagerError struct {
	BetID string `json:"bet_id"`
	Err   string `json:"error"`
}

// Report resultado de uma execução de liquidação para um jogo
type Report struct {
	GameID    string       `json:"game_id"`
	WonCount  int          `json:"won_count"`
	LostCount int          `json:"lost_count"`
	Errors    []WagerError `json:"errors,omitempty"`
}

// Engine avalia as apostas pendentes de um jogo finalizado e aplica
// os pagamentos. Cada aposta é uma unidade independente: a falha de uma
// não bloqueia as demais, e reexecutar a liquidação é seguro — apostas
// já terminais são puladas pelo compare-and-set.
type Engine struct {
	log   *zap.Logger
	store Store
	publ  Publisher // opcional
}

func NewEngine(log *zap.Logger, store Store, publ Publisher) *Engine {
	return &Engine{log: log, store: store, publ: publ}
}

// SettleGame executa a liquidação de todas as apostas pendentes do jogo.
// Pré-condição: jogo finished com resultado presente; caso contrário
// falha com ErrPreconditionFailed sem tocar em nenhuma aposta.
func (e *Engine) SettleGame(ctx context.Context, gameID string) (*Report, error) {
	g, err := e.store.Game(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.Status != game.StatusFinished || g.Result == nil {
		return nil, fmt.Errorf("%w: game %s has no final result", apperr.ErrPreconditionFailed, gameID)
	}

	wagers, err := e.store.PendingWagers(ctx, gameID)
	if err != nil {
		return nil, err
	}

	report := &Report{GameID: gameID}
	for _, w := range wagers {
		won := Evaluate(w.Outcome, g.Result)

		// Prêmio recalculado da odd travada na criação; edições
		// posteriores do catálogo não mudam o valor devido.
		var payout int64
		if won {
			payout = bet.PayoutCents(w.StakeCents, w.Outcome.Odds)
		}

		applied, err := e.store.SettleWager(ctx, w, won, payout, time.Now().UTC())
		if err != nil {
			metrics.SettlementErrors.Inc()
			e.log.Error("settle wager",
				zap.String("betId", w.ID),
				zap.String("gameId", gameID),
				zap.Error(err))
			report.Errors = append(report.Errors, WagerError{BetID: w.ID, Err: err.Error()})
			continue
		}
		if !applied {
			// corrida com outra liquidação ou cancelamento; nada a pagar
			e.log.Debug("wager already terminal", zap.String("betId", w.ID))
			continue
		}

		status := bet.StatusLost
		if won {
			status = bet.StatusWon
			report.WonCount++
		} else {
			report.LostCount++
		}
		metrics.BetsSettled.WithLabelValues(string(status)).Inc()

		if e.publ != nil {
			_ = e.publ.PublishBetSettled(ctx, events.BetSettled{
				BetID:       w.ID,
				UserID:      w.UserID,
				GameID:      gameID,
				Status:      string(status),
				PayoutCents: payout,
				Ts:          time.Now().UTC(),
			})
		}
	}

	e.log.Info("settlement finished",
		zap.String("gameId", gameID),
		zap.Int("won", report.WonCount),
		zap.Int("lost", report.LostCount),
		zap.Int("errors", len(report.Errors)))

	return report, nil
}
