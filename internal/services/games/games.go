package games

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/sportsbook-backend/internal/game"
	gamecache "github.com/radieske/sportsbook-backend/internal/game/cache"
	gamerepo "github.com/radieske/sportsbook-backend/internal/game/repo"
	"github.com/radieske/sportsbook-backend/internal/settlement"
	"github.com/radieske/sportsbook-backend/internal/shared/apperr"
	"github.com/radieske/sportsbook-backend/pkg/contracts/events"
)

// Publisher emite o evento de resultado registrado (Kafka em produção)
type Publisher interface {
	PublishGameResultRecorded(ctx context.Context, ev events.GameResultRecorded) error
}

// Service concentra as operações de catálogo de jogos e o gatilho de
// liquidação: registrar resultado finaliza o jogo, publica o evento e
// invoca o motor imediatamente.
type Service struct {
	log    *zap.Logger
	repo   *gamerepo.Postgres
	cache  *gamecache.Cache // opcional
	engine *settlement.Engine
	publ   Publisher // opcional
}

func New(log *zap.Logger, repo *gamerepo.Postgres, cache *gamecache.Cache, engine *settlement.Engine, publ Publisher) *Service {
	return &Service{log: log, repo: repo, cache: cache, engine: engine, publ: publ}
}

// Create registra um novo jogo agendado com seu catálogo de odds
func (s *Service) Create(ctx context.Context, g *game.Game) (*game.Game, error) {
	if g.HomeTeam == "" || g.AwayTeam == "" || g.Sport == "" {
		return nil, fmt.Errorf("%w: homeTeam, awayTeam and sport are required", apperr.ErrValidation)
	}
	if g.StartTime.IsZero() || !g.StartTime.After(time.Now()) {
		return nil, fmt.Errorf("%w: startTime must be in the future", apperr.ErrValidation)
	}
	if err := g.Odds.Validate(); err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, g)
	if err != nil {
		return nil, err
	}
	s.log.Info("game created",
		zap.String("gameId", id),
		zap.String("home", g.HomeTeam),
		zap.String("away", g.AwayTeam),
		zap.String("sport", g.Sport))
	return s.repo.Get(ctx, id)
}

// Get carrega um jogo pelo id
func (s *Service) Get(ctx context.Context, id string) (*game.Game, error) {
	return s.repo.Get(ctx, id)
}

// List lista jogos, com filtros opcionais de status e esporte
func (s *Service) List(ctx context.Context, status game.Status, sport string) ([]*game.Game, error) {
	return s.repo.List(ctx, status, sport)
}

// GetOdds retorna o catálogo de odds de um jogo, com cache de leitura
// em Redis. Apostas nunca usam este caminho: a odd travada vem direto
// do catálogo persistido.
func (s *Service) GetOdds(ctx context.Context, gameID string) (*game.OddsCatalog, error) {
	if s.cache != nil {
		if odds, ok, err := s.cache.GetOdds(ctx, gameID); err == nil && ok {
			return odds, nil
		}
	}

	g, err := s.repo.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetOdds(ctx, gameID, &g.Odds)
	}
	return &g.Odds, nil
}

// UpdateOdds substitui o catálogo de um jogo aberto e invalida o cache.
// Apostas já feitas mantêm a odd copiada na criação.
func (s *Service) UpdateOdds(ctx context.Context, gameID string, odds game.OddsCatalog) error {
	if err := odds.Validate(); err != nil {
		return err
	}
	if err := s.repo.UpdateOdds(ctx, gameID, odds); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, gameID)
	}
	s.log.Info("odds updated", zap.String("gameId", gameID))
	return nil
}

// RecordResult grava o resultado final (transição one-way para finished),
// publica o evento e dispara a liquidação das apostas pendentes.
// O relatório retornado inclui as falhas individuais; reinvocar a
// liquidação para o mesmo jogo é seguro.
func (s *Service) RecordResult(ctx context.Context, gameID string, res *game.Result) (*settlement.Report, error) {
	if err := res.Validate(); err != nil {
		return nil, err
	}
	res.Derive()

	if err := s.repo.RecordResult(ctx, gameID, res); err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, gameID)
	}

	if s.publ != nil {
		_ = s.publ.PublishGameResultRecorded(ctx, events.GameResultRecorded{
			GameID:     gameID,
			Outcome:    string(res.Outcome),
			HomeScore:  res.HomeScore,
			AwayScore:  res.AwayScore,
			RecordedAt: time.Now().UTC(),
		})
	}

	s.log.Info("result recorded",
		zap.String("gameId", gameID),
		zap.String("outcome", string(res.Outcome)),
		zap.Int("homeScore", res.HomeScore),
		zap.Int("awayScore", res.AwayScore))

	return s.engine.SettleGame(ctx, gameID)
}

// Settle reexecuta a liquidação de um jogo já finalizado (caminho de retry)
func (s *Service) Settle(ctx context.Context, gameID string) (*settlement.Report, error) {
	return s.engine.SettleGame(ctx, gameID)
}
