package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	betrepo "github.com/radieske/sportsbook-backend/internal/bet/repo"
	gamerepo "github.com/radieske/sportsbook-backend/internal/game/repo"
	"github.com/radieske/sportsbook-backend/internal/producer"
	"github.com/radieske/sportsbook-backend/internal/settlement"
	"github.com/radieske/sportsbook-backend/internal/shared/config"
	"github.com/radieske/sportsbook-backend/internal/shared/db"
	"github.com/radieske/sportsbook-backend/internal/shared/kafka"
	"github.com/radieske/sportsbook-backend/internal/shared/logger"
	"github.com/radieske/sportsbook-backend/internal/shared/metrics"
	walletrepo "github.com/radieske/sportsbook-backend/internal/wallet/repo"
	ev "github.com/radieske/sportsbook-backend/pkg/contracts/events"
)

// Worker de liquidação: consome game_result_recorded e reexecuta a
// liquidação do jogo. Como apostas já terminais são puladas pelo
// compare-and-set, reprocessar o mesmo evento é inofensivo — este é o
// caminho de retry para liquidações que falharam parcialmente na API.
func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicGameResultRecorded, "settlement-worker")
	defer reader.Close()

	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer settledWriter.Close()

	dlqWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicGameResultRecordedDLQ)
	defer dlqWriter.Close()

	gamesRepo := gamerepo.NewPostgres(pg)
	betsRepo := betrepo.NewPostgres(pg)
	walletsRepo := walletrepo.NewPostgres(pg)

	publ := producer.NewKafkaPublisher(nil, settledWriter)
	engine := settlement.NewEngine(log,
		settlement.NewPostgresStore(pg, gamesRepo, betsRepo, walletsRepo), publ)

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		return nil
	})

	log.Info("settlement-worker started", zap.String("consume", cfg.TopicGameResultRecorded))

	ctx := context.Background()

	for {
		key, value, err := kafka.ReadNext(ctx, reader)
		if err != nil {
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var recorded ev.GameResultRecorded
		if jerr := json.Unmarshal(value, &recorded); jerr != nil {
			log.Error("unmarshal game_result_recorded", zap.Error(jerr))
			_ = kafka.WriteJSON(ctx, dlqWriter, string(key), value)
			continue
		}

		if err := settleWithRetry(ctx, log, engine, recorded.GameID); err != nil {
			log.Error("settle game", zap.String("gameId", recorded.GameID), zap.Error(err))
			_ = kafka.WriteJSON(ctx, dlqWriter, recorded.GameID, value)
		}
	}
}

// settleWithRetry tenta a liquidação algumas vezes antes de desistir.
// Falhas individuais de aposta ficam no relatório e são cobertas pela
// próxima reexecução; só o erro de carga do jogo derruba a tentativa.
func settleWithRetry(ctx context.Context, log *zap.Logger, engine *settlement.Engine, gameID string) error {
	const retries = 3

	var lastErr error
	for i := 0; i < retries; i++ {
		if i > 0 {
			time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
		}

		report, err := engine.SettleGame(ctx, gameID)
		if err != nil {
			lastErr = err
			continue
		}

		if len(report.Errors) > 0 {
			log.Warn("settlement finished with errors",
				zap.String("gameId", gameID),
				zap.Int("errors", len(report.Errors)))
			lastErr = fmt.Errorf("%d wagers failed to settle", len(report.Errors))
			continue
		}

		return nil
	}
	return lastErr
}
