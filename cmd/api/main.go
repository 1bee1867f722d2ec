package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/sportsbook-backend/internal/api"
	betrepo "github.com/radieske/sportsbook-backend/internal/bet/repo"
	gamecache "github.com/radieske/sportsbook-backend/internal/game/cache"
	gamerepo "github.com/radieske/sportsbook-backend/internal/game/repo"
	"github.com/radieske/sportsbook-backend/internal/producer"
	"github.com/radieske/sportsbook-backend/internal/services/betting"
	"github.com/radieske/sportsbook-backend/internal/services/games"
	"github.com/radieske/sportsbook-backend/internal/settlement"
	"github.com/radieske/sportsbook-backend/internal/shared/cache"
	"github.com/radieske/sportsbook-backend/internal/shared/config"
	"github.com/radieske/sportsbook-backend/internal/shared/db"
	"github.com/radieske/sportsbook-backend/internal/shared/kafka"
	"github.com/radieske/sportsbook-backend/internal/shared/logger"
	"github.com/radieske/sportsbook-backend/internal/shared/metrics"
	walletrepo "github.com/radieske/sportsbook-backend/internal/wallet/repo"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis (cache de odds)
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writers
	resultWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicGameResultRecorded)
	defer resultWriter.Close()
	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer settledWriter.Close()
	publ := producer.NewKafkaPublisher(resultWriter, settledWriter)

	// Repositórios
	gamesRepo := gamerepo.NewPostgres(pg)
	betsRepo := betrepo.NewPostgres(pg)
	walletsRepo := walletrepo.NewPostgres(pg)
	oddsCache := gamecache.New(rdb)

	// Serviços
	engine := settlement.NewEngine(log,
		settlement.NewPostgresStore(pg, gamesRepo, betsRepo, walletsRepo), publ)
	bettingSvc := betting.New(log, pg, gamesRepo, betsRepo, walletsRepo)
	gamesSvc := games.New(log, gamesRepo, oddsCache, engine, publ)

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	// HTTP público
	srv := api.NewServer(log, bettingSvc, gamesSvc, walletsRepo)
	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: srv.Router(),
	}

	log.Info("api listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
