package main

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/radieske/sportsbook-backend/internal/shared/config"
	"github.com/radieske/sportsbook-backend/internal/shared/db"
	"github.com/radieske/sportsbook-backend/internal/shared/logger"
	"github.com/radieske/sportsbook-backend/migrations"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("migrator", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	driver, err := postgres.WithInstance(pg, &postgres.Config{})
	if err != nil {
		log.Fatal("postgres driver", zap.Error(err))
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		log.Fatal("iofs source", zap.Error(err))
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		log.Fatal("migrate instance", zap.Error(err))
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal("migrate up", zap.Error(err))
	}

	log.Info("migrations applied")
}
