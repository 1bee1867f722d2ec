// Package pgtest conecta os testes de integração a um Postgres real.
// Os testes que o usam são opt-in: sem TEST_POSTGRES_DSN eles são pulados.
package pgtest

import (
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/radieske/sportsbook-backend/migrations"
)

// Connect abre a conexão de teste, aplica as migrações e limpa as tabelas.
// Pula o teste quando TEST_POSTGRES_DSN não está definido.
func Connect(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	d, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	if err := d.Ping(); err != nil {
		t.Fatalf("ping postgres: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	migrateUp(t, d)

	// cada teste parte de tabelas vazias
	if _, err := d.Exec(`TRUNCATE bets, wallet_ledger, wallets, games CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return d
}

func migrateUp(t *testing.T, d *sql.DB) {
	t.Helper()

	driver, err := postgres.WithInstance(d, &postgres.Config{})
	if err != nil {
		t.Fatalf("postgres driver: %v", err)
	}
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		t.Fatalf("iofs source: %v", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		t.Fatalf("migrate instance: %v", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("migrate up: %v", err)
	}
}
