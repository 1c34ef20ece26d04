// Package repomanager provides RepositoryManager implementations for
// PostgreSQL and for an in-process store, wiring together repository
// constructors, transactions and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/hireledger/internal/dbx"
	"github.com/dmitrijs2005/hireledger/internal/server/migrations"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/adverts"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/applications"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/escrow"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/scores"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories bound to a
// serializable transaction.
type PostgresRepositoryManager struct {
	db *sql.DB
}

// Adverts returns an adverts.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Adverts(db dbx.DBTX) adverts.Repository {
	return adverts.NewPostgresRepository(db)
}

// Applications returns an applications.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Applications(db dbx.DBTX) applications.Repository {
	return applications.NewPostgresRepository(db)
}

// Escrow returns an escrow.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Escrow(db dbx.DBTX) escrow.Repository {
	return escrow.NewPostgresRepository(db)
}

// Scores returns a scores.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Scores(db dbx.DBTX) scores.Repository {
	return scores.NewPostgresRepository(db)
}

// WithTx runs fn in a serializable transaction.
func (m *PostgresRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	return dbx.WithTx(ctx, m.db, dbx.Serializable, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, Repos{
			Adverts:      m.Adverts(tx),
			Applications: m.Applications(tx),
			Escrow:       m.Escrow(tx),
			Scores:       m.Scores(tx),
		})
	})
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		return err
	}
	return nil
}

func (m *PostgresRepositoryManager) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager(db *sql.DB) (*PostgresRepositoryManager, error) {
	return &PostgresRepositoryManager{db: db}, nil
}

// OpenPostgres opens a pgx connection pool for dsn.
func OpenPostgres(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}
