package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/adverts"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/applications"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/escrow"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/scores"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestNewPostgresRepositoryManager_ReturnsInterface(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m, err := NewPostgresRepositoryManager(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var _ RepositoryManager = m
	var _ RepositoryManager = NewMemoryRepositoryManager()
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := &PostgresRepositoryManager{db: db}

	if a := m.Adverts(db); a == nil {
		t.Fatal("Adverts() nil")
	}
	if a := m.Applications(db); a == nil {
		t.Fatal("Applications() nil")
	}
	if e := m.Escrow(db); e == nil {
		t.Fatal("Escrow() nil")
	}
	if s := m.Scores(db); s == nil {
		t.Fatal("Scores() nil")
	}

	var _ adverts.Repository = m.Adverts(db)
	var _ applications.Repository = m.Applications(db)
	var _ escrow.Repository = m.Escrow(db)
	var _ scores.Repository = m.Scores(db)
}

func TestWithTx_CommitAndRollback(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()

	m := &PostgresRepositoryManager{db: db}

	mock.ExpectBegin()
	mock.ExpectCommit()
	if err := m.WithTx(context.Background(), func(ctx context.Context, r Repos) error {
		if r.Adverts == nil || r.Applications == nil || r.Escrow == nil || r.Scores == nil {
			return errors.New("missing repository")
		}
		return nil
	}); err != nil {
		t.Fatalf("WithTx error: %v", err)
	}

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()
	if err := m.WithTx(context.Background(), func(context.Context, Repos) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{db: db}
	if err := m.RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{db: db}
	if err := m.RunMigrations(context.Background()); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}
