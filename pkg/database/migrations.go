package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"bloodlink/pkg/logger"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

// Migrator применяет встроенные goose миграции
type Migrator struct {
	db         *sql.DB
	dialect    string
	migrations fs.FS
	dir        string
}

// NewMigrator создаёт мигратор поверх database/sql соединения
func NewMigrator(db *sql.DB, dialect string, migrations fs.FS, dir string) *Migrator {
	return &Migrator{
		db:         db,
		dialect:    dialect,
		migrations: migrations,
		dir:        dir,
	}
}

// NewPostgresMigrator оборачивает pgx пул в *sql.DB для goose
func NewPostgresMigrator(pool *pgxpool.Pool, migrations fs.FS, dir string) *Migrator {
	return NewMigrator(stdlib.OpenDBFromPool(pool), DialectPostgres, migrations, dir)
}

func (m *Migrator) provider() (*goose.Provider, error) {
	var dialect goose.Dialect
	switch m.dialect {
	case DialectPostgres:
		dialect = goose.DialectPostgres
	case DialectSQLite:
		dialect = goose.DialectSQLite3
	default:
		return nil, fmt.Errorf("unsupported migration dialect %q", m.dialect)
	}

	sub, err := fs.Sub(m.migrations, m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations dir %s: %w", m.dir, err)
	}

	return goose.NewProvider(dialect, m.db, sub)
}

// Up применяет все миграции
func (m *Migrator) Up(ctx context.Context) error {
	p, err := m.provider()
	if err != nil {
		return err
	}

	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Log.Info("Migrations applied", "dialect", m.dialect, "applied", len(results))
	return nil
}

// Down откатывает последнюю миграцию
func (m *Migrator) Down(ctx context.Context) error {
	p, err := m.provider()
	if err != nil {
		return err
	}

	if _, err := p.Down(ctx); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	logger.Log.Info("Migration rolled back", "dialect", m.dialect)
	return nil
}

// Version возвращает текущую версию схемы
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	p, err := m.provider()
	if err != nil {
		return 0, err
	}
	return p.GetDBVersion(ctx)
}
