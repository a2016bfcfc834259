package repository

import (
	"context"
	"fmt"
	"strings"

	"bloodlink/migrations"
	"bloodlink/pkg/config"
	"bloodlink/pkg/database"
)

// Driver тип хранилища журнала
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// New открывает хранилище по database.driver и при необходимости
// применяет миграции
func New(ctx context.Context, cfg *config.DatabaseConfig) (Repository, error) {
	switch Driver(strings.ToLower(cfg.Driver)) {
	case DriverMemory, "":
		return NewMemoryRepository(), nil

	case DriverPostgres, "postgresql":
		return newPostgres(ctx, cfg)

	case DriverSQLite:
		return newSQLite(ctx, cfg)

	default:
		return nil, fmt.Errorf("unsupported repository driver: %s", cfg.Driver)
	}
}

func newPostgres(ctx context.Context, cfg *config.DatabaseConfig) (Repository, error) {
	db, err := database.NewPostgresDB(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if cfg.MigrateOnStart {
		m := database.NewPostgresMigrator(db.Pool(), migrations.FS, migrations.PostgresDir)
		if err := m.Up(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}

	return NewPostgresRepository(db), nil
}

func newSQLite(ctx context.Context, cfg *config.DatabaseConfig) (Repository, error) {
	db, err := database.OpenSQLite(ctx, cfg.DSN())
	if err != nil {
		return nil, err
	}

	// у in-memory базы нет другой схемы, кроме той, что создадим сейчас
	if cfg.MigrateOnStart || cfg.DSN() == ":memory:" {
		m := database.NewMigrator(db, database.DialectSQLite, migrations.FS, migrations.SQLiteDir)
		if err := m.Up(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return NewSQLiteRepository(db), nil
}
