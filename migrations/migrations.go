// Package migrations встраивает goose миграции истории запросов.
package migrations

import "embed"

// Каталоги внутри FS: "postgres" и "sqlite".
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)
