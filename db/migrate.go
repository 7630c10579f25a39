package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationNames возвращает имена встроенных миграций в порядке применения.
func MigrationNames() ([]string, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Migrate применяет встроенные SQL-миграции по порядку имен (001_..., 002_...).
// Миграции написаны идемпотентно (IF NOT EXISTS), поэтому повторный запуск безопасен.
func Migrate(ctx context.Context, db *sql.DB) error {
	names, err := MigrationNames()
	if err != nil {
		return err
	}
	for _, name := range names {
		script, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err = db.ExecContext(ctx, string(script)); err != nil {
			return fmt.Errorf("execute migration %s: %w", name, err)
		}
		slog.Info("migration applied", slog.String("name", name))
	}
	return nil
}
