package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/samirrijal/geoexport/migrations"
)

// Migrate runs a goose command ("up", "down", "status", "redo", "reset")
// against the embedded migrations.
func Migrate(ctx context.Context, db *DB, command string) error {
	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch command {
	case "up":
		return goose.UpContext(ctx, sqlDB, ".")
	case "down":
		return goose.DownContext(ctx, sqlDB, ".")
	case "status":
		return goose.StatusContext(ctx, sqlDB, ".")
	case "redo":
		return goose.RedoContext(ctx, sqlDB, ".")
	case "reset":
		return goose.ResetContext(ctx, sqlDB, ".")
	}
	return fmt.Errorf("unknown migration command %q", command)
}
