package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/restapp/backend/internal/db/migrations"
)

// Migrate applies the embedded SQL migrations through a database/sql view of the pool.
func (db *Postgres) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	conn := stdlib.OpenDBFromPool(db.Pool)
	defer conn.Close()

	if err := goose.UpContext(ctx, conn, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
