package database

import (
	"context"
	"fmt"

	entschema "entgo.io/ent/dialect/sql/schema"
	"github.com/eslsoft/vocabook/internal/infrastructure/database/schema"
)

// Migrate creates any missing book tables, indexes and foreign keys.
func Migrate(ctx context.Context, db *DB) error {
	migrate, err := entschema.NewMigrate(db.Driver(), entschema.WithForeignKeys(true))
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	if err := migrate.Create(ctx, schema.Tables...); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
