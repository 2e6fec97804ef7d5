package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// Tables lists every table in dependency order (parents first).
var Tables = []string{"users", "categories", "products", "carts", "cart_items", "orders", "order_items"}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("could not apply schema: %w", err)
	}
	return nil
}

// Reset drops every table and re-applies the schema.
func Reset(ctx context.Context, db *sql.DB) error {
	for i := len(Tables) - 1; i >= 0; i-- {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", Tables[i])); err != nil {
			return fmt.Errorf("could not drop table %s: %w", Tables[i], err)
		}
	}
	return Migrate(ctx, db)
}

// Schema returns the embedded DDL.
func Schema() string {
	return schemaSQL
}
