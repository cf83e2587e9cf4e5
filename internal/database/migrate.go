package database

import (
	"context"
	"fmt"
)

// migrationStep is one idempotent schema change. check reports whether the
// step already applied; apply runs it. Steps run in order at startup and
// any failure is fatal to the process.
type migrationStep struct {
	name  string
	check func(ctx context.Context, db DBTX) (bool, error)
	apply func(ctx context.Context, db DBTX) error
}

func tableExists(table string) func(ctx context.Context, db DBTX) (bool, error) {
	return func(ctx context.Context, db DBTX) (bool, error) {
		var exists bool
		err := db.QueryRow(ctx,
			`SELECT EXISTS (
				SELECT 1 FROM information_schema.tables
				WHERE table_schema = 'public' AND table_name = $1
			)`, table,
		).Scan(&exists)
		return exists, err
	}
}

func columnExists(table, column string) func(ctx context.Context, db DBTX) (bool, error) {
	return func(ctx context.Context, db DBTX) (bool, error) {
		var exists bool
		err := db.QueryRow(ctx,
			`SELECT EXISTS (
				SELECT 1 FROM information_schema.columns
				WHERE table_schema = 'public' AND table_name = $1 AND column_name = $2
			)`, table, column,
		).Scan(&exists)
		return exists, err
	}
}

func execStep(sql string) func(ctx context.Context, db DBTX) error {
	return func(ctx context.Context, db DBTX) error {
		_, err := db.Exec(ctx, sql)
		return err
	}
}

var migrationSteps = []migrationStep{
	{
		name:  "create orders table",
		check: tableExists("orders"),
		apply: execStep(`
			CREATE TABLE orders (
				id               bigserial PRIMARY KEY,
				customer_name    text NOT NULL,
				product_line     text NOT NULL,
				item_name        text NOT NULL,
				milk             text,
				syrup            text,
				foam             text,
				temperature      text,
				meats            text,
				cheeses          text,
				extra_shot       boolean NOT NULL DEFAULT false,
				extra_topping    boolean NOT NULL DEFAULT false,
				extra_meat_count integer NOT NULL DEFAULT 0,
				notes            text,
				status           text NOT NULL DEFAULT 'pending'
					CHECK (status IN ('pending', 'in_progress', 'completed')),
				price            numeric(10,2) NOT NULL DEFAULT 0,
				created_at       timestamptz NOT NULL DEFAULT now()
			)`),
	},
	{
		name:  "create menu_items table",
		check: tableExists("menu_items"),
		apply: execStep(`
			CREATE TABLE menu_items (
				id         bigserial PRIMARY KEY,
				item_type  text NOT NULL,
				item_name  text NOT NULL,
				price      numeric(10,2),
				created_at timestamptz NOT NULL DEFAULT now()
			)`),
	},
	{
		// Additive column from the bilingual menu revision.
		name:  "add menu_items.name_ar",
		check: columnExists("menu_items", "name_ar"),
		apply: execStep(`ALTER TABLE menu_items ADD COLUMN name_ar text`),
	},
	{
		name:  "index orders by status",
		check: indexExists("orders_status_idx"),
		apply: execStep(`CREATE INDEX orders_status_idx ON orders (status, created_at DESC)`),
	},
	{
		name:  "index menu_items by category",
		check: indexExists("menu_items_type_name_idx"),
		apply: execStep(`CREATE INDEX menu_items_type_name_idx ON menu_items (item_type, item_name)`),
	},
}

func indexExists(index string) func(ctx context.Context, db DBTX) (bool, error) {
	return func(ctx context.Context, db DBTX) (bool, error) {
		var exists bool
		err := db.QueryRow(ctx,
			`SELECT EXISTS (
				SELECT 1 FROM pg_indexes
				WHERE schemaname = 'public' AND indexname = $1
			)`, index,
		).Scan(&exists)
		return exists, err
	}
}

// Migrate runs all pending schema steps in order. Each step checks the
// current schema state before acting, so re-running is always safe.
func Migrate(ctx context.Context, db DBTX) error {
	for _, step := range migrationSteps {
		applied, err := step.check(ctx, db)
		if err != nil {
			return fmt.Errorf("migration %q: check: %w", step.name, err)
		}
		if applied {
			continue
		}
		if err := step.apply(ctx, db); err != nil {
			return fmt.Errorf("migration %q: %w", step.name, err)
		}
	}
	return nil
}
