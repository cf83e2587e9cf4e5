package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const menuItemColumns = `id, item_type, item_name, name_ar, price, created_at`

func scanMenuItem(row pgx.Row) (MenuItem, error) {
	var m MenuItem
	err := row.Scan(&m.ID, &m.ItemType, &m.ItemName, &m.NameAr, &m.Price, &m.CreatedAt)
	return m, err
}

// CreateMenuItemParams carries validated fields for a new catalog entry.
type CreateMenuItemParams struct {
	ItemType string
	ItemName string
	NameAr   pgtype.Text
	Price    pgtype.Numeric
}

const createMenuItemSQL = `
INSERT INTO menu_items (item_type, item_name, name_ar, price, created_at)
VALUES ($1, $2, $3, $4, now())
RETURNING ` + menuItemColumns

// CreateMenuItem adds a catalog entry. (item_type, item_name) pairs are
// not unique at the schema level; price lookups take the first match.
func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, createMenuItemSQL, arg.ItemType, arg.ItemName, arg.NameAr, arg.Price)
	return scanMenuItem(row)
}

// GetMenuItem fetches one catalog entry by id.
func (q *Queries) GetMenuItem(ctx context.Context, id int64) (MenuItem, error) {
	row := q.db.QueryRow(ctx, `SELECT `+menuItemColumns+` FROM menu_items WHERE id = $1`, id)
	return scanMenuItem(row)
}

// ListMenuItems returns all entries of one category ordered by name, for
// populating order-entry choices.
func (q *Queries) ListMenuItems(ctx context.Context, itemType string) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE item_type = $1 ORDER BY item_name`,
		itemType,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// LookupPrice returns the stored price for a (type, name) pair. A missing
// pair or a null price both come back as an invalid Numeric ("no charge").
func (q *Queries) LookupPrice(ctx context.Context, itemType, itemName string) (pgtype.Numeric, error) {
	var price pgtype.Numeric
	err := q.db.QueryRow(ctx,
		`SELECT price FROM menu_items WHERE item_type = $1 AND item_name = $2 ORDER BY id LIMIT 1`,
		itemType, itemName,
	).Scan(&price)
	if err == pgx.ErrNoRows {
		return pgtype.Numeric{}, nil
	}
	return price, err
}

// UpdateMenuItemParams names the target entry and its new fields.
type UpdateMenuItemParams struct {
	ID       int64
	ItemName string
	NameAr   pgtype.Text
	Price    pgtype.Numeric
}

const updateMenuItemSQL = `
UPDATE menu_items SET item_name = $1, name_ar = $2, price = $3 WHERE id = $4
RETURNING ` + menuItemColumns

// UpdateMenuItem edits a catalog entry. Existing orders keep the price
// they were created with. Returns pgx.ErrNoRows if the id is unknown.
func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, updateMenuItemSQL, arg.ItemName, arg.NameAr, arg.Price, arg.ID)
	return scanMenuItem(row)
}

// DeleteMenuItem removes a catalog entry. Existing orders are unaffected.
func (q *Queries) DeleteMenuItem(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	return err
}

// CountMenuItems reports the catalog size, used by the startup seeder.
func (q *Queries) CountMenuItems(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM menu_items`).Scan(&n)
	return n, err
}
