package database

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Order is one customer purchase with a lifecycle status. Price is
// computed once at creation from the menu catalog and never recomputed,
// so later menu edits do not retroactively change existing orders.
type Order struct {
	ID             int64
	CustomerName   string
	ProductLine    string
	ItemName       string
	Milk           pgtype.Text
	Syrup          pgtype.Text
	Foam           pgtype.Text
	Temperature    pgtype.Text
	Meats          pgtype.Text
	Cheeses        pgtype.Text
	ExtraShot      bool
	ExtraTopping   bool
	ExtraMeatCount int32
	Notes          pgtype.Text
	Status         string
	Price          pgtype.Numeric
	CreatedAt      time.Time
}

// MenuItem is a priced or unpriced named option: a product type or a
// modifier choice. A null price means "no charge". NameAr carries the
// secondary-language display name.
type MenuItem struct {
	ID        int64
	ItemType  string
	ItemName  string
	NameAr    pgtype.Text
	Price     pgtype.Numeric
	CreatedAt time.Time
}
