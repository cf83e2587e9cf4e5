package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/feteer-counter/api/internal/enum"
)

const orderColumns = `id, customer_name, product_line, item_name,
	milk, syrup, foam, temperature, meats, cheeses,
	extra_shot, extra_topping, extra_meat_count,
	notes, status, price, created_at`

// orderSearchColumns are the columns the list search runs across. This is
// the only place search columns are defined; user input never joins them.
var orderSearchColumns = []string{"customer_name", "item_name", "notes"}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.CustomerName, &o.ProductLine, &o.ItemName,
		&o.Milk, &o.Syrup, &o.Foam, &o.Temperature, &o.Meats, &o.Cheeses,
		&o.ExtraShot, &o.ExtraTopping, &o.ExtraMeatCount,
		&o.Notes, &o.Status, &o.Price, &o.CreatedAt,
	)
	return o, err
}

// CreateOrderParams carries the already-validated fields for a new order.
// Price comes from the pricing rule; status and created_at are assigned
// here, not by the caller.
type CreateOrderParams struct {
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
	Price          pgtype.Numeric
}

const createOrderSQL = `
INSERT INTO orders (
	customer_name, product_line, item_name,
	milk, syrup, foam, temperature, meats, cheeses,
	extra_shot, extra_topping, extra_meat_count,
	notes, status, price, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now())
RETURNING ` + orderColumns

// CreateOrder inserts a new order with status forced to pending.
func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrderSQL,
		arg.CustomerName, arg.ProductLine, arg.ItemName,
		arg.Milk, arg.Syrup, arg.Foam, arg.Temperature, arg.Meats, arg.Cheeses,
		arg.ExtraShot, arg.ExtraTopping, arg.ExtraMeatCount,
		arg.Notes, enum.OrderStatusPending, arg.Price,
	)
	return scanOrder(row)
}

// GetOrder fetches one order by id. Returns pgx.ErrNoRows if absent.
func (q *Queries) GetOrder(ctx context.Context, id int64) (Order, error) {
	row := q.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

// ListOrdersParams filters the order list. Statuses must already be
// validated; empty means all. Search may be empty (no filter).
type ListOrdersParams struct {
	Statuses []string
	Search   string
}

const listOrdersSQL = `
SELECT ` + orderColumns + `
FROM orders
WHERE {{LIKE_CONDITIONS}} AND status = ANY($e1)
ORDER BY
	CASE status
		WHEN 'pending' THEN 0
		WHEN 'in_progress' THEN 1
		ELSE 2
	END,
	created_at DESC`

// ListOrders returns orders sorted by status priority (pending first,
// completed last) with ties broken by created_at descending.
func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	statuses := arg.Statuses
	if len(statuses) == 0 {
		statuses = enum.OrderStatuses
	}

	query, err := buildLikeQuery(listOrdersSQL, orderSearchColumns, arg.Search, statuses)
	if err != nil {
		return nil, err
	}

	rows, err := q.db.Query(ctx, query.SQL, query.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const listCompletedOrdersSQL = `
SELECT ` + orderColumns + `
FROM orders
WHERE status = 'completed'
ORDER BY created_at DESC`

// ListCompletedOrders returns completed orders newest-first for the
// analytics view and the CSV export.
func (q *Queries) ListCompletedOrders(ctx context.Context) ([]Order, error) {
	rows, err := q.db.Query(ctx, listCompletedOrdersSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateOrderStatusParams names the target row and its new status.
type UpdateOrderStatusParams struct {
	ID     int64
	Status string
}

const updateOrderStatusSQL = `
UPDATE orders SET status = $1 WHERE id = $2
RETURNING ` + orderColumns

// UpdateOrderStatus sets the status unconditionally; any status is
// reachable from any other. Returns pgx.ErrNoRows if the id is unknown.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatusSQL, arg.Status, arg.ID)
	return scanOrder(row)
}

// DeleteOrder removes the row. Deleting a missing id is a silent no-op,
// so repeated deletes are idempotent.
func (q *Queries) DeleteOrder(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	return err
}
