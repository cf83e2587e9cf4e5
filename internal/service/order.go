package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/feteer-counter/api/internal/database"
	"github.com/feteer-counter/api/internal/enum"
	"github.com/feteer-counter/api/internal/validate"
)

// Modifier surcharges. Boolean modifiers add a fixed amount; the extra
// meat count adds per unit beyond the included set.
var (
	extraShotSurcharge    = decimal.RequireFromString("1.00")
	extraToppingSurcharge = decimal.RequireFromString("2.00")
	extraMeatSurcharge    = decimal.RequireFromString("2.00")
)

// Errors returned by the order service.
var (
	ErrInvalidProductLine = errors.New("invalid product_line")
	ErrInvalidTemperature = errors.New("invalid temperature")
	ErrInvalidExtraMeats  = errors.New("extra_meat_count out of range")
	ErrItemNameRequired   = errors.New("item_name is required")
)

// OrderStore defines the DB methods needed to create orders.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	LookupPrice(ctx context.Context, itemType, itemName string) (pgtype.Numeric, error)
}

// CreateOrderRequest is the raw input for creating an order. All string
// fields are untrusted and validated here before anything is persisted.
type CreateOrderRequest struct {
	CustomerName   string
	ProductLine    string
	ItemName       string
	Milk           string
	Syrup          string
	Foam           string
	Temperature    string
	Meats          []string
	Cheeses        []string
	ExtraShot      bool
	ExtraTopping   bool
	ExtraMeatCount int32
	Notes          string
}

// OrderService handles order validation and pricing.
type OrderService struct {
	store OrderStore
}

// NewOrderService creates a new OrderService.
func NewOrderService(store OrderStore) *OrderService {
	return &OrderService{store: store}
}

// CreateOrder validates every field, computes the price from the current
// menu catalog, and persists the order with status pending. Validation
// failures abort before any store mutation.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (database.Order, error) {
	customerName, err := validate.CustomerName(req.CustomerName)
	if err != nil {
		return database.Order{}, err
	}

	primaryType, err := primaryItemType(req.ProductLine)
	if err != nil {
		return database.Order{}, err
	}

	if req.ItemName == "" {
		return database.Order{}, ErrItemNameRequired
	}
	itemName, err := validate.MenuItemName(req.ItemName)
	if err != nil {
		return database.Order{}, err
	}

	notes, err := validate.Notes(req.Notes)
	if err != nil {
		return database.Order{}, err
	}

	if req.ExtraMeatCount < 0 || req.ExtraMeatCount > validate.MaxExtraMeats {
		return database.Order{}, fmt.Errorf("%w: must be 0-%d", ErrInvalidExtraMeats, validate.MaxExtraMeats)
	}

	params := database.CreateOrderParams{
		CustomerName:   customerName,
		ProductLine:    req.ProductLine,
		ItemName:       itemName,
		ExtraShot:      req.ExtraShot,
		ExtraTopping:   req.ExtraTopping,
		ExtraMeatCount: req.ExtraMeatCount,
	}
	if notes != "" {
		params.Notes = pgtype.Text{String: notes, Valid: true}
	}

	switch req.ProductLine {
	case enum.ProductLineDrink:
		if params.Milk, err = optionalSelection(req.Milk); err != nil {
			return database.Order{}, err
		}
		if params.Syrup, err = optionalSelection(req.Syrup); err != nil {
			return database.Order{}, err
		}
		if params.Foam, err = optionalSelection(req.Foam); err != nil {
			return database.Order{}, err
		}
		if req.Temperature != "" {
			if req.Temperature != enum.TemperatureHot && req.Temperature != enum.TemperatureIced {
				return database.Order{}, ErrInvalidTemperature
			}
			params.Temperature = pgtype.Text{String: req.Temperature, Valid: true}
		}
	case enum.ProductLineFeteer:
		if params.Meats, err = joinedSelections(req.Meats); err != nil {
			return database.Order{}, err
		}
		if params.Cheeses, err = joinedSelections(req.Cheeses); err != nil {
			return database.Order{}, err
		}
	}

	price, err := s.computePrice(ctx, primaryType, itemName, req)
	if err != nil {
		return database.Order{}, fmt.Errorf("compute price: %w", err)
	}
	params.Price = decimalToNumeric(price)

	return s.store.CreateOrder(ctx, params)
}

// computePrice derives the order price: catalog base price for the primary
// selection plus modifier surcharges. An unknown primary selection prices
// at zero rather than failing the order. The result is never negative and
// never recomputed after creation.
func (s *OrderService) computePrice(ctx context.Context, primaryType, itemName string, req CreateOrderRequest) (decimal.Decimal, error) {
	base, err := s.store.LookupPrice(ctx, primaryType, itemName)
	if err != nil {
		return decimal.Zero, err
	}
	total := numericToDecimal(base)

	if req.ExtraShot {
		total = total.Add(extraShotSurcharge)
	}
	if req.ExtraTopping {
		total = total.Add(extraToppingSurcharge)
	}
	if req.ExtraMeatCount > 0 {
		total = total.Add(extraMeatSurcharge.Mul(decimal.NewFromInt32(req.ExtraMeatCount)))
	}

	// Priced add-on modifiers from the catalog (oat milk, syrups, extra foam).
	addons := []struct {
		itemType string
		name     string
	}{
		{enum.ItemTypeMilk, req.Milk},
		{enum.ItemTypeSyrup, req.Syrup},
		{enum.ItemTypeFoam, req.Foam},
	}
	for _, addon := range addons {
		if addon.name == "" {
			continue
		}
		sanitized, err := validate.MenuItemName(addon.name)
		if err != nil {
			return decimal.Zero, err
		}
		surcharge, err := s.store.LookupPrice(ctx, addon.itemType, sanitized)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(numericToDecimal(surcharge))
	}

	if total.IsNegative() {
		total = decimal.Zero
	}
	return total, nil
}

// WaitMinutes reports the elapsed whole minutes since the order was
// created, for display next to non-completed orders.
func WaitMinutes(o database.Order, nowUnix int64) int64 {
	if o.Status == enum.OrderStatusCompleted {
		return 0
	}
	elapsed := nowUnix - o.CreatedAt.Unix()
	if elapsed < 0 {
		return 0
	}
	return elapsed / 60
}

// --- Helpers ---

func primaryItemType(productLine string) (string, error) {
	switch productLine {
	case enum.ProductLineDrink:
		return enum.ItemTypeDrink, nil
	case enum.ProductLineFeteer:
		return enum.ItemTypeFeteerType, nil
	}
	return "", ErrInvalidProductLine
}

func optionalSelection(name string) (pgtype.Text, error) {
	if name == "" {
		return pgtype.Text{}, nil
	}
	sanitized, err := validate.MenuItemName(name)
	if err != nil {
		return pgtype.Text{}, err
	}
	return pgtype.Text{String: sanitized, Valid: true}, nil
}

func joinedSelections(names []string) (pgtype.Text, error) {
	if len(names) == 0 {
		return pgtype.Text{}, nil
	}
	joined := ""
	for i, name := range names {
		sanitized, err := validate.MenuItemName(name)
		if err != nil {
			return pgtype.Text{}, fmt.Errorf("selection[%d]: %w", i, err)
		}
		if i > 0 {
			joined += ", "
		}
		joined += sanitized
	}
	return pgtype.Text{String: joined, Valid: true}, nil
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
