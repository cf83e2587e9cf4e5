package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/feteer-counter/api/internal/enum"
)

type seedItem struct {
	itemType string
	name     string
	nameAr   string
	price    string // empty = no charge
}

// defaultCatalog is inserted on first run when the menu is empty. Exact
// contents are a business-configuration concern; these are the launch
// defaults for the combined coffee + feteer counter.
var defaultCatalog = []seedItem{
	{enum.ItemTypeDrink, "Espresso", "اسبريسو", "3.00"},
	{enum.ItemTypeDrink, "Americano", "امريكانو", "3.50"},
	{enum.ItemTypeDrink, "Latte", "لاتيه", "4.00"},
	{enum.ItemTypeDrink, "Cappuccino", "كابتشينو", "4.00"},
	{enum.ItemTypeDrink, "Mocha", "موكا", "4.50"},
	{enum.ItemTypeDrink, "Turkish Coffee", "قهوة تركي", "3.00"},
	{enum.ItemTypeDrink, "Tea", "شاي", "2.00"},

	{enum.ItemTypeMilk, "Whole", "حليب كامل", ""},
	{enum.ItemTypeMilk, "Skim", "حليب خالي الدسم", ""},
	{enum.ItemTypeMilk, "Oat", "حليب شوفان", "0.50"},
	{enum.ItemTypeMilk, "Almond", "حليب لوز", "0.50"},

	{enum.ItemTypeSyrup, "Vanilla", "فانيليا", "0.50"},
	{enum.ItemTypeSyrup, "Caramel", "كراميل", "0.50"},
	{enum.ItemTypeSyrup, "Hazelnut", "بندق", "0.50"},

	{enum.ItemTypeFoam, "Regular", "عادية", ""},
	{enum.ItemTypeFoam, "Extra", "اكسترا", "0.50"},
	{enum.ItemTypeFoam, "None", "بدون", ""},

	{enum.ItemTypeFeteerType, "Plain", "فطير سادة", "5.00"},
	{enum.ItemTypeFeteerType, "Sweet", "فطير حلو", "7.00"},
	{enum.ItemTypeFeteerType, "Mixed Cheese", "فطير بالجبنة المشكلة", "9.00"},
	{enum.ItemTypeFeteerType, "Mixed Meat", "فطير باللحمة المشكلة", "12.00"},

	{enum.ItemTypeMeat, "Sausage", "سجق", ""},
	{enum.ItemTypeMeat, "Pastirma", "بسطرمة", ""},
	{enum.ItemTypeMeat, "Minced Beef", "لحمة مفرومة", ""},
	{enum.ItemTypeMeat, "Chicken", "فراخ", ""},

	{enum.ItemTypeCheese, "Rumi", "جبنة رومي", ""},
	{enum.ItemTypeCheese, "Mozzarella", "موتزاريلا", ""},
	{enum.ItemTypeCheese, "Feta", "جبنة بيضاء", ""},

	{enum.ItemTypeTopping, "Nutella", "نوتيلا", "2.00"},
	{enum.ItemTypeTopping, "Honey", "عسل", "1.00"},
	{enum.ItemTypeTopping, "Powdered Sugar", "سكر بودرة", ""},
}

// SeedDefaultMenu inserts the default catalog if the menu table is empty.
// Safe to call on every startup.
func (q *Queries) SeedDefaultMenu(ctx context.Context) (int, error) {
	count, err := q.CountMenuItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("count menu items: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for _, item := range defaultCatalog {
		nameAr := pgtype.Text{}
		if item.nameAr != "" {
			nameAr = pgtype.Text{String: item.nameAr, Valid: true}
		}
		price := pgtype.Numeric{}
		if item.price != "" {
			if err := price.Scan(item.price); err != nil {
				return 0, fmt.Errorf("seed %q: bad price: %w", item.name, err)
			}
		}
		_, err := q.CreateMenuItem(ctx, CreateMenuItemParams{
			ItemType: item.itemType,
			ItemName: item.name,
			NameAr:   nameAr,
			Price:    price,
		})
		if err != nil {
			return 0, fmt.Errorf("seed %q: %w", item.name, err)
		}
	}
	return len(defaultCatalog), nil
}
