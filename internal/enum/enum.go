package enum

// ── Order status pipeline (CHECK constrained in DB) ──

const (
	OrderStatusPending    = "pending"
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
)

// OrderStatuses lists every valid status in pipeline order.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusInProgress,
	OrderStatusCompleted,
}

// ── Product lines ──

const (
	ProductLineDrink  = "drink"
	ProductLineFeteer = "feteer"
)

// ── Menu item categories ──
// The primary selection of a drink order is looked up under ItemTypeDrink,
// a feteer order under ItemTypeFeteerType. The rest are modifier catalogs.

const (
	ItemTypeDrink      = "drink"
	ItemTypeMilk       = "milk"
	ItemTypeSyrup      = "syrup"
	ItemTypeFoam       = "foam"
	ItemTypeFeteerType = "feteer_type"
	ItemTypeMeat       = "meat"
	ItemTypeCheese     = "cheese"
	ItemTypeTopping    = "topping"
)

// ItemTypes lists every recognized menu category.
var ItemTypes = []string{
	ItemTypeDrink,
	ItemTypeMilk,
	ItemTypeSyrup,
	ItemTypeFoam,
	ItemTypeFeteerType,
	ItemTypeMeat,
	ItemTypeCheese,
	ItemTypeTopping,
}

// ── Configurable labels (no DB constraint) ──

const (
	TemperatureHot  = "hot"
	TemperatureIced = "iced"
)
