package models

import "time"

// Grocery is a trackable stock-keeping unit with quantity on hand and a
// reorder threshold. Stock never goes negative; writes clamp at zero.
type Grocery struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;uniqueIndex;not null" json:"name"`
	Stock     int       `gorm:"default:0" json:"stock"`
	Threshold int       `gorm:"default:0" json:"threshold"`
	UnitCost  float64   `gorm:"default:0" json:"unit_cost"`
	CreatedAt time.Time `json:"created_at"`
}

// LowOnStock reports whether the grocery is strictly below its threshold.
// Equal stock and threshold is not low.
func (g *Grocery) LowOnStock() bool {
	return g.Stock < g.Threshold
}

// StockMovement is an append-only ledger entry recording one stock change.
// Change holds the requested signed quantity: positive for additions,
// negative for subtractions, even when clamping reduced the effective delta.
//
// GroceryID is a weak reference by identifier, not an ownership edge:
// deleting a grocery leaves its movements in place.
type StockMovement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GroceryID uint      `gorm:"not null;index" json:"grocery_id"`
	Change    int       `gorm:"not null" json:"change"`
	CreatedAt time.Time `json:"created_at"`
}

// Food is a sellable item composed of grocery quantities via FoodRecipe
// lines. CostPrice is denormalized: it is recomputed from the current
// recipe lines on food writes and is never settable by callers directly.
type Food struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:120;uniqueIndex;not null" json:"name"`
	SellingPrice float64   `gorm:"default:0" json:"selling_price"`
	CostPrice    float64   `gorm:"default:0" json:"cost_price"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profit is derived at read time.
func (f *Food) Profit() float64 {
	return f.SellingPrice - f.CostPrice
}

// MarginPercent returns profit as a percentage of the selling price, 0 when
// the selling price is 0.
func (f *Food) MarginPercent() float64 {
	if f.SellingPrice == 0 {
		return 0
	}
	return f.Profit() / f.SellingPrice * 100
}

// FoodRecipe links one Food to one Grocery with a required quantity.
// Duplicate lines for the same (food, grocery) pair are allowed and each
// contributes to cost. GroceryID is a weak reference: the grocery may have
// been deleted independently, in which case the line contributes zero cost.
type FoodRecipe struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FoodID    uint      `gorm:"not null;index" json:"food_id"`
	GroceryID uint      `gorm:"not null;index" json:"grocery_id"`
	Quantity  float64   `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}
