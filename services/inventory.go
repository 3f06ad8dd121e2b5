package services

import (
	"errors"
	"strings"

	"github.com/grocerytrack/backend/logger"
	"github.com/grocerytrack/backend/models"

	"gorm.io/gorm"
)

// InventoryService owns grocery CRUD, the stock-movement ledger and the
// low-stock queries. It takes its database handle explicitly so handlers and
// tests decide which connection (or transaction) it runs against.
type InventoryService struct {
	db *gorm.DB
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{db: db}
}

// CreateGroceryInput carries the caller-settable grocery fields.
type CreateGroceryInput struct {
	Name      string
	Stock     int
	Threshold int
	UnitCost  float64
}

// UpdateGroceryInput carries a partial update; nil fields are left untouched.
type UpdateGroceryInput struct {
	Name      *string
	Stock     *int
	Threshold *int
	UnitCost  *float64
}

// Summary aggregates inventory counters together with the full item list.
type Summary struct {
	TotalItems int              `json:"total_items"`
	LowItems   int              `json:"low_items"`
	TotalStock int              `json:"total_stock"`
	Items      []models.Grocery `json:"items"`
}

func (s *InventoryService) Create(in CreateGroceryInput) (*models.Grocery, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &ValidationError{Msg: "Name required"}
	}
	if in.UnitCost < 0 {
		return nil, &ValidationError{Msg: "Invalid unit_cost"}
	}

	var existing models.Grocery
	err := s.db.Where("name = ?", name).First(&existing).Error
	if err == nil {
		return nil, &ConflictError{Msg: "Grocery exists"}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	grocery := models.Grocery{
		Name:      name,
		Stock:     max(0, in.Stock),
		Threshold: in.Threshold,
		UnitCost:  in.UnitCost,
	}
	if err := s.db.Create(&grocery).Error; err != nil {
		return nil, err
	}

	logger.Info("Grocery created", "grocery_id", grocery.ID, "name", grocery.Name)
	return &grocery, nil
}

func (s *InventoryService) List() ([]models.Grocery, error) {
	var groceries []models.Grocery
	if err := s.db.Order("created_at DESC, id DESC").Find(&groceries).Error; err != nil {
		return nil, err
	}
	return groceries, nil
}

func (s *InventoryService) Get(id uint) (*models.Grocery, error) {
	var grocery models.Grocery
	if err := s.db.First(&grocery, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Msg: "Grocery not found"}
		}
		return nil, err
	}
	return &grocery, nil
}

func (s *InventoryService) Update(id uint, in UpdateGroceryInput) (*models.Grocery, error) {
	grocery, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		newName := strings.TrimSpace(*in.Name)
		if newName == "" {
			return nil, &ValidationError{Msg: "Name required"}
		}
		if newName != grocery.Name {
			var existing models.Grocery
			err := s.db.Where("name = ?", newName).First(&existing).Error
			if err == nil {
				return nil, &ConflictError{Msg: "Name exists"}
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			grocery.Name = newName
		}
	}
	if in.Threshold != nil {
		grocery.Threshold = *in.Threshold
	}
	if in.Stock != nil {
		grocery.Stock = max(0, *in.Stock)
	}
	if in.UnitCost != nil {
		if *in.UnitCost < 0 {
			return nil, &ValidationError{Msg: "Invalid unit_cost"}
		}
		// Dependent food cost prices are deliberately not recomputed here;
		// they refresh the next time the food itself is written.
		grocery.UnitCost = *in.UnitCost
	}

	if err := s.db.Save(grocery).Error; err != nil {
		return nil, err
	}
	return grocery, nil
}

// Delete removes the grocery row only. Movements and recipe lines that
// reference it stay behind as weak references and read as zero-cost.
func (s *InventoryService) Delete(id uint) error {
	grocery, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(grocery).Error; err != nil {
		return err
	}
	logger.Info("Grocery deleted", "grocery_id", id)
	return nil
}

func (s *InventoryService) AddStock(id uint, qty int) (*models.Grocery, error) {
	grocery, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if qty <= 0 {
		return nil, &ValidationError{Msg: "Invalid qty"}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		grocery.Stock += qty
		if err := tx.Save(grocery).Error; err != nil {
			return err
		}
		return tx.Create(&models.StockMovement{GroceryID: grocery.ID, Change: qty}).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Stock added", "grocery_id", grocery.ID, "qty", qty, "stock", grocery.Stock)
	return grocery, nil
}

// SubtractStock clamps stock at zero but records the requested quantity in
// the ledger, so a movement can show a larger subtraction than what was
// actually removed.
func (s *InventoryService) SubtractStock(id uint, qty int) (*models.Grocery, error) {
	grocery, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if qty <= 0 {
		return nil, &ValidationError{Msg: "Invalid qty"}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		grocery.Stock = max(0, grocery.Stock-qty)
		if err := tx.Save(grocery).Error; err != nil {
			return err
		}
		return tx.Create(&models.StockMovement{GroceryID: grocery.ID, Change: -qty}).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Stock subtracted", "grocery_id", grocery.ID, "qty", qty, "stock", grocery.Stock)
	return grocery, nil
}

// Movements returns the ledger for one grocery, newest first.
func (s *InventoryService) Movements(id uint) ([]models.StockMovement, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	var movements []models.StockMovement
	err := s.db.Where("grocery_id = ?", id).
		Order("created_at DESC, id DESC").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}

// LowStock returns groceries strictly below their threshold.
func (s *InventoryService) LowStock() ([]models.Grocery, error) {
	var groceries []models.Grocery
	if err := s.db.Where("stock < threshold").Find(&groceries).Error; err != nil {
		return nil, err
	}
	return groceries, nil
}

func (s *InventoryService) Summary() (*Summary, error) {
	groceries, err := s.List()
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		TotalItems: len(groceries),
		Items:      groceries,
	}
	for _, g := range groceries {
		summary.TotalStock += g.Stock
		if g.LowOnStock() {
			summary.LowItems++
		}
	}
	return summary, nil
}
