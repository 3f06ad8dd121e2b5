package services

import (
	"errors"
	"strings"

	"github.com/grocerytrack/backend/logger"
	"github.com/grocerytrack/backend/models"

	"gorm.io/gorm"
)

// CostingService owns food CRUD, recipe line management and the cost
// rollup. Food cost is the sum of quantity times grocery unit cost over the
// food's current recipe lines; a line whose grocery has been deleted
// contributes zero.
type CostingService struct {
	db *gorm.DB
}

func NewCostingService(db *gorm.DB) *CostingService {
	return &CostingService{db: db}
}

// RecipeLineInput is one requested recipe line. Lines with a non-positive
// quantity or an unknown grocery are skipped, not rejected.
type RecipeLineInput struct {
	GroceryID uint
	Quantity  float64
}

type CreateFoodInput struct {
	Name         string
	SellingPrice float64
	Lines        []RecipeLineInput
}

// UpdateFoodInput carries a partial update. A nil Lines leaves the recipe
// untouched; a non-nil Lines (even empty) replaces every existing line.
type UpdateFoodInput struct {
	Name         *string
	SellingPrice *float64
	Lines        []RecipeLineInput
	ReplaceLines bool
}

// RecipeLine is a recipe line expanded with a unit-cost snapshot of its
// grocery. A dangling line keeps its quantity but reads as zero cost with an
// empty name.
type RecipeLine struct {
	GroceryID   uint    `json:"grocery_id"`
	GroceryName string  `json:"grocery_name"`
	Quantity    float64 `json:"quantity"`
	UnitCost    float64 `json:"unit_cost"`
	LineCost    float64 `json:"line_cost"`
}

// FoodDetail is a food with its derived fields and expanded recipe lines.
type FoodDetail struct {
	models.Food
	Profit        float64      `json:"profit"`
	MarginPercent float64      `json:"margin_percent"`
	Recipe        []RecipeLine `json:"groceries"`
}

func (s *CostingService) Create(in CreateFoodInput) (*FoodDetail, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &ValidationError{Msg: "Name required"}
	}
	if in.SellingPrice < 0 {
		return nil, &ValidationError{Msg: "Invalid selling_price"}
	}

	var existing models.Food
	err := s.db.Where("name = ?", name).First(&existing).Error
	if err == nil {
		return nil, &ConflictError{Msg: "Food exists"}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	food := models.Food{Name: name, SellingPrice: in.SellingPrice}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&food).Error; err != nil {
			return err
		}
		if err := s.insertLines(tx, food.ID, in.Lines); err != nil {
			return err
		}
		cost, err := s.recomputeCost(tx, food.ID)
		if err != nil {
			return err
		}
		food.CostPrice = cost
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Food created", "food_id", food.ID, "name", food.Name, "cost_price", food.CostPrice)
	return s.detail(&food)
}

func (s *CostingService) List() ([]FoodDetail, error) {
	var foods []models.Food
	if err := s.db.Order("created_at DESC, id DESC").Find(&foods).Error; err != nil {
		return nil, err
	}

	details := make([]FoodDetail, 0, len(foods))
	for i := range foods {
		d, err := s.detail(&foods[i])
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, nil
}

func (s *CostingService) Get(id uint) (*FoodDetail, error) {
	food, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return s.detail(food)
}

func (s *CostingService) Update(id uint, in UpdateFoodInput) (*FoodDetail, error) {
	food, err := s.find(id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		newName := strings.TrimSpace(*in.Name)
		if newName == "" {
			return nil, &ValidationError{Msg: "Name required"}
		}
		if newName != food.Name {
			var existing models.Food
			err := s.db.Where("name = ?", newName).First(&existing).Error
			if err == nil {
				return nil, &ConflictError{Msg: "Name exists"}
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			food.Name = newName
		}
	}
	if in.SellingPrice != nil {
		if *in.SellingPrice < 0 {
			return nil, &ValidationError{Msg: "Invalid selling_price"}
		}
		food.SellingPrice = *in.SellingPrice
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(food).Error; err != nil {
			return err
		}
		if in.ReplaceLines {
			if err := tx.Where("food_id = ?", food.ID).Delete(&models.FoodRecipe{}).Error; err != nil {
				return err
			}
			if err := s.insertLines(tx, food.ID, in.Lines); err != nil {
				return err
			}
		}
		// Recompute even when the lines were untouched: this is the path
		// that picks up unit-cost changes made to groceries since the last
		// food write.
		cost, err := s.recomputeCost(tx, food.ID)
		if err != nil {
			return err
		}
		food.CostPrice = cost
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.detail(food)
}

func (s *CostingService) Delete(id uint) error {
	food, err := s.find(id)
	if err != nil {
		return err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("food_id = ?", food.ID).Delete(&models.FoodRecipe{}).Error; err != nil {
			return err
		}
		return tx.Delete(food).Error
	})
	if err != nil {
		return err
	}
	logger.Info("Food deleted", "food_id", id)
	return nil
}

func (s *CostingService) find(id uint) (*models.Food, error) {
	var food models.Food
	if err := s.db.First(&food, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Msg: "Food not found"}
		}
		return nil, err
	}
	return &food, nil
}

// insertLines persists the valid requested lines. Lines with quantity <= 0
// or an unknown grocery are skipped silently.
func (s *CostingService) insertLines(tx *gorm.DB, foodID uint, lines []RecipeLineInput) error {
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		var grocery models.Grocery
		if err := tx.First(&grocery, line.GroceryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Debug("Skipping recipe line for unknown grocery",
					"food_id", foodID, "grocery_id", line.GroceryID)
				continue
			}
			return err
		}
		recipe := models.FoodRecipe{
			FoodID:    foodID,
			GroceryID: grocery.ID,
			Quantity:  line.Quantity,
		}
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
	}
	return nil
}

// recomputeCost sums quantity times grocery unit cost over the food's
// current lines and persists the result to cost_price. Lines whose grocery
// no longer exists contribute zero.
func (s *CostingService) recomputeCost(tx *gorm.DB, foodID uint) (float64, error) {
	var lines []models.FoodRecipe
	if err := tx.Where("food_id = ?", foodID).Find(&lines).Error; err != nil {
		return 0, err
	}

	total := 0.0
	for _, line := range lines {
		var grocery models.Grocery
		if err := tx.First(&grocery, line.GroceryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return 0, err
		}
		total += line.Quantity * grocery.UnitCost
	}

	err := tx.Model(&models.Food{}).Where("id = ?", foodID).
		Update("cost_price", total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// detail expands a food with its recipe lines and read-time derived fields.
func (s *CostingService) detail(food *models.Food) (*FoodDetail, error) {
	var lines []models.FoodRecipe
	err := s.db.Where("food_id = ?", food.ID).Order("id ASC").Find(&lines).Error
	if err != nil {
		return nil, err
	}

	groceryIDs := make([]uint, 0, len(lines))
	for _, line := range lines {
		groceryIDs = append(groceryIDs, line.GroceryID)
	}
	byID := make(map[uint]models.Grocery, len(groceryIDs))
	if len(groceryIDs) > 0 {
		var groceries []models.Grocery
		if err := s.db.Where("id IN ?", groceryIDs).Find(&groceries).Error; err != nil {
			return nil, err
		}
		for _, g := range groceries {
			byID[g.ID] = g
		}
	}

	recipe := make([]RecipeLine, 0, len(lines))
	for _, line := range lines {
		expanded := RecipeLine{
			GroceryID: line.GroceryID,
			Quantity:  line.Quantity,
		}
		if g, ok := byID[line.GroceryID]; ok {
			expanded.GroceryName = g.Name
			expanded.UnitCost = g.UnitCost
			expanded.LineCost = line.Quantity * g.UnitCost
		}
		recipe = append(recipe, expanded)
	}

	return &FoodDetail{
		Food:          *food,
		Profit:        food.Profit(),
		MarginPercent: food.MarginPercent(),
		Recipe:        recipe,
	}, nil
}
