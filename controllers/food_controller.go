package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/grocerytrack/backend/services"
)

type FoodController struct {
	costing *services.CostingService
}

func NewFoodController(costing *services.CostingService) *FoodController {
	return &FoodController{costing: costing}
}

type recipeLineRequest struct {
	GroceryID FlexInt   `json:"grocery_id"`
	Quantity  FlexFloat `json:"quantity"`
}

type foodCreateRequest struct {
	Name         string              `json:"name"`
	SellingPrice FlexFloat           `json:"selling_price"`
	Groceries    []recipeLineRequest `json:"groceries"`
}

type foodUpdateRequest struct {
	Name         *string              `json:"name"`
	SellingPrice *FlexFloat           `json:"selling_price"`
	Groceries    *[]recipeLineRequest `json:"groceries"`
}

func toLineInputs(lines []recipeLineRequest) []services.RecipeLineInput {
	inputs := make([]services.RecipeLineInput, 0, len(lines))
	for _, line := range lines {
		inputs = append(inputs, services.RecipeLineInput{
			GroceryID: uint(line.GroceryID),
			Quantity:  float64(line.Quantity),
		})
	}
	return inputs
}

func (fc *FoodController) Create(w http.ResponseWriter, r *http.Request) {
	var req foodCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	food, err := fc.costing.Create(services.CreateFoodInput{
		Name:         req.Name,
		SellingPrice: float64(req.SellingPrice),
		Lines:        toLineInputs(req.Groceries),
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"message": "Created", "data": food})
}

func (fc *FoodController) List(w http.ResponseWriter, r *http.Request) {
	foods, err := fc.costing.List()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, foods)
}

func (fc *FoodController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "food_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid food ID")
		return
	}
	food, err := fc.costing.Get(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, food)
}

func (fc *FoodController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "food_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid food ID")
		return
	}

	var req foodUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := services.UpdateFoodInput{Name: req.Name}
	if req.SellingPrice != nil {
		price := float64(*req.SellingPrice)
		in.SellingPrice = &price
	}
	if req.Groceries != nil {
		in.ReplaceLines = true
		in.Lines = toLineInputs(*req.Groceries)
	}

	food, err := fc.costing.Update(id, in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "Updated", "data": food})
}

func (fc *FoodController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "food_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid food ID")
		return
	}
	if err := fc.costing.Delete(id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
}
