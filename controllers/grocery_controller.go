package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/grocerytrack/backend/models"
	"github.com/grocerytrack/backend/services"
)

type GroceryController struct {
	inventory *services.InventoryService
}

func NewGroceryController(inventory *services.InventoryService) *GroceryController {
	return &GroceryController{inventory: inventory}
}

type groceryCreateRequest struct {
	Name      string    `json:"name"`
	Stock     FlexInt   `json:"stock"`
	Threshold FlexInt   `json:"threshold"`
	UnitCost  FlexFloat `json:"unit_cost"`
}

type groceryUpdateRequest struct {
	Name      *string    `json:"name"`
	Stock     *FlexInt   `json:"stock"`
	Threshold *FlexInt   `json:"threshold"`
	UnitCost  *FlexFloat `json:"unit_cost"`
}

type qtyRequest struct {
	Qty FlexInt `json:"qty"`
}

func (gc *GroceryController) Create(w http.ResponseWriter, r *http.Request) {
	var req groceryCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	grocery, err := gc.inventory.Create(services.CreateGroceryInput{
		Name:      req.Name,
		Stock:     int(req.Stock),
		Threshold: int(req.Threshold),
		UnitCost:  float64(req.UnitCost),
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"message": "Created", "data": grocery})
}

func (gc *GroceryController) List(w http.ResponseWriter, r *http.Request) {
	groceries, err := gc.inventory.List()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, groceries)
}

func (gc *GroceryController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "grocery_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid grocery ID")
		return
	}
	grocery, err := gc.inventory.Get(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, grocery)
}

func (gc *GroceryController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "grocery_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid grocery ID")
		return
	}

	var req groceryUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := services.UpdateGroceryInput{Name: req.Name}
	if req.Stock != nil {
		stock := int(*req.Stock)
		in.Stock = &stock
	}
	if req.Threshold != nil {
		threshold := int(*req.Threshold)
		in.Threshold = &threshold
	}
	if req.UnitCost != nil {
		unitCost := float64(*req.UnitCost)
		in.UnitCost = &unitCost
	}

	grocery, err := gc.inventory.Update(id, in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "Updated", "data": grocery})
}

func (gc *GroceryController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "grocery_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid grocery ID")
		return
	}
	if err := gc.inventory.Delete(id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
}

func (gc *GroceryController) AddStock(w http.ResponseWriter, r *http.Request) {
	gc.adjustStock(w, r, gc.inventory.AddStock, "Added")
}

func (gc *GroceryController) SubtractStock(w http.ResponseWriter, r *http.Request) {
	gc.adjustStock(w, r, gc.inventory.SubtractStock, "Subtracted")
}

func (gc *GroceryController) adjustStock(w http.ResponseWriter, r *http.Request,
	apply func(uint, int) (*models.Grocery, error), message string) {

	id, err := pathID(r, "grocery_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid grocery ID")
		return
	}

	var req qtyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	grocery, err := apply(id, int(req.Qty))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": message, "data": grocery})
}

func (gc *GroceryController) Movements(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "grocery_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid grocery ID")
		return
	}
	movements, err := gc.inventory.Movements(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, movements)
}

func (gc *GroceryController) Alerts(w http.ResponseWriter, r *http.Request) {
	groceries, err := gc.inventory.LowStock()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, groceries)
}
