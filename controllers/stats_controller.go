package controllers

import (
	"bytes"
	"net/http"

	"github.com/grocerytrack/backend/logger"
	"github.com/grocerytrack/backend/services"
	"github.com/xuri/excelize/v2"
)

type StatsController struct {
	inventory *services.InventoryService
}

func NewStatsController(inventory *services.InventoryService) *StatsController {
	return &StatsController{inventory: inventory}
}

func (sc *StatsController) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := sc.inventory.Summary()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// Export streams the summary item list as an .xlsx workbook.
func (sc *StatsController) Export(w http.ResponseWriter, r *http.Request) {
	summary, err := sc.inventory.Summary()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{"id", "name", "stock", "threshold", "unit_cost", "low_stock"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		logger.Error("Failed to write export header", "error", err)
		respondError(w, http.StatusInternalServerError, "Export failed")
		return
	}

	row := 2
	for i := range summary.Items {
		g := &summary.Items[i]
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			logger.Error("Failed to resolve export cell", "error", err)
			respondError(w, http.StatusInternalServerError, "Export failed")
			return
		}
		values := []interface{}{g.ID, g.Name, g.Stock, g.Threshold, g.UnitCost, g.LowOnStock()}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			logger.Error("Failed to write export row", "error", err)
			respondError(w, http.StatusInternalServerError, "Export failed")
			return
		}
		row++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		logger.Error("Failed to serialize export", "error", err)
		respondError(w, http.StatusInternalServerError, "Export failed")
		return
	}

	w.Header().Set("Content-Type",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory_summary.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
