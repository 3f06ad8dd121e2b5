package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/grocerytrack/backend/controllers"
	"github.com/grocerytrack/backend/metrics"
	"github.com/grocerytrack/backend/services"
)

func SetupRouter(db *gorm.DB) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	// CORS Configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	inventory := services.NewInventoryService(db)
	costing := services.NewCostingService(db)

	groceries := controllers.NewGroceryController(inventory)
	foods := controllers.NewFoodController(costing)
	stats := controllers.NewStatsController(inventory)

	// Liveness probe
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", promhttp.Handler())

	// Inventory
	r.Post("/grocery", groceries.Create)
	r.Get("/groceries", groceries.List)
	r.Route("/grocery/{grocery_id}", func(r chi.Router) {
		r.Get("/", groceries.Get)
		r.Put("/", groceries.Update)
		r.Delete("/", groceries.Delete)
		r.Post("/add", groceries.AddStock)
		r.Post("/subtract", groceries.SubtractStock)
		r.Get("/movements", groceries.Movements)
	})
	r.Get("/alerts", groceries.Alerts)
	r.Get("/stats/summary", stats.Summary)
	r.Get("/stats/summary/export", stats.Export)

	// Recipes and costing
	r.Post("/food", foods.Create)
	r.Get("/foods", foods.List)
	r.Route("/food/{food_id}", func(r chi.Router) {
		r.Get("/", foods.Get)
		r.Put("/", foods.Update)
		r.Delete("/", foods.Delete)
	})

	return r
}
