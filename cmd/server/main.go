package main

import (
	"net/http"

	"github.com/joho/godotenv"

	"github.com/grocerytrack/backend/config"
	"github.com/grocerytrack/backend/database"
	"github.com/grocerytrack/backend/logger"
	"github.com/grocerytrack/backend/routes"
)

func main() {
	// Initialize Structured Logger
	logger.Init()

	// Load .env
	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using system env vars")
	}

	// Initialize DB
	database.InitDB()

	// Setup Router
	r := routes.SetupRouter(database.DB)

	port := config.GetEnv("PORT", "8080")
	logger.Info("Server starting", "port", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Error("Server failed to start", "error", err)
	}
}
