package main

import (
	"log"
	"time"

	"tripcost-api/config"
	"tripcost-api/jobs"
	"tripcost-api/middleware"
	"tripcost-api/repositories"
	"tripcost-api/routes"
	"tripcost-api/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	// Load configuration
	cfg := config.Load()

	if cfg.OpenAIAPIKey == "" {
		log.Fatal("OPENAI_API_KEY is required")
	}
	if cfg.SupabaseAPIKey == "" {
		log.Fatal("SUPABASE_ANON_KEY is required")
	}

	// External collaborators: the estimation model and the saved-trips table
	estimator := services.NewEstimatorService(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.EstimateTimeout)
	store := repositories.NewTripRepository(cfg.SupabaseURL, cfg.SupabaseAPIKey, cfg.SupabaseTable, cfg.StoreTimeout)

	workflow := services.NewTripWorkflow(estimator, store)
	sessions := services.NewSessionService(cfg.SessionTTL)

	// Evict idle sessions in the background
	cleanupJob := jobs.NewSessionCleanupJob(sessions, 10*time.Minute)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	// Set Gin mode based on environment
	if cfg.Port == "8080" { // Development
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()
	router.Use(routes.SetupCORS())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())

	// Setup routes
	routes.SetupRoutes(router, cfg, sessions, workflow)

	// Start server
	log.Printf("Starting trip cost API server on port %s", cfg.Port)
	log.Printf("Health check available at: http://localhost:%s/ping", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
