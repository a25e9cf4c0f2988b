package routes

import (
	"tripcost-api/config"
	"tripcost-api/controllers"
	"tripcost-api/middleware"
	"tripcost-api/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupCORS() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	return cors.New(corsConfig)
}

func SetupRoutes(r *gin.Engine, cfg *config.Config, sessions *services.SessionService, workflow *services.TripWorkflow) {
	// Controllers
	authController := controllers.NewAuthController(sessions, workflow, cfg.AccessPassword, cfg.JWTSecret)
	tripController := controllers.NewTripController(workflow)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// API version 1
	v1 := r.Group("/api/v1")

	// Auth routes (public)
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
	}

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret, sessions))
	{
		protected.POST("/auth/logout", authController.Logout)
		protected.GET("/session", tripController.GetSession)

		trips := protected.Group("/trips")
		{
			// One calculate is one model call, keep the limit tight
			trips.POST("/calculate", middleware.RateLimit(10, 3), tripController.Calculate)
			trips.POST("/save", tripController.Save)
			trips.GET("/", tripController.GetTrips)
			trips.POST("/refresh", tripController.Refresh)
			trips.POST("/:id/load", tripController.Load)
			trips.DELETE("/:id", tripController.Delete)
		}
	}
}
