package routes

import (
	"time"

	"github.com/hazqeelknight/events/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAvailabilityRoutes registers the availability engine endpoints.
func RegisterAvailabilityRoutes(r *gin.Engine, h *handlers.AvailabilityHandler) {
	api := r.Group("/api/availability")
	{
		api.GET("/stats", h.EngineStatsHandler)
		api.GET("/:organizerID/calculated-slots", h.CalculatedSlotsHandler)
		api.POST("/:organizerID/cache/invalidate", h.InvalidateCacheHandler)
	}
}

// CORSMiddleware returns the shared CORS policy for the API.
func CORSMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	})
}
