package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazqeelknight/events/config"
	"github.com/hazqeelknight/events/cron"
	"github.com/hazqeelknight/events/database"
	availabilityRepo "github.com/hazqeelknight/events/database/repository/availability"
	"github.com/hazqeelknight/events/handlers"
	"github.com/hazqeelknight/events/middleware"
	"github.com/hazqeelknight/events/routes"
	"github.com/hazqeelknight/events/services/availability"
	"github.com/hazqeelknight/events/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(routes.CORSMiddleware())

	// Repositories.
	availRepo := availabilityRepo.NewMongoAvailabilityRepo()

	// Services.
	engine := &availability.DefaultAvailabilityEngine{
		Repo: availRepo,
		Cache: availability.NewResultCache(
			utils.GetCacheClient(),
			time.Duration(config.AppConfig.CacheTTLMinutes)*time.Minute,
		),
		MaxRangeDays: config.AppConfig.MaxRangeDays,
		ReasonableHours: availability.HourBand{
			StartHour: config.AppConfig.ReasonableStartHour,
			EndHour:   config.AppConfig.ReasonableEndHour,
		},
		MaxOccurrences: config.AppConfig.MaxOccurrencesPerSet,
	}

	availabilityHandler := handlers.NewAvailabilityHandler(engine)
	routes.RegisterAvailabilityRoutes(router, availabilityHandler)

	// Background worker for management-layer cache invalidation tasks.
	cron.InitInvalidationWorker(engine)

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.AppPort,
		Handler: router,
	}

	go func() {
		logger.Sugar().Infof("availability engine listening on port %s", config.AppConfig.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("forced shutdown: %v", err)
	}
	logger.Info("server exited")
}
