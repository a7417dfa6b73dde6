package main

import (
	"fmt"
	"os"

	"github.com/toolfinder/backend/config"
	"github.com/toolfinder/backend/internal/app"
	httpDelivery "github.com/toolfinder/backend/internal/delivery/http"
	"github.com/toolfinder/backend/internal/logger"
)

const serviceName = "toolfinder-backend"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Format: "console", Output: os.Stderr, ServiceName: serviceName})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: serviceName,
	})

	log.Info().
		Str("version", "1.0.0").
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("provider", cfg.Marketplace.Provider).
		Msg("starting ToolFinder backend")

	// Initialize usecase layer and its infrastructure
	recommendationService := app.NewRecommendationService(cfg, log)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(recommendationService, log)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, log)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("server listening")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
