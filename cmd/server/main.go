package main

import (
	"context"
	"log"

	"github.com/visitlog/analytics-backend-go/internal/api"
	"github.com/visitlog/analytics-backend-go/internal/config"
	"github.com/visitlog/analytics-backend-go/internal/database"
	"github.com/visitlog/analytics-backend-go/internal/handler"
	"github.com/visitlog/analytics-backend-go/internal/repository"
	"github.com/visitlog/analytics-backend-go/internal/service"
	"github.com/visitlog/analytics-backend-go/internal/source"
)

func main() {
	cfg := config.Load()

	if cfg.SheetCSVURL == "" {
		log.Fatal("SHEET_CSV_URL must be set")
	}

	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()

	loc := cfg.Location()
	sheetClient := source.NewSheetClient(cfg.SheetCSVURL, cfg.FetchTimeout, loc)
	visitRepo := repository.NewVisitRepository(database.GetDB(), loc)

	refreshService := service.NewRefreshService(sheetClient, visitRepo)
	analyticsService := service.NewAnalyticsService(visitRepo, cfg.GeoCellLevel, cfg.DefaultPageSize)

	// Periodic refresh; the loop serializes passes, so overlap never occurs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go refreshService.Run(ctx, cfg.RefreshInterval)

	router := api.SetupRouter(cfg, api.Handlers{
		Analytics: handler.NewAnalyticsHandler(analyticsService),
		Visits:    handler.NewVisitHandler(analyticsService),
		Refresh:   handler.NewRefreshHandler(refreshService),
	})

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
