// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"stocknexus/internal/analysis"
	"stocknexus/internal/clients"
	"stocknexus/internal/config"
	"stocknexus/internal/inventory"
	"stocknexus/internal/logging"
	"stocknexus/internal/orders"
	"stocknexus/internal/rental"
	"stocknexus/internal/store"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Logger.Level)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var dispatcher store.Dispatcher
	db, err := store.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		// The in-memory store keeps the app usable without Mongo; state
		// is lost on restart.
		logger.WithField("module", "server").Warnf("mongo unavailable, running on in-memory store: %v", err)
		dispatcher = store.NewMemoryStore()
	} else {
		dispatcher = store.NewMongoDispatcher(db, logger)
	}

	inventorySvc := inventory.NewService(dispatcher, logger)
	ordersSvc := orders.NewService(inventorySvc, dispatcher, logger)
	rentalSvc := rental.NewService(dispatcher, logger)
	engine := analysis.NewEngine(inventorySvc)
	analyzer := clients.NewAnalyzerClient(cfg.Analyzer.BaseURL)

	inventoryHandler := inventory.NewHandler(inventorySvc)
	ordersHandler := orders.NewHandler(ordersSvc, analyzer)
	rentalHandler := rental.NewHandler(rentalSvc)
	analysisHandler := analysis.NewHandler(engine)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Mount("/items", inventoryHandler.Routes())
	router.Mount("/orders", ordersHandler.Routes())
	router.Mount("/machines", rentalHandler.Routes())
	router.Mount("/analysis", analysisHandler.Routes())
	router.Delete("/reorders", inventoryHandler.HandleBulkCancelReorders)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.WithField("module", "server").Infof("listening on %s", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.WithField("module", "server").Fatal(err.Error())
	}
}
