package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peterbokern/makibeans/internal/app/service"
	"github.com/peterbokern/makibeans/internal/infrastructure/config"
	"github.com/peterbokern/makibeans/internal/infrastructure/http"
	"github.com/peterbokern/makibeans/internal/infrastructure/http/handler"
	"github.com/peterbokern/makibeans/internal/infrastructure/repository/memory"
	"github.com/peterbokern/makibeans/internal/infrastructure/telemetry"
)

func main() {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var telem *telemetry.Telemetry
	if cfg.OTLP.ExportEnabled {
		telem, err = telemetry.NewTelemetry(ctx, &cfg.OTLP)
	} else {
		telem, err = telemetry.NewNoOpTelemetry(&cfg.OTLP)
	}
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telem.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	tracer := telem.TracerProvider.Tracer(cfg.OTLP.ServiceName)
	meter := telem.MeterProvider.Meter(cfg.OTLP.ServiceName)
	logger := telem.Logger

	logger.Info("Starting catalog API")

	repo := memory.NewCatalogRepository(tracer, logger)
	if err := repo.LoadSeedFile(ctx, cfg.Catalog.SeedFile); err != nil {
		logger.Error("Failed to load catalog", "error", err.Error())
		return
	}

	productService := service.NewProductService(repo, repo, tracer, meter, logger)
	catalogService := service.NewCatalogService(repo, tracer, meter, logger)

	server := http.NewServer(
		&cfg.Server,
		handler.NewProductHandler(productService, logger),
		handler.NewCatalogHandler(catalogService),
		logger,
		telem,
	)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", "error", err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err.Error())
	}

	logger.Info("Server stopped")
}
