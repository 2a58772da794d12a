package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/api"
	"github.com/yourusername/mediagrab-go/internal/app"
	"github.com/yourusername/mediagrab-go/internal/infrastructure"
	"github.com/yourusername/mediagrab-go/pkg/logger"
)

var configPath = flag.String("config", "", "Path to config file")

func main() {
	flag.Parse()

	// Load configuration
	config, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting mediagrab server",
		zap.String("version", "1.0.0"),
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port),
		zap.String("download_dir", config.Download.Dir),
		zap.Int("concurrent_limit", config.Download.ConcurrentLimit))

	// Create download directory
	if err := os.MkdirAll(config.Download.Dir, 0755); err != nil {
		log.Fatal("Failed to create download directory", zap.Error(err))
	}

	// Initialize task registry
	registry := infrastructure.NewMemoryTaskRegistry(
		config.Registry.TaskTTL,
		config.Registry.CleanupInterval,
	)

	// Initialize extraction engine
	engine := infrastructure.NewYTDLPEngine(&config.Engine, log)

	// Initialize services
	catalog := app.NewCatalogService(registry, engine, &config.Catalog, log)
	worker := app.NewWorker(registry, engine, config.Download.Dir, log)
	launcher := app.NewLauncher(registry, worker, config.Download.ConcurrentLimit, log)

	// Setup HTTP router
	router := api.SetupRouter(catalog, launcher, registry, registry, log)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
