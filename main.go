package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"datasense/internal/config"
	"datasense/internal/container"
	"datasense/internal/metrics"
	"datasense/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.Fatalf("Failed to register metrics: %v", err)
	}

	// Create dependency injection container
	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	if err := appContainer.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	// Initialize web server
	server, err := ui.NewServer(appContainer.Service, appContainer.Usage, ui.Config{
		Port:           appConfig.Server.Port,
		GinMode:        appConfig.Server.GinMode,
		MaxUploadBytes: appConfig.Limits.MaxFileBytes,
	})
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Start(gctx) })

	// Health, metrics and pprof run on their own port
	if appConfig.Ops.Enabled {
		ops := ui.NewOpsApp(appConfig.Ops.Port, map[string]ui.HealthCheck{
			"store": appContainer.HealthCheck,
		})
		g.Go(func() error { return ops.Start(gctx) })
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
	log.Println("DataSense stopped")
}
