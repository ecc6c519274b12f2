package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/joho/godotenv"
	"github.com/localnerve/persondb/internal/config"
	"github.com/localnerve/persondb/internal/database"
	"github.com/localnerve/persondb/internal/server"
	"github.com/localnerve/persondb/internal/services"
)

// @title PersonDB API
// @version 1.0.0
// @description Person directory data service with built-in connectivity diagnostics
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/persondb
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /
// @schemes http https

func main() {
	// A missing .env is normal outside local development
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	// Load configuration
	cfg := config.Load()
	cfg.LogEnvironment(log.Default())

	// Create the pool; connections are opened on first use
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to create database pool: %v", err)
	}

	diagnostics := services.NewDiagnostics(cfg, db, log.Default())

	// Startup diagnostics run in the background and never block serving
	go diagnostics.Run(context.Background())

	// Prometheus metrics
	prometheus := fiberprometheus.New("persondb")

	app := server.New(cfg, db, diagnostics, server.Options{Metrics: prometheus})

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Starting server on port %s", cfg.Port)
	if err := server.Run(ctx, app, ":"+cfg.Port, db); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
