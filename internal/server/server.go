package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/persondb/internal/config"
	"github.com/localnerve/persondb/internal/database"
	"github.com/localnerve/persondb/internal/handlers"
	"github.com/localnerve/persondb/internal/services"
	"github.com/localnerve/persondb/internal/utils"
	"gorm.io/gorm"

	_ "github.com/localnerve/persondb/docs/api" // Swagger docs
)

// ShutdownTimeout bounds how long in-flight requests may hold up shutdown
const ShutdownTimeout = 10 * time.Second

// Options carries optional parts of the app
type Options struct {
	// Metrics exposes Prometheus metrics at /metrics when set
	Metrics *fiberprometheus.FiberPrometheus
}

// New builds the Fiber app with every route wired to db and diagnostics
func New(cfg *config.Config, db *gorm.DB, diagnostics *services.Diagnostics, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "PersonDB",
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
	}))

	if opts.Metrics != nil {
		opts.Metrics.RegisterAt(app, "/metrics")
		app.Use(opts.Metrics.Middleware)
	}

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	personHandler := &handlers.PersonHandler{DB: db, ExposeErrorStack: cfg.ExposeErrorStack}
	diagnosticsHandler := &handlers.DiagnosticsHandler{Diagnostics: diagnostics}

	app.Get("/person", personHandler.ListPersons)
	app.Get("/run-diagnostics", diagnosticsHandler.RunDiagnostics)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundResponse(c, "[404] Resource Not Found")
	})

	return app
}

// Run listens on addr and serves until ctx is done. See Serve.
func Run(ctx context.Context, app *fiber.App, addr string, db *gorm.DB) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return Serve(ctx, app, ln, db)
}

// Serve serves app on ln until ctx is done, then stops the server and closes
// the pool. The pool is always closed before Serve returns.
func Serve(ctx context.Context, app *fiber.App, ln net.Listener, db *gorm.DB) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- app.Listener(ln)
	}()

	log.Printf("Server running on %s", ln.Addr())

	select {
	case err := <-serveErr:
		if closeErr := database.Close(db); closeErr != nil {
			log.Printf("Failed to close database pool: %v", closeErr)
		}
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
	}

	log.Println("Gracefully shutting down...")
	if err := app.ShutdownWithTimeout(ShutdownTimeout); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	// Shutdown only closes listeners Serve has already picked up
	_ = ln.Close()
	<-serveErr

	if err := database.Close(db); err != nil {
		return fmt.Errorf("failed to close database pool: %w", err)
	}
	log.Println("Database pool has ended")

	return nil
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
		errorType = "http"
	}

	return utils.ErrorResponse(c, message, code, errorType)
}
