package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/temcen/quickrec/internal/config"
	"github.com/temcen/quickrec/internal/database"
	"github.com/temcen/quickrec/internal/handlers"
	"github.com/temcen/quickrec/internal/middleware"
	"github.com/temcen/quickrec/internal/services"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	db       *database.Database
	services *services.Services
	handlers *handlers.Handlers
	router   *gin.Engine
}

// New connects backing stores, builds the model and prepares the router. The model is
// fully built before New returns, so no request ever sees a partial model.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	// Initialize database connections
	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	// Initialize services
	services, err := services.New(ctx, cfg, app.logger, db, prometheus.DefaultRegisterer)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.services = services

	// Initialize handlers
	app.handlers = handlers.New(cfg, app.logger, services)

	// Setup router
	app.setupRouter()

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Logger() *logrus.Logger {
	return a.logger
}

// Ready reports whether the model was built; the server still starts when it was not.
func (a *App) Ready() bool {
	return a.services.Model.Ready()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}

	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func (a *App) setupRouter() {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))
	router.Use(middleware.Timeout(a.config.Server.RequestTimeout))

	// Health check endpoint
	router.GET("/health", a.handlers.Health.Check)
	router.GET("/health/model", a.handlers.Health.Model)

	// Prometheus metrics endpoint
	if a.config.Monitoring.Enabled {
		router.GET(a.config.Monitoring.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	visitor := []gin.HandlerFunc{middleware.Identity(&a.config.Auth, a.logger)}
	if a.services.RateLimit != nil {
		visitor = append(visitor, middleware.RateLimit(a.services.RateLimit, a.logger))
	}

	router.GET("/recommendations", append(visitor, a.handlers.Recommendation.Get)...)

	// API routes
	api := router.Group("/api/v1")
	{
		api.Use(visitor...)

		api.GET("/recommendations", a.handlers.Recommendation.Get)

		products := api.Group("/products")
		{
			products.GET("", a.handlers.Product.List)
			products.GET("/:id", a.handlers.Product.Get)
		}
	}

	a.router = router
}
