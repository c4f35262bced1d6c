package services

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/temcen/quickrec/internal/config"
	"github.com/temcen/quickrec/internal/database"
	"github.com/temcen/quickrec/internal/messaging"
	"github.com/temcen/quickrec/internal/sources"
	"github.com/temcen/quickrec/internal/validation"
)

type Services struct {
	Metrics     *Metrics
	Model       *Model
	Cache       ResultCache
	Recommender *HybridRecommender
	Health      *HealthService
	RateLimit   *RateLimitService
}

// New wires the configured sources, builds the model and assembles the recommender. A
// failed build is not an error here: the returned Model reports it and every query
// answers ErrNotInitialized. Errors are reserved for invalid configuration.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger, db *database.Database, reg prometheus.Registerer) (*Services, error) {
	catalogSource, err := newCatalogSource(cfg, db, logger)
	if err != nil {
		return nil, err
	}
	interactionSource, err := newInteractionSource(cfg, db, logger)
	if err != nil {
		return nil, err
	}

	metrics := NewMetrics(reg)

	buildCtx := ctx
	if cfg.Data.LoadTimeout > 0 {
		var cancel context.CancelFunc
		buildCtx, cancel = context.WithTimeout(ctx, cfg.Data.LoadTimeout)
		defer cancel()
	}
	model := NewModelBuilder(catalogSource, interactionSource, metrics, logger).Build(buildCtx)

	var cache ResultCache
	if db != nil && db.Redis != nil {
		cache = NewRedisResultCache(db.Redis, cfg.Redis.KeyPrefix)
	}

	health := NewHealthService(model, metrics, logger)
	if cache != nil {
		health.AddDependency("redis", cache.Ping)
	}
	if db != nil && db.PG != nil {
		health.AddDependency("postgresql", db.PG.Ping)
	}

	var rateLimit *RateLimitService
	if cfg.Security.RateLimit.Enabled && db != nil && db.Redis != nil {
		rateLimit = NewRateLimitService(cfg.Security.RateLimit, cfg.Redis.KeyPrefix, logger, db.Redis)
	}

	return &Services{
		Metrics:     metrics,
		Model:       model,
		Cache:       cache,
		Recommender: NewHybridRecommender(model, cache, &cfg.Recommendation, metrics, logger),
		Health:      health,
		RateLimit:   rateLimit,
	}, nil
}

func newCatalogSource(cfg *config.Config, db *database.Database, logger *logrus.Logger) (CatalogSource, error) {
	switch cfg.Data.CatalogSource {
	case "", "csv":
		return sources.NewCSVCatalogSource(cfg.Data.ProductsFile, logger), nil
	case "json":
		validator, err := validation.NewSchemaValidator()
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog schema: %w", err)
		}
		return sources.NewJSONCatalogSource(cfg.Data.CatalogJSONFile, validator, logger), nil
	case "postgres":
		if db == nil || db.PG == nil {
			return nil, fmt.Errorf("catalog source postgres requires a database connection")
		}
		return sources.NewPostgresCatalogSource(db.PG, logger), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Data.CatalogSource)
	}
}

func newInteractionSource(cfg *config.Config, db *database.Database, logger *logrus.Logger) (InteractionSource, error) {
	switch cfg.Data.InteractionSource {
	case "", "csv":
		return sources.NewCSVInteractionSource(cfg.Data.InteractionsFile, logger), nil
	case "postgres":
		if db == nil || db.PG == nil {
			return nil, fmt.Errorf("interaction source postgres requires a database connection")
		}
		return sources.NewPostgresInteractionSource(db.PG, logger), nil
	case "kafka":
		return messaging.NewInteractionStream(&cfg.Kafka, logger), nil
	default:
		return nil, fmt.Errorf("unknown interaction source %q", cfg.Data.InteractionSource)
	}
}
