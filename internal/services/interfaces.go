package services

import (
	"context"
	"time"

	"github.com/temcen/quickrec/pkg/models"
)

// CatalogSource loads the full product catalog in a stable order.
type CatalogSource interface {
	Name() string
	LoadProducts(ctx context.Context) ([]models.Product, error)
}

// InteractionSource loads the historical interaction log. Errors wrapping
// catalog.ErrMalformedSource degrade popularity instead of failing the build.
type InteractionSource interface {
	Name() string
	LoadInteractions(ctx context.Context) ([]models.InteractionEvent, error)
}

// ResultCache stores finished recommendation lists.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]models.Recommendation, bool, error)
	Set(ctx context.Context, key string, recs []models.Recommendation, ttl time.Duration) error
	Ping(ctx context.Context) error
}

// RecommenderInterface is the operation exposed to the HTTP layer.
type RecommenderInterface interface {
	Recommend(ctx context.Context, req *RecommendRequest) (*RecommendResult, error)
	Model() *Model
}
