package services

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/temcen/quickrec/internal/config"
	"github.com/temcen/quickrec/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func quickCommerceCatalog() []models.Product {
	return []models.Product{
		{ID: 101, Name: "Fresh Milk (1L)", Category: "Dairy & Eggs", Description: "Pure, pasteurized cow milk, sourced locally from trusted farms."},
		{ID: 102, Name: "Whole Wheat Bread", Category: "Bakery", Description: "Soft and nutritious bread, perfect for sandwiches and toast."},
		{ID: 103, Name: "Organic Eggs (6-pack)", Category: "Dairy & Eggs", Description: "Farm-fresh, large organic eggs, rich in protein."},
		{ID: 104, Name: "Butter (250g)", Category: "Dairy & Eggs", Description: "Creamy, unsalted butter for cooking and spreading."},
		{ID: 105, Name: "Chicken Breast (500g)", Category: "Meat & Seafood", Description: "Boneless, skinless chicken breast, ideal for grilling and curries."},
		{ID: 106, Name: "Basmati Rice (1kg)", Category: "Staples", Description: "Premium quality long-grain basmati rice for biryani and pulao."},
		{ID: 107, Name: "Tomato Ketchup (500g)", Category: "Sauces & Spreads", Description: "Classic tomato ketchup, great with snacks and meals."},
		{ID: 108, Name: "Diet Cola (2L)", Category: "Beverages", Description: "Refreshing, sugar-free cola, perfect for a guilt-free drink."},
		{ID: 109, Name: "Potato Chips (Large)", Category: "Snacks", Description: "Crispy, salted potato chips, the ultimate snack."},
		{ID: 110, Name: "Dish Soap (Lemon)", Category: "Home Essentials", Description: "Powerful dishwashing liquid with a refreshing lemon scent."},
		{ID: 111, Name: "Fresh Paneer (200g)", Category: "Dairy & Eggs", Description: "Soft, fresh cottage cheese, perfect for Indian dishes."},
		{ID: 112, Name: "Ghee (500ml)", Category: "Dairy & Eggs", Description: "Traditional Indian clarified butter, aromatic and healthy."},
		{ID: 113, Name: "Curd (400g)", Category: "Dairy & Eggs", Description: "Thick and creamy yogurt, great for raita or as a side."},
		{ID: 114, Name: "Mineral Water (1L)", Category: "Beverages", Description: "Pure, filtered mineral water for daily hydration."},
		{ID: 115, Name: "Instant Noodles (Pack)", Category: "Ready Meals", Description: "Quick and easy to prepare noodles, a popular snack."},
	}
}

// quickCommerceEvents yields purchase counts 105:3, 101:2, 108:2, 110:1. Views, carts
// and the orphan product 999 must not affect the ranking.
func quickCommerceEvents() []models.InteractionEvent {
	ts := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	ev := func(user, product int64, kind models.InteractionType) models.InteractionEvent {
		return models.InteractionEvent{UserID: user, ProductID: product, Type: kind, Timestamp: ts}
	}
	return []models.InteractionEvent{
		ev(1, 105, models.InteractionPurchase),
		ev(2, 105, models.InteractionPurchase),
		ev(3, 105, models.InteractionPurchase),
		ev(1, 108, models.InteractionPurchase),
		ev(4, 101, models.InteractionPurchase),
		ev(5, 101, models.InteractionPurchase),
		ev(6, 108, models.InteractionPurchase),
		ev(7, 110, models.InteractionPurchase),
		ev(7, 103, models.InteractionView),
		ev(7, 103, models.InteractionView),
		ev(8, 103, models.InteractionAddToCart),
		ev(9, 999, models.InteractionPurchase),
	}
}

type staticCatalogSource struct {
	products []models.Product
	err      error
}

func (s *staticCatalogSource) Name() string { return "static:products" }

func (s *staticCatalogSource) LoadProducts(ctx context.Context) ([]models.Product, error) {
	return s.products, s.err
}

type staticInteractionSource struct {
	events []models.InteractionEvent
	err    error
}

func (s *staticInteractionSource) Name() string { return "static:interactions" }

func (s *staticInteractionSource) LoadInteractions(ctx context.Context) ([]models.InteractionEvent, error) {
	return s.events, s.err
}

func buildTestModel(t *testing.T, products []models.Product, events []models.InteractionEvent) *Model {
	t.Helper()
	builder := NewModelBuilder(
		&staticCatalogSource{products: products},
		&staticInteractionSource{events: events},
		NewMetrics(prometheus.NewRegistry()),
		testLogger(),
	)
	model := builder.Build(context.Background())
	require.True(t, model.Ready(), "model build failed: %v", model.Err())
	return model
}

func newTestRecommender(model *Model, cache ResultCache) *HybridRecommender {
	return NewHybridRecommender(
		model,
		cache,
		&config.RecommendationConfig{FillMin: 10, CacheTTL: time.Minute},
		NewMetrics(prometheus.NewRegistry()),
		testLogger(),
	)
}

type memoryCache struct {
	mu     sync.Mutex
	data   map[string][]models.Recommendation
	getErr error
	sets   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]models.Recommendation)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]models.Recommendation, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	recs, ok := c.data[key]
	return recs, ok, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, recs []models.Recommendation, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = recs
	c.sets++
	return nil
}

func (c *memoryCache) Ping(ctx context.Context) error { return nil }

func productIDs(recs []models.Recommendation) []int64 {
	ids := make([]int64, len(recs))
	for i, r := range recs {
		ids[i] = r.ProductID
	}
	return ids
}

func int64Ptr(v int64) *int64 { return &v }
