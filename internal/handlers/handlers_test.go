package handlers

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/temcen/quickrec/internal/services"
	"github.com/temcen/quickrec/pkg/models"
)

// MockRecommender is a mock implementation of services.RecommenderInterface
type MockRecommender struct {
	mock.Mock
}

func (m *MockRecommender) Recommend(ctx context.Context, req *services.RecommendRequest) (*services.RecommendResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*services.RecommendResult)
	return result, args.Error(1)
}

func (m *MockRecommender) Model() *services.Model {
	args := m.Called()
	model, _ := args.Get(0).(*services.Model)
	return model
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce noise in tests
	return logger
}

type fixedCatalog []models.Product

func (f fixedCatalog) Name() string { return "fixed:products" }

func (f fixedCatalog) LoadProducts(ctx context.Context) ([]models.Product, error) {
	return f, nil
}

type fixedInteractions []models.InteractionEvent

func (f fixedInteractions) Name() string { return "fixed:interactions" }

func (f fixedInteractions) LoadInteractions(ctx context.Context) ([]models.InteractionEvent, error) {
	return f, nil
}

func testProducts() []models.Product {
	return []models.Product{
		{ID: 101, Name: "Fresh Milk (1L)", Category: "Dairy & Eggs", Description: "Pure, pasteurized cow milk, sourced locally from trusted farms."},
		{ID: 103, Name: "Organic Eggs (6-pack)", Category: "Dairy & Eggs", Description: "Farm-fresh, large organic eggs, rich in protein."},
		{ID: 108, Name: "Diet Cola (2L)", Category: "Beverages", Description: "Refreshing, sugar-free cola, perfect for a guilt-free drink."},
		{ID: 111, Name: "Fresh Paneer (200g)", Category: "Dairy & Eggs", Description: "Soft, fresh cottage cheese, perfect for Indian dishes."},
	}
}

func buildModel(t *testing.T) *services.Model {
	t.Helper()
	events := fixedInteractions{
		{UserID: 1, ProductID: 108, Type: models.InteractionPurchase},
	}
	model := services.NewModelBuilder(fixedCatalog(testProducts()), events,
		services.NewMetrics(prometheus.NewRegistry()), testLogger()).Build(context.Background())
	require.True(t, model.Ready())
	return model
}

func scorePtr(v float64) *float64 { return &v }

func countPtr(v int) *int { return &v }
