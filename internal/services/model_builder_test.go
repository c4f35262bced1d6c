package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/quickrec/internal/catalog"
	"github.com/temcen/quickrec/pkg/models"
)

func build(catalogSource CatalogSource, interactionSource InteractionSource) *Model {
	return NewModelBuilder(catalogSource, interactionSource, NewMetrics(prometheus.NewRegistry()), testLogger()).
		Build(context.Background())
}

func TestModelBuilder_Build(t *testing.T) {
	model := build(
		&staticCatalogSource{products: quickCommerceCatalog()},
		&staticInteractionSource{events: quickCommerceEvents()},
	)

	require.True(t, model.Ready())
	assert.NoError(t, model.Err())
	assert.Equal(t, StateReady, model.State())
	assert.Equal(t, 15, model.Catalog.Len())
	assert.Equal(t, 12, model.Interactions.Len())
	assert.True(t, model.Similarity.Ready())
	assert.Equal(t, StateReady, model.Popularity.State())
	assert.NotEqual(t, uuid.Nil, model.BuildID)
}

func TestModelBuilder_Unavailable(t *testing.T) {
	tests := []struct {
		name        string
		catalog     *staticCatalogSource
		interaction *staticInteractionSource
		cause       error
	}{
		{
			name:        "catalog missing",
			catalog:     &staticCatalogSource{err: fmt.Errorf("open catalog file: %w", fs.ErrNotExist)},
			interaction: &staticInteractionSource{events: quickCommerceEvents()},
			cause:       fs.ErrNotExist,
		},
		{
			name:        "catalog malformed",
			catalog:     &staticCatalogSource{err: fmt.Errorf("%w: bad id", catalog.ErrMalformedSource)},
			interaction: &staticInteractionSource{events: quickCommerceEvents()},
			cause:       catalog.ErrMalformedSource,
		},
		{
			name:        "interactions unreachable",
			catalog:     &staticCatalogSource{products: quickCommerceCatalog()},
			interaction: &staticInteractionSource{err: errors.New("connection refused")},
		},
		{
			name: "duplicate product ids",
			catalog: &staticCatalogSource{products: []models.Product{
				{ID: 1, Name: "Milk"},
				{ID: 1, Name: "Bread"},
			}},
			interaction: &staticInteractionSource{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := build(tt.catalog, tt.interaction)

			require.NotNil(t, model)
			assert.False(t, model.Ready())
			assert.Equal(t, StateUnavailable, model.State())
			assert.ErrorIs(t, model.Err(), ErrBuildUnavailable)
			if tt.cause != nil {
				assert.ErrorIs(t, model.Err(), tt.cause)
			}
		})
	}
}

func TestModelBuilder_MalformedInteractionsDegrade(t *testing.T) {
	model := build(
		&staticCatalogSource{products: quickCommerceCatalog()},
		&staticInteractionSource{err: fmt.Errorf("%w: missing column user_id", catalog.ErrMalformedSource)},
	)

	require.True(t, model.Ready())
	assert.Equal(t, StateDegraded, model.State())
	assert.Equal(t, StateDegraded, model.Popularity.State())
	assert.True(t, model.Similarity.Ready())
	assert.Zero(t, model.Interactions.Len())

	top := model.Popularity.TopPopular(2)
	assert.Equal(t, int64(101), top[0].Product.ID)
	assert.Zero(t, top[0].PurchaseCount)
}

func TestModelBuilder_EmptySources(t *testing.T) {
	model := build(&staticCatalogSource{}, &staticInteractionSource{})

	require.True(t, model.Ready())
	assert.Equal(t, StateDegraded, model.State())
	assert.False(t, model.Similarity.Ready())
	assert.Equal(t, 0, model.Popularity.Len())
}

func TestModel_NilIsNotInitialized(t *testing.T) {
	var model *Model
	assert.False(t, model.Ready())
	assert.ErrorIs(t, model.Err(), ErrNotInitialized)
	assert.Equal(t, StateUnavailable, model.State())
}
