package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/quickrec/internal/catalog"
	"github.com/temcen/quickrec/pkg/models"
)

func newIndex(t *testing.T, products []models.Product) *SimilarityIndex {
	t.Helper()
	store, err := catalog.NewStore(products)
	require.NoError(t, err)
	return BuildSimilarityIndex(store, testLogger())
}

func TestSimilarityIndex_FreshMilkNeighbours(t *testing.T) {
	idx := newIndex(t, quickCommerceCatalog())
	require.True(t, idx.Ready())

	similar, err := idx.SimilarTo(101, 5)
	require.NoError(t, err)
	require.Len(t, similar, 5)

	expected := []struct {
		id    int64
		score float64
	}{
		{111, 0.1665},
		{103, 0.1579},
		{114, 0.1157},
		{113, 0.0789},
		{112, 0.0686},
	}
	for i, want := range expected {
		assert.Equal(t, want.id, similar[i].Product.ID, "position %d", i)
		assert.InDelta(t, want.score, similar[i].Score, 1e-4, "position %d", i)
	}
}

func TestSimilarityIndex_TiesFollowCatalogOrder(t *testing.T) {
	idx := newIndex(t, quickCommerceCatalog())

	similar, err := idx.SimilarTo(101, 14)
	require.NoError(t, err)
	require.Len(t, similar, 14)

	// After the six products sharing terms with milk, every score is zero.
	var tail []int64
	for _, sp := range similar[6:] {
		assert.Zero(t, sp.Score)
		tail = append(tail, sp.Product.ID)
	}
	assert.Equal(t, []int64{102, 105, 106, 107, 108, 109, 110, 115}, tail)
}

func TestSimilarityIndex_NeverReturnsAnchor(t *testing.T) {
	products := quickCommerceCatalog()
	idx := newIndex(t, products)

	for _, p := range products {
		similar, err := idx.SimilarTo(p.ID, len(products)+5)
		require.NoError(t, err)
		assert.Len(t, similar, len(products)-1)

		seen := make(map[int64]bool)
		for i, sp := range similar {
			assert.NotEqual(t, p.ID, sp.Product.ID)
			assert.False(t, seen[sp.Product.ID], "duplicate %d", sp.Product.ID)
			seen[sp.Product.ID] = true
			if i > 0 {
				assert.LessOrEqual(t, sp.Score, similar[i-1].Score)
			}
		}
	}
}

func TestSimilarityIndex_NonPositiveCount(t *testing.T) {
	idx := newIndex(t, quickCommerceCatalog())

	for _, count := range []int{0, -3} {
		similar, err := idx.SimilarTo(101, count)
		assert.NoError(t, err)
		assert.Empty(t, similar)
	}
}

func TestSimilarityIndex_UnknownAnchor(t *testing.T) {
	idx := newIndex(t, quickCommerceCatalog())

	similar, err := idx.SimilarTo(999, 5)
	assert.ErrorIs(t, err, ErrUnknownAnchor)
	assert.NotNil(t, similar)
	assert.Empty(t, similar)
}

func TestSimilarityIndex_NotReady(t *testing.T) {
	tests := []struct {
		name     string
		products []models.Product
	}{
		{"empty catalog", nil},
		{"no usable terms", []models.Product{
			{ID: 1, Name: "The", Category: "a"},
			{ID: 2, Name: "of", Description: "x"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := newIndex(t, tt.products)

			assert.False(t, idx.Ready())
			assert.Equal(t, StateNotReady, idx.State())
			assert.ErrorIs(t, idx.Reason(), ErrModelNotReady)

			similar, err := idx.SimilarTo(1, 5)
			assert.ErrorIs(t, err, ErrModelNotReady)
			assert.Empty(t, similar)
		})
	}
}

func TestSimilarityIndex_ScoreIsSymmetric(t *testing.T) {
	idx := newIndex(t, quickCommerceCatalog())

	ab, ok := idx.Score(101, 111)
	require.True(t, ok)
	ba, ok := idx.Score(111, 101)
	require.True(t, ok)
	assert.Equal(t, ab, ba)

	self, ok := idx.Score(101, 101)
	require.True(t, ok)
	assert.InDelta(t, 1.0, self, 1e-9)

	_, ok = idx.Score(101, 999)
	assert.False(t, ok)
}
