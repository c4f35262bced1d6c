package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaValidator_ProductCatalog(t *testing.T) {
	sv, err := NewSchemaValidator()
	require.NoError(t, err)

	assert.Equal(t, []string{ProductCatalogSchema, RecommendationListSchema}, sv.GetAvailableSchemas())

	tests := []struct {
		name  string
		doc   string
		valid bool
	}{
		{"valid catalog", `[{"product_id": 101, "name": "Fresh Milk (1L)", "category": "Dairy & Eggs", "description": null}]`, true},
		{"empty catalog", `[]`, true},
		{"zero id", `[{"product_id": 0, "name": "Milk"}]`, true},
		{"missing id", `[{"name": "Butter"}]`, false},
		{"string id", `[{"product_id": "101"}]`, false},
		{"not an array", `{"product_id": 1}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sv.ValidateProductCatalog([]byte(tt.doc))
			assert.Equal(t, tt.valid, result.Valid)
			if tt.valid {
				assert.NoError(t, result.Err())
			} else {
				assert.Error(t, result.Err())
			}
		})
	}
}

func TestSchemaValidator_RecommendationList(t *testing.T) {
	sv, err := NewSchemaValidator()
	require.NoError(t, err)

	valid := `[
		{"product_id": 113, "name": "Curd (400g)", "category": "Dairy & Eggs", "similarity_score": 0.31, "source": "content"},
		{"product_id": 106, "name": "Basmati Rice (1kg)", "category": "Staples", "purchase_count": 12, "source": "popularity"}
	]`
	assert.True(t, sv.ValidateRecommendationList(valid).Valid)

	both := `[{"product_id": 1, "name": "x", "category": "y", "similarity_score": 0.5, "purchase_count": 1, "source": "content"}]`
	assert.False(t, sv.ValidateRecommendationList(both).Valid)
}
