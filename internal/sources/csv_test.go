package sources

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/quickrec/internal/catalog"
	"github.com/temcen/quickrec/pkg/models"
)

func TestCSVCatalogSource_Read(t *testing.T) {
	input := "\ufeffproduct_id,name,category,description\n" +
		"101,Fresh Milk,Dairy,\"Farm fresh, full cream\"\n" +
		"102,Brown Bread,,\n"

	source := NewCSVCatalogSource("products.csv", quietLogger())
	products, err := source.read(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, models.Product{ID: 101, Name: "Fresh Milk", Category: "Dairy", Description: "Farm fresh, full cream"}, products[0])
	assert.Equal(t, models.Product{ID: 102, Name: "Brown Bread"}, products[1])
}

func TestCSVCatalogSource_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing id column", "name,category\nMilk,Dairy\n"},
		{"non numeric id", "product_id,name\nabc,Milk\n"},
		{"unterminated quote", "product_id,name\n101,\"Milk\n"},
	}

	source := NewCSVCatalogSource("products.csv", quietLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := source.read(context.Background(), strings.NewReader(tt.input))
			assert.ErrorIs(t, err, catalog.ErrMalformedSource)
		})
	}
}

func TestCSVCatalogSource_NonPositiveIDs(t *testing.T) {
	input := "product_id,name,category,description\n" +
		"0,Milk,Dairy,Full cream\n" +
		"1,Eggs,Dairy,Free range\n" +
		"-7,Butter,Dairy,\n"

	source := NewCSVCatalogSource("products.csv", quietLogger())
	products, err := source.read(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, products, 3)
	assert.Equal(t, int64(0), products[0].ID)
	assert.Equal(t, "Milk", products[0].Name)
	assert.Equal(t, int64(1), products[1].ID)
	assert.Equal(t, int64(-7), products[2].ID)

	store, err := catalog.NewStore(products)
	require.NoError(t, err)
	pos, ok := store.Position(0)
	assert.True(t, ok)
	assert.Equal(t, 0, pos)
}

func TestCSVCatalogSource_EmptyFile(t *testing.T) {
	source := NewCSVCatalogSource("products.csv", quietLogger())
	products, err := source.read(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestCSVCatalogSource_MissingFile(t *testing.T) {
	source := NewCSVCatalogSource(filepath.Join(t.TempDir(), "missing.csv"), quietLogger())
	_, err := source.LoadProducts(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotErrorIs(t, err, catalog.ErrMalformedSource)
}

func TestCSVInteractionSource_Read(t *testing.T) {
	input := "user_id,product_id,interaction_type,timestamp\n" +
		"1,101,purchase,2026-10-01 12:30:00\n" +
		"2,102.0,view,2026-10-02T08:00:00Z\n" +
		"x,103,view,2026-10-02\n" +
		"3,104,wishlist,2026-10-02\n" +
		"4,105,add_to_cart,not-a-time\n"

	source := NewCSVInteractionSource("user_interactions.csv", quietLogger())
	events, err := source.read(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, int64(101), events[0].ProductID)
	assert.Equal(t, models.InteractionPurchase, events[0].Type)
	assert.Equal(t, time.Date(2026, 10, 1, 12, 30, 0, 0, time.UTC), events[0].Timestamp)
	assert.Equal(t, int64(102), events[1].ProductID)
	assert.Equal(t, models.InteractionAddToCart, events[2].Type)
	assert.True(t, events[2].Timestamp.IsZero())
}

func TestCSVInteractionSource_MissingColumn(t *testing.T) {
	source := NewCSVInteractionSource("user_interactions.csv", quietLogger())
	_, err := source.read(context.Background(), strings.NewReader("user_id,product_id\n1,101\n"))
	assert.ErrorIs(t, err, catalog.ErrMalformedSource)
}

func TestCSVInteractionSource_LoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_interactions.csv")
	content := "user_id,product_id,interaction_type,timestamp\n1,101,purchase,2026-10-01\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	source := NewCSVInteractionSource(path, quietLogger())
	events, err := source.LoadInteractions(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, "csv:"+path, source.Name())
}

func TestParseID(t *testing.T) {
	id, err := parseID(" 101.0 ")
	require.NoError(t, err)
	assert.Equal(t, int64(101), id)

	_, err = parseID("101.5")
	assert.Error(t, err)

	_, err = parseID("")
	assert.Error(t, err)
}
