// Package seed produces the demo quick-commerce catalog and a deterministic synthetic
// interaction log for local runs.
package seed

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/temcen/quickrec/pkg/models"
)

const TimestampLayout = "2006-01-02 15:04:05.000000"

type Options struct {
	Users        int
	Interactions int
	Days         int
	Seed         uint64
	Now          time.Time
}

func DefaultOptions() Options {
	return Options{
		Users:        50,
		Interactions: 1000,
		Days:         30,
		Seed:         42,
		Now:          time.Now().UTC(),
	}
}

func Catalog() []models.Product {
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

// interactionMix is the view/add_to_cart/purchase split.
var interactionMix = []struct {
	kind   models.InteractionType
	weight float64
}{
	{models.InteractionView, 0.6},
	{models.InteractionAddToCart, 0.2},
	{models.InteractionPurchase, 0.2},
}

// GenerateInteractions draws events for random users over the catalog. Product weights
// come from a flat Dirichlet draw so a few products dominate. The same options always
// produce the same events.
func GenerateInteractions(products []models.Product, opts Options) []models.InteractionEvent {
	if len(products) == 0 || opts.Interactions <= 0 || opts.Users <= 0 {
		return []models.InteractionEvent{}
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	weights := dirichlet(rng, len(products))

	window := time.Duration(opts.Days) * 24 * time.Hour
	start := opts.Now.Add(-window)

	events := make([]models.InteractionEvent, opts.Interactions)
	for i := range events {
		offset := time.Duration(rng.Int64N(int64(window) + 1)).Truncate(time.Microsecond)
		events[i] = models.InteractionEvent{
			UserID:    int64(rng.IntN(opts.Users) + 1),
			ProductID: products[pick(rng, weights)].ID,
			Type:      pickInteraction(rng),
			Timestamp: start.Add(offset),
		}
	}
	return events
}

func dirichlet(rng *rand.Rand, n int) []float64 {
	weights := make([]float64, n)
	total := 0.0
	for i := range weights {
		weights[i] = rng.ExpFloat64()
		total += weights[i]
	}
	for i := range weights {
		weights[i] /= total
	}
	return weights
}

func pick(rng *rand.Rand, weights []float64) int {
	r := rng.Float64()
	for i, w := range weights {
		if r < w {
			return i
		}
		r -= w
	}
	return len(weights) - 1
}

func pickInteraction(rng *rand.Rand) models.InteractionType {
	r := rng.Float64()
	for _, m := range interactionMix {
		if r < m.weight {
			return m.kind
		}
		r -= m.weight
	}
	return interactionMix[len(interactionMix)-1].kind
}

func WriteProductsCSV(w io.Writer, products []models.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"product_id", "name", "category", "description"}); err != nil {
		return err
	}
	for _, p := range products {
		record := []string{strconv.FormatInt(p.ID, 10), p.Name, p.Category, p.Description}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write product %d: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteInteractionsCSV(w io.Writer, events []models.InteractionEvent) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"user_id", "product_id", "interaction_type", "timestamp"}); err != nil {
		return err
	}
	for _, e := range events {
		record := []string{
			strconv.FormatInt(e.UserID, 10),
			strconv.FormatInt(e.ProductID, 10),
			string(e.Type),
			e.Timestamp.Format(TimestampLayout),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
