package services

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/temcen/quickrec/internal/catalog"
	"github.com/temcen/quickrec/pkg/models"
)

// PopularityRanking orders every catalog product by purchase count, descending, with
// catalog order breaking ties. Products without purchases are kept with a count of 0.
type PopularityRanking struct {
	entries []models.PopularProduct
	state   ModelState
}

// BuildPopularityRanking joins purchase counts from events onto the catalog. A non-nil
// logErr means the interaction source was malformed; the ranking then falls back to all
// zero counts in catalog order and is tagged degraded.
func BuildPopularityRanking(
	store *catalog.Store,
	events *catalog.InteractionLog,
	logErr error,
	logger *logrus.Logger,
) *PopularityRanking {
	r := &PopularityRanking{
		entries: make([]models.PopularProduct, store.Len()),
		state:   StateReady,
	}

	var counts map[int64]int
	switch {
	case logErr != nil:
		logger.WithError(logErr).Warn("Interaction log malformed, popularity set to zero for all products")
		r.state = StateDegraded
	case events.Len() == 0:
		logger.Info("No interaction data, popularity set to zero for all products")
	default:
		counts = events.CountByType(models.InteractionPurchase)
	}

	for pos, p := range store.Products() {
		r.entries[pos] = models.PopularProduct{Product: p, PurchaseCount: counts[p.ID]}
	}

	sort.SliceStable(r.entries, func(a, b int) bool {
		return r.entries[a].PurchaseCount > r.entries[b].PurchaseCount
	})

	logger.WithFields(logrus.Fields{
		"products": len(r.entries),
		"state":    r.state,
	}).Info("Product popularity calculated")

	return r
}

func (r *PopularityRanking) State() ModelState {
	if r == nil {
		return StateNotReady
	}
	return r.state
}

func (r *PopularityRanking) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// TopPopular returns the first count entries of the ranking.
func (r *PopularityRanking) TopPopular(count int) []models.PopularProduct {
	if r == nil || count <= 0 || len(r.entries) == 0 {
		return []models.PopularProduct{}
	}
	if count > len(r.entries) {
		count = len(r.entries)
	}
	out := make([]models.PopularProduct, count)
	copy(out, r.entries[:count])
	return out
}
