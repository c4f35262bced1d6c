package services

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/temcen/quickrec/internal/catalog"
	"github.com/temcen/quickrec/internal/ml"
	"github.com/temcen/quickrec/pkg/models"
)

// SimilarityIndex is the content model: a cosine table over TF-IDF vectors of every
// product's combined text, indexed by catalog position.
type SimilarityIndex struct {
	catalog *catalog.Store
	matrix  *mat.SymDense
	state   ModelState
	reason  error
}

// BuildSimilarityIndex vectorizes the catalog and precomputes pairwise similarities.
// Failures never escape: the index is returned in the not-ready state instead.
func BuildSimilarityIndex(store *catalog.Store, logger *logrus.Logger) *SimilarityIndex {
	idx := &SimilarityIndex{catalog: store, state: StateNotReady}

	if store.Len() == 0 {
		idx.reason = fmt.Errorf("%w: empty catalog", ErrModelNotReady)
		logger.Warn("No products to train content-based model")
		return idx
	}

	vectorizer := ml.NewTFIDFVectorizer(ml.NewTokenizer())
	features, err := vectorizer.FitTransform(store.Texts())
	if err != nil {
		idx.reason = fmt.Errorf("%w: %v", ErrModelNotReady, err)
		logger.WithError(err).Warn("Failed to train content-based model")
		return idx
	}

	idx.matrix = ml.CosineSimilarity(features)
	idx.state = StateReady

	logger.WithFields(logrus.Fields{
		"products":   store.Len(),
		"vocabulary": len(vectorizer.Vocabulary()),
	}).Info("Content-based model trained and similarity matrix computed")

	return idx
}

func (i *SimilarityIndex) State() ModelState {
	if i == nil {
		return StateNotReady
	}
	return i.state
}

func (i *SimilarityIndex) Ready() bool {
	return i.State() == StateReady
}

// Reason explains why the index is not ready; nil when ready.
func (i *SimilarityIndex) Reason() error {
	if i == nil {
		return ErrModelNotReady
	}
	return i.reason
}

// Score returns the raw similarity between two catalog products.
func (i *SimilarityIndex) Score(a, b int64) (float64, bool) {
	if !i.Ready() {
		return 0, false
	}
	pa, okA := i.catalog.Position(a)
	pb, okB := i.catalog.Position(b)
	if !okA || !okB {
		return 0, false
	}
	return i.matrix.At(pa, pb), true
}

// SimilarTo returns up to count products most similar to productID, best first, ties by
// catalog position. The anchor itself is never included. A not-ready index or unknown
// anchor yields an empty list together with ErrModelNotReady or ErrUnknownAnchor.
func (i *SimilarityIndex) SimilarTo(productID int64, count int) ([]models.ScoredProduct, error) {
	if count <= 0 {
		return []models.ScoredProduct{}, nil
	}
	if !i.Ready() {
		return []models.ScoredProduct{}, i.Reason()
	}

	anchor, ok := i.catalog.Position(productID)
	if !ok {
		return []models.ScoredProduct{}, fmt.Errorf("%w: %d", ErrUnknownAnchor, productID)
	}

	type candidate struct {
		pos   int
		score float64
	}

	n := i.catalog.Len()
	candidates := make([]candidate, 0, n-1)
	for pos := 0; pos < n; pos++ {
		if pos == anchor {
			continue
		}
		candidates = append(candidates, candidate{pos: pos, score: i.matrix.At(anchor, pos)})
	}

	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].score != candidates[b].score {
			return candidates[a].score > candidates[b].score
		}
		return candidates[a].pos < candidates[b].pos
	})

	if len(candidates) > count {
		candidates = candidates[:count]
	}

	out := make([]models.ScoredProduct, len(candidates))
	for k, c := range candidates {
		out[k] = models.ScoredProduct{
			Product: i.catalog.At(c.pos),
			Score:   roundScore(c.score),
		}
	}
	return out, nil
}

func roundScore(s float64) float64 {
	return math.Round(s*1e4) / 1e4
}

// isDegradation reports whether err is a per-request content failure that should fall
// through to popularity.
func isDegradation(err error) bool {
	return errors.Is(err, ErrModelNotReady) || errors.Is(err, ErrUnknownAnchor)
}
