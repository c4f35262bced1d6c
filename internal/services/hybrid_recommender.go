package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/temcen/quickrec/internal/config"
	"github.com/temcen/quickrec/pkg/models"
)

// RecommendPath names the branch a request took through the recommender.
type RecommendPath string

const (
	PathAnchor  RecommendPath = "anchor"
	PathUser    RecommendPath = "user"
	PathDefault RecommendPath = "default"
)

// RecommendRequest carries the optional visitor identity and anchor product.
type RecommendRequest struct {
	UserID    *int64 `json:"user_id,omitempty"`
	ProductID *int64 `json:"product_id,omitempty"`
	Count     int    `json:"count"`
}

type RecommendResult struct {
	Recommendations []models.Recommendation `json:"recommendations"`
	Path            RecommendPath           `json:"path"`
	Filled          bool                    `json:"filled"`
	CacheHit        bool                    `json:"cache_hit"`
	GeneratedAt     time.Time               `json:"generated_at"`
}

// HybridRecommender prefers content similarity when an anchor product is given, tops
// the list up from popularity, and uses popularity alone otherwise. It only reads the
// injected Model and is safe for concurrent use.
type HybridRecommender struct {
	model   *Model
	cache   ResultCache
	config  *config.RecommendationConfig
	metrics *Metrics
	logger  *logrus.Logger
}

func NewHybridRecommender(
	model *Model,
	cache ResultCache,
	cfg *config.RecommendationConfig,
	metrics *Metrics,
	logger *logrus.Logger,
) *HybridRecommender {
	settings := config.RecommendationConfig{}
	if cfg != nil {
		settings = *cfg
	}
	if settings.FillMin <= 0 {
		settings.FillMin = 10
	}
	return &HybridRecommender{
		model:   model,
		cache:   cache,
		config:  &settings,
		metrics: metrics,
		logger:  logger,
	}
}

func (h *HybridRecommender) Model() *Model {
	return h.model
}

// Recommend returns at most req.Count products without duplicates. An empty list is a
// valid outcome; ErrNotInitialized is the only error returned.
func (h *HybridRecommender) Recommend(ctx context.Context, req *RecommendRequest) (*RecommendResult, error) {
	if !h.model.Ready() {
		return nil, ErrNotInitialized
	}

	start := time.Now()
	result := &RecommendResult{
		Recommendations: []models.Recommendation{},
		Path:            selectPath(req),
		GeneratedAt:     start,
	}
	if req.Count <= 0 {
		return result, nil
	}

	cacheKey := h.cacheKey(req)
	if cached, ok := h.getCached(ctx, cacheKey); ok {
		result.Recommendations = cached
		result.CacheHit = true
		result.Filled = result.Path == PathAnchor && wasFilled(cached, req.Count)
		h.metrics.ObserveRecommendation(result.Path, len(cached), time.Since(start))
		return result, nil
	}

	switch result.Path {
	case PathAnchor:
		result.Recommendations, result.Filled = h.recommendForAnchor(*req.ProductID, req.Count)
	case PathUser:
		h.logger.WithField("user_id", *req.UserID).
			Debug("No personalized model for user, falling back to popularity")
		result.Recommendations = popularityRecommendations(h.model.Popularity.TopPopular(req.Count))
	default:
		h.logger.Debug("No product or user context, recommending popular items")
		result.Recommendations = popularityRecommendations(h.model.Popularity.TopPopular(req.Count))
	}

	if len(result.Recommendations) > req.Count {
		result.Recommendations = result.Recommendations[:req.Count]
	}

	h.setCached(ctx, cacheKey, result.Recommendations)
	h.metrics.ObserveRecommendation(result.Path, len(result.Recommendations), time.Since(start))

	return result, nil
}

func selectPath(req *RecommendRequest) RecommendPath {
	switch {
	case req.ProductID != nil:
		return PathAnchor
	case req.UserID != nil:
		return PathUser
	default:
		return PathDefault
	}
}

// recommendForAnchor ranks by content similarity, then fills from popularity. The
// popularity request is over-fetched so entries already taken do not starve the fill.
func (h *HybridRecommender) recommendForAnchor(productID int64, count int) ([]models.Recommendation, bool) {
	recs := make([]models.Recommendation, 0, count)
	// The anchor is seeded so the fill never recommends it back.
	seen := map[int64]struct{}{productID: {}}

	similar, err := h.model.Similarity.SimilarTo(productID, count)
	if err != nil {
		fields := logrus.Fields{"product_id": productID}
		switch {
		case errors.Is(err, ErrUnknownAnchor):
			h.metrics.IncDegradation("unknown_anchor")
			h.logger.WithFields(fields).Info("Product not found for content-based recommendation")
		case isDegradation(err):
			h.metrics.IncDegradation("model_not_ready")
			h.logger.WithFields(fields).WithError(err).Warn("Content-based model not ready")
		default:
			h.logger.WithFields(fields).WithError(err).Error("Content-based lookup failed")
		}
	} else if anchor, ok := h.model.Catalog.Lookup(productID); ok {
		h.logger.WithFields(logrus.Fields{
			"product_id": productID,
			"name":       anchor.Name,
		}).Debug("Generating hybrid recommendations for anchor product")
	}

	for _, sp := range similar {
		if _, dup := seen[sp.Product.ID]; dup {
			continue
		}
		seen[sp.Product.ID] = struct{}{}
		score := sp.Score
		recs = append(recs, models.Recommendation{
			ProductID:       sp.Product.ID,
			Name:            sp.Product.Name,
			Category:        sp.Product.Category,
			SimilarityScore: &score,
			Source:          models.SourceContent,
		})
	}

	if len(recs) >= count {
		return recs, false
	}

	h.metrics.IncFill()
	h.logger.WithFields(logrus.Fields{
		"product_id": productID,
		"content":    len(recs),
		"requested":  count,
	}).Debug("Filling with popularity-based recommendations")

	for _, rec := range popularityRecommendations(h.model.Popularity.TopPopular(max(count, h.config.FillMin))) {
		if len(recs) >= count {
			break
		}
		if _, dup := seen[rec.ProductID]; dup {
			continue
		}
		seen[rec.ProductID] = struct{}{}
		recs = append(recs, rec)
	}

	return recs, true
}

// wasFilled reports whether an anchor list needed the popularity tier: content alone
// always yields exactly count entries when it suffices.
func wasFilled(recs []models.Recommendation, count int) bool {
	if len(recs) < count {
		return true
	}
	for _, rec := range recs {
		if rec.Source == models.SourcePopularity {
			return true
		}
	}
	return false
}

func popularityRecommendations(popular []models.PopularProduct) []models.Recommendation {
	recs := make([]models.Recommendation, len(popular))
	for i, pp := range popular {
		count := pp.PurchaseCount
		recs[i] = models.Recommendation{
			ProductID:     pp.Product.ID,
			Name:          pp.Product.Name,
			Category:      pp.Product.Category,
			PurchaseCount: &count,
			Source:        models.SourcePopularity,
		}
	}
	return recs
}

// cacheKey ignores the user id: the user and default paths share one answer.
func (h *HybridRecommender) cacheKey(req *RecommendRequest) string {
	anchor := "none"
	if req.ProductID != nil {
		anchor = fmt.Sprintf("%d", *req.ProductID)
	}
	return fmt.Sprintf("recs:%s:%s:%d", h.model.BuildID, anchor, req.Count)
}

func (h *HybridRecommender) getCached(ctx context.Context, key string) ([]models.Recommendation, bool) {
	if h.cache == nil {
		return nil, false
	}
	recs, ok, err := h.cache.Get(ctx, key)
	if err != nil {
		h.metrics.IncCache("error")
		h.logger.WithError(err).WithField("key", key).Warn("Recommendation cache read failed")
		return nil, false
	}
	if !ok {
		h.metrics.IncCache("miss")
		return nil, false
	}
	h.metrics.IncCache("hit")
	return recs, true
}

func (h *HybridRecommender) setCached(ctx context.Context, key string, recs []models.Recommendation) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Set(ctx, key, recs, h.config.CacheTTL); err != nil {
		h.logger.WithError(err).WithField("key", key).Warn("Recommendation cache write failed")
	}
}
