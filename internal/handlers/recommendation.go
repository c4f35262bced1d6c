package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/temcen/quickrec/internal/config"
	"github.com/temcen/quickrec/internal/middleware"
	"github.com/temcen/quickrec/internal/services"
	"github.com/temcen/quickrec/pkg/models"
)

const noRecommendationsMessage = "No recommendations available for the given criteria."

type RecommendationHandler struct {
	recommender services.RecommenderInterface
	config      *config.RecommendationConfig
	validator   *validator.Validate
	logger      *logrus.Logger
}

func NewRecommendationHandler(
	recommender services.RecommenderInterface,
	cfg *config.RecommendationConfig,
	logger *logrus.Logger,
) *RecommendationHandler {
	return &RecommendationHandler{
		recommender: recommender,
		config:      cfg,
		validator:   validator.New(),
		logger:      logger,
	}
}

// Get serves GET /recommendations?user_id=&product_id=&num_recommendations=.
func (h *RecommendationHandler) Get(c *gin.Context) {
	query := models.RecommendationQuery{Count: h.config.DefaultCount}
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST",
			"user_id, product_id and num_recommendations must be integers")
		return
	}
	if err := h.validator.Struct(query); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST",
			"num_recommendations must be a positive integer")
		return
	}

	if h.config.MaxCount > 0 && query.Count > h.config.MaxCount {
		query.Count = h.config.MaxCount
	}

	if query.UserID == nil {
		if userID, ok := middleware.UserIDFromContext(c); ok {
			query.UserID = &userID
		}
	}

	result, err := h.recommender.Recommend(c.Request.Context(), &services.RecommendRequest{
		UserID:    query.UserID,
		ProductID: query.ProductID,
		Count:     query.Count,
	})
	if err != nil {
		if errors.Is(err, services.ErrNotInitialized) {
			respondNotInitialized(c)
			return
		}
		h.logger.WithError(err).Error("Failed to generate recommendations")
		respondError(c, http.StatusInternalServerError, "RECOMMENDATION_GENERATION_FAILED",
			"Failed to generate recommendations")
		return
	}

	c.Set(middleware.RecommendationPathKey, string(result.Path))
	c.Header("X-Recommendation-Path", string(result.Path))
	if result.CacheHit {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}

	if len(result.Recommendations) == 0 {
		c.JSON(http.StatusOK, models.MessageResponse{Message: noRecommendationsMessage})
		return
	}

	c.JSON(http.StatusOK, result.Recommendations)
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorBody{Code: code, Message: message},
	})
}
