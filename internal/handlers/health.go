package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/temcen/quickrec/internal/services"
)

const (
	ModelStateHeader   = "X-Model-State"
	ModelBuildIDHeader = "X-Model-Build-ID"
)

type HealthHandler struct {
	logger        *logrus.Logger
	healthService *services.HealthService
}

func NewHealthHandler(logger *logrus.Logger, healthService *services.HealthService) *HealthHandler {
	return &HealthHandler{
		logger:        logger,
		healthService: healthService,
	}
}

// Check serves GET /health: model readiness plus backing service checks.
func (h *HealthHandler) Check(c *gin.Context) {
	status := h.healthService.CheckHealth(c.Request.Context())
	setModelHeaders(c, status.Model)

	var httpStatus int
	switch status.Status {
	case "healthy":
		httpStatus = http.StatusOK
	case "degraded":
		httpStatus = http.StatusOK // Still operational
		h.logger.WithFields(logrus.Fields{
			"content_model": status.Model.ContentModel,
			"popularity":    status.Model.Popularity,
			"failures":      status.NonCritical,
		}).Warn("Health check degraded")
	case "unhealthy":
		httpStatus = http.StatusServiceUnavailable
		h.logger.WithField("error", status.Model.Error).Error("Health check failed: recommender not initialized")
	default:
		httpStatus = http.StatusInternalServerError
	}

	c.JSON(httpStatus, status)
}

// Model serves GET /health/model, the readiness payload alone. It answers 503 until a
// model has been built, so it can back a readiness probe.
func (h *HealthHandler) Model(c *gin.Context) {
	model := h.healthService.CheckModel()
	setModelHeaders(c, model)

	if !model.Initialized {
		c.JSON(http.StatusServiceUnavailable, model)
		return
	}
	c.JSON(http.StatusOK, model)
}

func setModelHeaders(c *gin.Context, model services.ModelHealth) {
	c.Header(ModelStateHeader, string(model.State))
	if model.BuildID != "" {
		c.Header(ModelBuildIDHeader, model.BuildID)
	}
}
