package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/quickrec/internal/services"
)

func healthRouter(health *services.HealthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHealthHandler(testLogger(), health)
	router.GET("/health", handler.Check)
	router.GET("/health/model", handler.Model)
	return router
}

func TestHealthHandler_Check(t *testing.T) {
	model := buildModel(t)

	tests := []struct {
		name           string
		model          *services.Model
		cacheErr       error
		expectedStatus int
		expectedState  string
	}{
		{"healthy", model, nil, http.StatusOK, "healthy"},
		{"cache down", model, errors.New("connection refused"), http.StatusOK, "degraded"},
		{"not initialized", services.UnavailableModel(fmt.Errorf("%w: no catalog", services.ErrBuildUnavailable)), nil, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			health := services.NewHealthService(tt.model, nil, testLogger())
			health.AddDependency("redis", func(ctx context.Context) error { return tt.cacheErr })

			w := httptest.NewRecorder()
			healthRouter(health).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			var status services.HealthStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
			assert.Equal(t, tt.expectedState, status.Status)
			assert.Equal(t, string(tt.model.State()), w.Header().Get(ModelStateHeader))
			assert.Equal(t, tt.model.BuildID.String(), w.Header().Get(ModelBuildIDHeader))
		})
	}
}

func TestHealthHandler_Model(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		model := buildModel(t)
		health := services.NewHealthService(model, nil, testLogger())
		health.AddDependency("redis", func(ctx context.Context) error { return errors.New("connection refused") })

		w := httptest.NewRecorder()
		healthRouter(health).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/model", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ready", w.Header().Get(ModelStateHeader))

		var body services.ModelHealth
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Initialized)
		assert.Equal(t, model.BuildID.String(), body.BuildID)
		assert.Equal(t, services.StateReady, body.ContentModel)
		assert.Equal(t, services.StateReady, body.Popularity)
		assert.Equal(t, 4, body.Products)
		assert.Equal(t, 1, body.Interactions)
		assert.Empty(t, body.Error)
	})

	t.Run("not initialized", func(t *testing.T) {
		model := services.UnavailableModel(fmt.Errorf("%w: no catalog", services.ErrBuildUnavailable))
		health := services.NewHealthService(model, nil, testLogger())

		w := httptest.NewRecorder()
		healthRouter(health).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/model", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "unavailable", w.Header().Get(ModelStateHeader))

		var body services.ModelHealth
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Initialized)
		assert.Contains(t, body.Error, "no catalog")
		assert.Equal(t, services.StateNotReady, body.ContentModel)
	})
}
