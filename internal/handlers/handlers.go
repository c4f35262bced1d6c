package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/temcen/quickrec/internal/config"
	"github.com/temcen/quickrec/internal/services"
)

type Handlers struct {
	Health         *HealthHandler
	Recommendation *RecommendationHandler
	Product        *ProductHandler
}

func New(cfg *config.Config, logger *logrus.Logger, services *services.Services) *Handlers {
	return &Handlers{
		Health:         NewHealthHandler(logger, services.Health),
		Recommendation: NewRecommendationHandler(services.Recommender, &cfg.Recommendation, logger),
		Product:        NewProductHandler(services.Recommender, logger),
	}
}
