package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/reelwise/reelwise/internal/config"
	"github.com/reelwise/reelwise/internal/services"
)

type Handlers struct {
	Session        *SessionHandler
	Recommendation *RecommendationHandler
	Movie          *MovieHandler
	Health         *HealthHandler
}

func New(
	logger *logrus.Logger,
	svc *services.Services,
	cfg *config.Config,
	catalog *services.FeatureCatalog,
	similarity *services.SimilarityMatrix,
) *Handlers {
	return &Handlers{
		Session:        NewSessionHandler(logger, svc, cfg, catalog, similarity),
		Recommendation: NewRecommendationHandler(logger, svc, cfg),
		Movie:          NewMovieHandler(logger, catalog, similarity),
		Health:         NewHealthHandler(logger, svc.Health),
	}
}
