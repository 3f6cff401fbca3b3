package services

import (
	"github.com/sirupsen/logrus"

	"github.com/reelwise/reelwise/internal/config"
	"github.com/reelwise/reelwise/internal/database"
	"github.com/reelwise/reelwise/internal/messaging"
)

type Services struct {
	Auth       *AuthService
	Health     *HealthService
	Catalog    *CatalogService
	Similarity *SimilarityService
	Completion *RatingCompletionService
	Affinity   *AffinityService
	Bandit     *BanditService
	Profile    *ProfileService
	Sessions   *SessionRegistry
	Metrics    *Metrics
}

// New wires the core pipeline. The catalog and similarity matrix are built by
// the app before the services exist; store and producer are optional
// collaborators at the persistence and messaging boundaries.
func New(
	cfg *config.Config,
	logger *logrus.Logger,
	db *database.Database,
	store RatingStore,
	producer *messaging.RatingEventProducer,
	catalog *FeatureCatalog,
	similarity *SimilarityMatrix,
) (*Services, error) {
	metrics := NewMetrics(logger)

	hot, warm := db.RedisHot(), db.RedisWarm()

	authService := NewAuthService(cfg, logger, hot)
	healthService := NewHealthService(cfg, logger, db, catalog, similarity)

	catalogService := NewCatalogService(logger)
	similarityService := NewSimilarityService(&cfg.Recommendation, logger)
	completionService := NewRatingCompletionService(&cfg.Recommendation, logger)
	affinityService := NewAffinityService(&cfg.Recommendation, logger)
	banditService := NewBanditService(&cfg.Recommendation, logger, metrics)

	var publisher RatingEventPublisher
	if producer != nil {
		publisher = producer
	}
	profileService := NewProfileService(
		completionService, affinityService, store, warm, publisher,
		&cfg.Recommendation, logger, metrics,
	)

	return &Services{
		Auth:       authService,
		Health:     healthService,
		Catalog:    catalogService,
		Similarity: similarityService,
		Completion: completionService,
		Affinity:   affinityService,
		Bandit:     banditService,
		Profile:    profileService,
		Sessions:   NewSessionRegistry(),
		Metrics:    metrics,
	}, nil
}
