package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/reelwise/reelwise/internal/config"
	"github.com/reelwise/reelwise/internal/database"
)

type HealthService struct {
	config *config.Config
	logger *logrus.Logger
	db     *database.Database

	catalog    *FeatureCatalog
	similarity *SimilarityMatrix
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Catalog   CatalogInfo       `json:"catalog"`
}

type CatalogInfo struct {
	Movies   int `json:"movies"`
	Features int `json:"features"`
	// MaskedFeatures counts features below the minimum support, which the
	// affinity mask excludes from every top-K list.
	MaskedFeatures int `json:"masked_features"`
	MaxSupport     int `json:"max_support"`
}

func NewHealthService(cfg *config.Config, logger *logrus.Logger, db *database.Database,
	catalog *FeatureCatalog, similarity *SimilarityMatrix) *HealthService {
	return &HealthService{
		config:     cfg,
		logger:     logger,
		db:         db,
		catalog:    catalog,
		similarity: similarity,
	}
}

func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	info := CatalogInfo{
		Movies:   s.catalog.MovieCount(),
		Features: s.catalog.FeatureCount(),
	}
	for _, support := range s.catalog.SupportCensus() {
		if support > info.MaxSupport {
			info.MaxSupport = support
		}
		if support < s.config.Recommendation.MinSupport {
			info.MaskedFeatures++
		}
	}

	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Services:  make(map[string]string),
		Catalog:   info,
	}

	if s.db != nil && s.db.PG != nil {
		if err := s.db.PG.Ping(ctx); err != nil {
			status.Services["postgres"] = "unhealthy: " + err.Error()
			status.Status = "degraded"
		} else {
			status.Services["postgres"] = "healthy"
		}
	}
	if s.db != nil && s.db.Redis != nil && s.db.Redis.Hot != nil {
		if err := s.db.Redis.Hot.Ping(ctx).Err(); err != nil {
			status.Services["redis"] = "unhealthy: " + err.Error()
			status.Status = "degraded"
		} else {
			status.Services["redis"] = "healthy"
		}
	}

	if s.similarity == nil || s.similarity.Dim() != s.catalog.MovieCount() {
		status.Status = "degraded"
		status.Services["similarity"] = "dimension mismatch"
	} else {
		status.Services["similarity"] = "healthy"
	}

	return status
}
