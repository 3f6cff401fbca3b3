package services

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/reelwise/reelwise/internal/config"
	"github.com/reelwise/reelwise/pkg/models"
)

// ProfileService runs the login-time pipeline: rating completion, merge,
// feature affinity, top-K extraction and movie attachment. The result is a
// session-owned UserProfile; the service itself holds no per-user state.
type ProfileService struct {
	completion *RatingCompletionService
	affinity   *AffinityService
	store      RatingStore          // optional
	cache      *redis.Client        // warm cache, optional
	publisher  RatingEventPublisher // optional
	config     *config.RecommendationConfig
	logger     *logrus.Logger
	metrics    *Metrics
}

func NewProfileService(
	completion *RatingCompletionService,
	affinity *AffinityService,
	store RatingStore,
	cache *redis.Client,
	publisher RatingEventPublisher,
	cfg *config.RecommendationConfig,
	logger *logrus.Logger,
	metrics *Metrics,
) *ProfileService {
	return &ProfileService{
		completion: completion,
		affinity:   affinity,
		store:      store,
		cache:      cache,
		publisher:  publisher,
		config:     cfg,
		logger:     logger,
		metrics:    metrics,
	}
}

// BuildProfile computes a fresh UserProfile from the user's real ratings.
// When real is nil the persisted ratings are loaded instead. A user with no
// usable signal gets an empty top-feature list, which is a valid outcome, not
// an error.
func (s *ProfileService) BuildProfile(
	ctx context.Context,
	userID string,
	real map[string]float64,
	cat *FeatureCatalog,
	sim *SimilarityMatrix,
) (*models.UserProfile, error) {
	started := time.Now()

	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "must not be empty"}
	}
	if real == nil {
		if s.store == nil {
			return nil, &ValidationError{Field: "ratings", Reason: "must be provided"}
		}
		stored, err := s.store.LoadUserRatings(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load stored ratings: %w", err)
		}
		real = stored
	}
	for movieID, value := range real {
		if !s.config.RatingScale.Contains(value) {
			return nil, &ValidationError{
				Field: "ratings",
				Reason: fmt.Sprintf("rating %g for movie %s outside scale [%g, %g]",
					value, movieID, s.config.RatingScale.Min, s.config.RatingScale.Max),
			}
		}
	}

	// A user with no ratings has no preference signal: skip completion and
	// hand back an empty profile instead of midpoint noise.
	if len(real) == 0 {
		return s.emptyProfile(userID, cat, started), nil
	}

	predicted, skipped := s.completedRatings(ctx, userID, real, cat, sim)

	if s.store != nil {
		if err := s.store.SavePredictedRatings(ctx, userID, predicted); err != nil {
			s.logger.WithError(err).Warn("Failed to persist predicted ratings")
		}
	}
	if s.publisher != nil && len(real) > 0 {
		if err := s.publisher.PublishRatings(ctx, userID, real); err != nil {
			s.logger.WithError(err).Warn("Failed to publish rating event")
		}
	}

	merged := MergeRatings(cat, real, predicted)
	affinity := s.affinity.ComputeAffinity(merged, cat, s.config.MinSupport)
	top, err := s.affinity.TopFeatures(affinity, s.config.TopFeatures, cat)
	if err != nil {
		return nil, err
	}

	profile := &models.UserProfile{
		SessionID:        uuid.New(),
		UserID:           userID,
		RealRatings:      real,
		PredictedRatings: predicted,
		MergedRatings:    merged,
		Affinity:         affinity,
		TopFeatures:      top,
		SkippedMovies:    skipped,
		CreatedAt:        time.Now().UTC(),
	}
	profile.TopFeatures = s.affinity.AttachMovies(profile.TopFeatures, cat, profile)

	if s.metrics != nil {
		s.metrics.ProfilesBuilt.Inc()
		s.metrics.ProfileBuildDuration.Observe(time.Since(started).Seconds())
	}
	s.logger.WithFields(logrus.Fields{
		"user_id":      userID,
		"real":         len(real),
		"predicted":    len(predicted),
		"top_features": len(top),
	}).Info("User profile built")

	return profile, nil
}

func (s *ProfileService) emptyProfile(userID string, cat *FeatureCatalog, started time.Time) *models.UserProfile {
	profile := &models.UserProfile{
		SessionID:        uuid.New(),
		UserID:           userID,
		RealRatings:      map[string]float64{},
		PredictedRatings: map[string]float64{},
		MergedRatings:    make([]float64, cat.MovieCount()),
		Affinity:         make([]float64, cat.FeatureCount()),
		TopFeatures:      []models.RankedFeature{},
		CreatedAt:        time.Now().UTC(),
	}
	if s.metrics != nil {
		s.metrics.ProfilesBuilt.Inc()
		s.metrics.ProfileBuildDuration.Observe(time.Since(started).Seconds())
	}
	s.logger.WithField("user_id", userID).Info("User profile built without ratings")
	return profile
}

// completedRatings returns the predicted-rating table for the user's current
// real ratings, consulting the warm cache first. The cache key includes a
// digest of the ratings so a changed submission never reuses stale estimates.
func (s *ProfileService) completedRatings(
	ctx context.Context,
	userID string,
	real map[string]float64,
	cat *FeatureCatalog,
	sim *SimilarityMatrix,
) (map[string]float64, []string) {
	if s.cache == nil {
		return s.completion.CompleteRatings(real, sim, cat)
	}

	key := fmt.Sprintf("predicted:%s:%x", userID, ratingsDigest(real))
	if cached := s.cache.Get(ctx, key).Val(); cached != "" {
		var predicted map[string]float64
		if err := json.Unmarshal([]byte(cached), &predicted); err == nil {
			if s.metrics != nil {
				s.metrics.PredictedCacheHits.Inc()
			}
			s.logger.WithField("user_id", userID).Debug("Predicted ratings cache hit")
			var skipped []string
			for id := range real {
				if _, ok := cat.Row(id); !ok {
					skipped = append(skipped, id)
				}
			}
			return predicted, skipped
		}
	}

	predicted, skipped := s.completion.CompleteRatings(real, sim, cat)
	if data, err := json.Marshal(predicted); err == nil {
		if err := s.cache.Set(ctx, key, data, s.config.PredictedTTL).Err(); err != nil {
			s.logger.WithError(err).Warn("Failed to cache predicted ratings")
		}
	}
	return predicted, skipped
}

func ratingsDigest(ratings map[string]float64) uint64 {
	ids := make([]string, 0, len(ratings))
	for id := range ratings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	h := fnv.New64a()
	for _, id := range ids {
		fmt.Fprintf(h, "%s=%g;", id, ratings[id])
	}
	return h.Sum64()
}
