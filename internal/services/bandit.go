package services

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/reelwise/reelwise/internal/config"
	"github.com/reelwise/reelwise/pkg/models"
)

// BanditService turns a user's top-feature list into the final recommendation
// set via temperature-scaled softmax sampling. The step is stochastic by
// design; determinism requires injecting a fixed random source.
type BanditService struct {
	config  *config.RecommendationConfig
	logger  *logrus.Logger
	metrics *Metrics
}

func NewBanditService(cfg *config.RecommendationConfig, logger *logrus.Logger, metrics *Metrics) *BanditService {
	return &BanditService{config: cfg, logger: logger, metrics: metrics}
}

// Recommend samples min(k, candidates) unseen movies per feature without
// replacement, weighted by the softmax of their ratings at temperature. A
// non-positive k returns every unseen candidate. Features left with no unseen
// candidates contribute nothing; already-rated movies are never resurfaced.
func (s *BanditService) Recommend(
	features []models.RankedFeature,
	temperature float64,
	k int,
	rng *rand.Rand,
) (*models.RecommendationSet, error) {
	if temperature <= 0 {
		return nil, &ValidationError{
			Field:  "temperature",
			Reason: fmt.Sprintf("must be > 0, got %g", temperature),
		}
	}
	if rng == nil {
		return nil, &ValidationError{Field: "random_source", Reason: "must not be nil"}
	}

	set := &models.RecommendationSet{
		Features:    make([]models.FeatureRecommendation, 0, len(features)),
		GeneratedAt: time.Now().UTC(),
	}

	for _, feature := range features {
		unseen := make([]models.CandidateMovie, 0, len(feature.Movies))
		for _, m := range feature.Movies {
			if !m.Seen {
				unseen = append(unseen, m)
			}
		}
		if len(unseen) == 0 {
			continue
		}

		ratings := make([]float64, len(unseen))
		for i, m := range unseen {
			ratings[i] = m.Rating
		}
		weights := softmax(ratings, temperature)

		picked := sampleWithoutReplacement(weights, k, rng)

		movies := make([]models.RecommendedMovie, 0, len(picked))
		for _, idx := range picked {
			movies = append(movies, models.RecommendedMovie{
				MovieID: unseen[idx].MovieID,
				Rating:  unseen[idx].Rating,
				Seen:    false,
				// Raw weight from the initial distribution, not a posterior.
				Probability: weights[idx],
			})
		}

		set.Features = append(set.Features, models.FeatureRecommendation{
			FeatureID: feature.FeatureID,
			Category:  feature.Category,
			Value:     feature.Value,
			Affinity:  feature.Affinity,
			Movies:    movies,
		})
	}

	if s.metrics != nil {
		s.metrics.RecommendationSets.Inc()
	}
	s.logger.WithFields(logrus.Fields{
		"features":    len(set.Features),
		"temperature": temperature,
		"sample_size": k,
	}).Debug("Recommendation set sampled")

	return set, nil
}

// softmax returns exp(r/t) / sum(exp(r/t)), max-subtracted for numerical
// stability. The weights sum to 1 for any non-empty input.
func softmax(ratings []float64, temperature float64) []float64 {
	weights := make([]float64, len(ratings))
	max := floats.Max(ratings)
	for i, r := range ratings {
		weights[i] = math.Exp((r - max) / temperature)
	}
	total := floats.Sum(weights)
	floats.Scale(1/total, weights)
	return weights
}

// sampleWithoutReplacement draws min(k, n) distinct indices, each draw
// proportional to the remaining weights. k <= 0 selects everything, ordered by
// repeated draws all the same so higher-weight indices tend to come first.
func sampleWithoutReplacement(weights []float64, k int, rng *rand.Rand) []int {
	n := len(weights)
	if k <= 0 || k > n {
		k = n
	}

	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}
	live := append([]float64(nil), weights...)

	picked := make([]int, 0, k)
	for len(picked) < k {
		total := floats.Sum(live)
		var choice int
		if total <= 0 {
			// Degenerate leftover mass: fall back to uniform.
			choice = rng.Intn(len(remaining))
		} else {
			r := rng.Float64() * total
			cum := 0.0
			choice = len(remaining) - 1
			for i, w := range live {
				cum += w
				if r < cum {
					choice = i
					break
				}
			}
		}
		picked = append(picked, remaining[choice])
		remaining = append(remaining[:choice], remaining[choice+1:]...)
		live = append(live[:choice], live[choice+1:]...)
	}
	return picked
}
