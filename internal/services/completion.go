package services

import (
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/reelwise/reelwise/internal/config"
)

type RatingCompletionService struct {
	config *config.RecommendationConfig
	logger *logrus.Logger
}

func NewRatingCompletionService(cfg *config.RecommendationConfig, logger *logrus.Logger) *RatingCompletionService {
	return &RatingCompletionService{config: cfg, logger: logger}
}

// CompleteRatings estimates a rating for every catalog movie the user has not
// rated: the similarity-weighted average of the known ratings, falling back to
// their arithmetic mean when no rated movie is similar to the target, and to
// the rating-scale midpoint when the user has no ratings at all. Every
// estimate is clipped to the configured scale.
//
// Rated movies absent from the catalog cannot contribute and are returned as
// skipped; they are reported, not fatal. This runs once per profile build, not
// per request.
func (s *RatingCompletionService) CompleteRatings(
	real map[string]float64,
	sim *SimilarityMatrix,
	cat *FeatureCatalog,
) (map[string]float64, []string) {
	ratedRows := make(map[int]float64, len(real))
	known := make([]float64, 0, len(real))
	var skipped []string
	for movieID, value := range real {
		row, ok := cat.Row(movieID)
		if !ok {
			skipped = append(skipped, movieID)
			s.logger.WithError(&UnknownEntityError{Kind: "movie", ID: movieID}).
				Warn("Rated movie not in similarity index, skipping")
			continue
		}
		ratedRows[row] = value
		known = append(known, value)
	}

	fallback := s.config.RatingScale.Midpoint()
	if len(known) > 0 {
		fallback = s.config.RatingScale.Clip(stat.Mean(known, nil))
	}

	ratedOrder := make([]int, 0, len(ratedRows))
	for row := range ratedRows {
		ratedOrder = append(ratedOrder, row)
	}
	sort.Ints(ratedOrder)

	predicted := make(map[string]float64, cat.MovieCount()-len(ratedRows))
	sims := make([]float64, 0, 16)
	votes := make([]float64, 0, 16)
	for row := 0; row < cat.MovieCount(); row++ {
		if _, rated := ratedRows[row]; rated {
			continue
		}

		// Sim checks both rows' neighbor lists, so a rated movie still votes
		// when the neighbor cap pruned it from the target's own list.
		sims = sims[:0]
		votes = votes[:0]
		for _, r := range ratedOrder {
			if w := sim.Sim(row, r); w > 0 {
				sims = append(sims, w)
				votes = append(votes, ratedRows[r])
			}
		}

		estimate := fallback
		if weight := floats.Sum(sims); weight > 0 {
			estimate = s.config.RatingScale.Clip(floats.Dot(sims, votes) / weight)
		}
		predicted[cat.MovieAt(row).ID] = estimate
	}

	s.logger.WithFields(logrus.Fields{
		"rated":     len(ratedRows),
		"predicted": len(predicted),
		"skipped":   len(skipped),
	}).Debug("Rating completion finished")

	return predicted, skipped
}

// MergeRatings aligns real and predicted ratings to catalog row order. Real
// values always win over predicted ones; movies with neither stay 0.
func MergeRatings(cat *FeatureCatalog, real, predicted map[string]float64) []float64 {
	merged := make([]float64, cat.MovieCount())
	for movieID, value := range predicted {
		if row, ok := cat.Row(movieID); ok {
			merged[row] = value
		}
	}
	for movieID, value := range real {
		if row, ok := cat.Row(movieID); ok {
			merged[row] = value
		}
	}
	return merged
}
