package services

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/reelwise/reelwise/internal/config"
	"github.com/reelwise/reelwise/pkg/models"
)

type AffinityService struct {
	config *config.RecommendationConfig
	logger *logrus.Logger
}

func NewAffinityService(cfg *config.RecommendationConfig, logger *logrus.Logger) *AffinityService {
	return &AffinityService{config: cfg, logger: logger}
}

// ComputeAffinity aggregates a row-aligned rating vector through the
// incidence matrix: affinity[f] is the average rating of the movies carrying
// feature f. The accumulation walks column lists only, so the cost is
// proportional to the nonzero entries. A feature with no movies scores 0, and
// a feature with support below minSupport is forced to 0 so it can never
// enter the top-K.
func (s *AffinityService) ComputeAffinity(merged []float64, cat *FeatureCatalog, minSupport int) []float64 {
	affinity := make([]float64, cat.FeatureCount())
	for col := 0; col < cat.FeatureCount(); col++ {
		rows := cat.ColumnMovies(col)
		if len(rows) == 0 || len(rows) < minSupport {
			continue
		}
		sum := 0.0
		for _, row := range rows {
			sum += merged[row]
		}
		affinity[col] = sum / float64(len(rows))
	}
	return affinity
}

// TopFeatures selects at most k features by descending affinity, ties broken
// by ascending feature id. An all-zero affinity vector yields an empty list:
// the explicit "no preference signal" outcome.
func (s *AffinityService) TopFeatures(affinity []float64, k int, cat *FeatureCatalog) ([]models.RankedFeature, error) {
	if k < 1 {
		return nil, &ValidationError{Field: "top_features", Reason: fmt.Sprintf("must be >= 1, got %d", k)}
	}

	cols := make([]int, 0, len(affinity))
	for col, a := range affinity {
		if a > 0 {
			cols = append(cols, col)
		}
	}
	if len(cols) == 0 {
		return []models.RankedFeature{}, nil
	}

	sort.Slice(cols, func(i, j int) bool {
		if affinity[cols[i]] != affinity[cols[j]] {
			return affinity[cols[i]] > affinity[cols[j]]
		}
		return cols[i] < cols[j]
	})
	if len(cols) > k {
		cols = cols[:k]
	}

	ranked := make([]models.RankedFeature, 0, len(cols))
	for _, col := range cols {
		f := cat.FeatureAt(col)
		ranked = append(ranked, models.RankedFeature{
			FeatureID: f.ID,
			Category:  f.Category,
			Value:     f.Value,
			Affinity:  affinity[col],
			Support:   cat.Support(col),
		})
	}
	return ranked, nil
}

// AttachMovies fills each ranked feature with the movies carrying it. A movie
// the profile owner has rated is tagged seen, one with only a predicted
// rating is unseen, and one with neither is left out entirely.
func (s *AffinityService) AttachMovies(
	features []models.RankedFeature,
	cat *FeatureCatalog,
	profile *models.UserProfile,
) []models.RankedFeature {
	for i := range features {
		col := features[i].FeatureID
		rows := cat.ColumnMovies(col)
		candidates := make([]models.CandidateMovie, 0, len(rows))
		for _, row := range rows {
			id := cat.MovieAt(row).ID
			if profile.Rated(id) {
				candidates = append(candidates, models.CandidateMovie{
					MovieID: id, Rating: profile.RealRatings[id], Seen: true})
			} else if v, ok := profile.PredictedRatings[id]; ok {
				candidates = append(candidates, models.CandidateMovie{
					MovieID: id, Rating: v, Seen: false})
			}
		}
		features[i].Movies = candidates
	}
	return features
}
