package models

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile is the per-session state computed at login. It is owned by
// exactly one session and replaced wholesale on the next login; the core
// services never hold a process-wide "current user".
type UserProfile struct {
	SessionID        uuid.UUID          `json:"session_id"`
	UserID           string             `json:"user_id"`
	RealRatings      map[string]float64 `json:"real_ratings"`
	PredictedRatings map[string]float64 `json:"predicted_ratings"`
	MergedRatings    []float64          `json:"-"` // aligned to catalog row order
	Affinity         []float64          `json:"-"` // aligned to catalog column order
	TopFeatures      []RankedFeature    `json:"top_features"`
	SkippedMovies    []string           `json:"skipped_movies,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

// Rated reports whether the user has a real rating for the movie.
func (p *UserProfile) Rated(movieID string) bool {
	_, ok := p.RealRatings[movieID]
	return ok
}

// RankedFeature is one entry of the user's top-K feature list.
type RankedFeature struct {
	FeatureID int              `json:"feature_id"`
	Category  string           `json:"category"`
	Value     string           `json:"value"`
	Affinity  float64          `json:"affinity"`
	Support   int              `json:"support"`
	Movies    []CandidateMovie `json:"movies,omitempty"`
}

// CandidateMovie is a movie carrying a ranked feature. Seen means the rating
// comes from the user's real-ratings map rather than the predicted one.
type CandidateMovie struct {
	MovieID string  `json:"movie_id"`
	Rating  float64 `json:"rating"`
	Seen    bool    `json:"seen"`
}
