package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionRequest carries a user's real ratings. When Ratings is omitted the
// server falls back to the user's persisted ratings.
type SessionRequest struct {
	UserID  string             `json:"user_id" validate:"required"`
	Ratings map[string]float64 `json:"ratings,omitempty"`
}

type SessionResponse struct {
	SessionID     uuid.UUID       `json:"session_id"`
	Token         string          `json:"token"`
	ExpiresAt     time.Time       `json:"expires_at"`
	TopFeatures   []RankedFeature `json:"top_features"`
	SkippedMovies []string        `json:"skipped_movies,omitempty"`
}

// RecommendedMovie is one sampled movie. Probability is the softmax weight the
// movie was assigned in the initial sampling distribution, kept for
// explanation and debugging; it is not a posterior.
type RecommendedMovie struct {
	MovieID     string  `json:"movie_id"`
	Rating      float64 `json:"rating"`
	Seen        bool    `json:"seen"`
	Probability float64 `json:"probability"`
}

// FeatureRecommendation groups the movies sampled for one top feature.
type FeatureRecommendation struct {
	FeatureID int                `json:"feature_id"`
	Category  string             `json:"category"`
	Value     string             `json:"value"`
	Affinity  float64            `json:"affinity"`
	Movies    []RecommendedMovie `json:"movies"`
}

type RecommendationSet struct {
	Features    []FeatureRecommendation `json:"features"`
	GeneratedAt time.Time               `json:"generated_at"`
}

// Empty reports the "no preference signal" outcome: a valid result the caller
// renders as "not enough data", never an error.
func (s *RecommendationSet) Empty() bool {
	return len(s.Features) == 0
}

type RecommendationResponse struct {
	SessionID       uuid.UUID         `json:"session_id"`
	UserID          string            `json:"user_id"`
	Recommendations RecommendationSet `json:"recommendations"`
}

// MovieDetails lists the attributes a movie carries in the catalog.
type MovieDetails struct {
	MovieID  string    `json:"movie_id"`
	Row      int       `json:"row"`
	Features []Feature `json:"features"`
}

// SimilarMovie is one neighbor of a seed movie in the similarity matrix.
type SimilarMovie struct {
	MovieID    string  `json:"movie_id"`
	Similarity float64 `json:"similarity"`
}
