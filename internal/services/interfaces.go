package services

import "context"

// RatingStore is the slice of the artifact store the profile pipeline needs:
// stored real ratings for logins that omit a payload, and write-back of the
// predicted-rating table produced per user.
type RatingStore interface {
	LoadUserRatings(ctx context.Context, userID string) (map[string]float64, error)
	SavePredictedRatings(ctx context.Context, userID string, ratings map[string]float64) error
}

// RatingEventPublisher forwards rating submissions to the offline
// artifact-build step. Publishing is best effort; the serving path never
// blocks on it.
type RatingEventPublisher interface {
	PublishRatings(ctx context.Context, userID string, ratings map[string]float64) error
}
