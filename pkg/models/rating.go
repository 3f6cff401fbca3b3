package models

// RatingOrigin distinguishes ground-truth ratings from model-estimated ones.
type RatingOrigin string

const (
	RatingOriginReal      RatingOrigin = "real"
	RatingOriginPredicted RatingOrigin = "predicted"
)

type Rating struct {
	UserID  string       `json:"user_id" db:"user_id"`
	MovieID string       `json:"movie_id" db:"movie_id"`
	Value   float64      `json:"value" db:"rating"`
	Origin  RatingOrigin `json:"origin"`
}

// RatingScale is the closed interval every served rating is clipped to.
type RatingScale struct {
	Min float64 `json:"min" mapstructure:"min"`
	Max float64 `json:"max" mapstructure:"max"`
}

// Midpoint is the fallback estimate for a user with no ratings at all.
func (s RatingScale) Midpoint() float64 {
	return (s.Min + s.Max) / 2
}

func (s RatingScale) Clip(v float64) float64 {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

func (s RatingScale) Contains(v float64) bool {
	return v >= s.Min && v <= s.Max
}
