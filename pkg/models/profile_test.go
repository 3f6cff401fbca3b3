package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserProfile_Rated(t *testing.T) {
	profile := &UserProfile{
		RealRatings:      map[string]float64{"tt0111161": 5.0},
		PredictedRatings: map[string]float64{"tt0068646": 4.1},
	}

	assert.True(t, profile.Rated("tt0111161"))
	// Predicted ratings do not count as rated.
	assert.False(t, profile.Rated("tt0068646"))
	assert.False(t, profile.Rated("tt9999999"))

	var empty UserProfile
	assert.False(t, empty.Rated("tt0111161"))
}
