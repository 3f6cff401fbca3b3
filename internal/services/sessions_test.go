package services

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelwise/reelwise/pkg/models"
)

func TestSessionRegistry(t *testing.T) {
	t.Run("register and get round trip", func(t *testing.T) {
		registry := NewSessionRegistry()
		profile := &models.UserProfile{SessionID: uuid.New(), UserID: "alice"}

		registry.Register(profile)
		got, ok := registry.Get(profile.SessionID)
		require.True(t, ok)
		assert.Equal(t, profile, got)
		assert.Equal(t, 1, registry.Len())
	})

	t.Run("unknown session misses", func(t *testing.T) {
		registry := NewSessionRegistry()
		_, ok := registry.Get(uuid.New())
		assert.False(t, ok)
	})

	t.Run("revoke removes the profile", func(t *testing.T) {
		registry := NewSessionRegistry()
		profile := &models.UserProfile{SessionID: uuid.New(), UserID: "alice"}
		registry.Register(profile)

		registry.Revoke(profile.SessionID)
		_, ok := registry.Get(profile.SessionID)
		assert.False(t, ok)
		assert.Equal(t, 0, registry.Len())
	})

	t.Run("concurrent logins keep their own profiles", func(t *testing.T) {
		registry := NewSessionRegistry()
		profiles := make([]*models.UserProfile, 50)
		for i := range profiles {
			profiles[i] = &models.UserProfile{SessionID: uuid.New(), UserID: "user"}
		}

		var wg sync.WaitGroup
		for _, p := range profiles {
			wg.Add(1)
			go func(p *models.UserProfile) {
				defer wg.Done()
				registry.Register(p)
				_, _ = registry.Get(p.SessionID)
			}(p)
		}
		wg.Wait()

		assert.Equal(t, len(profiles), registry.Len())
		for _, p := range profiles {
			got, ok := registry.Get(p.SessionID)
			require.True(t, ok)
			assert.Same(t, p, got)
		}
	})
}
