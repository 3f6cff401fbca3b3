package services

import (
	"sync"

	"github.com/google/uuid"

	"github.com/reelwise/reelwise/pkg/models"
)

// SessionRegistry owns the live UserProfiles, one per session. Profiles are
// values scoped to the session that created them, never process-wide state, so
// concurrent clients cannot clobber each other's login.
type SessionRegistry struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*models.UserProfile
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{profiles: make(map[uuid.UUID]*models.UserProfile)}
}

// Register stores the profile under its session id, replacing any previous
// profile for that session.
func (r *SessionRegistry) Register(profile *models.UserProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.SessionID] = profile
}

func (r *SessionRegistry) Get(sessionID uuid.UUID) (*models.UserProfile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[sessionID]
	return p, ok
}

func (r *SessionRegistry) Revoke(sessionID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.profiles, sessionID)
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles)
}
