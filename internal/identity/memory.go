package identity

import (
	"context"
	"sync"
	"time"

	"habitTrackerAPI/internal/types/user"
)

// MemoryDirectory keeps profile edits in process for providers without a user
// management API.
type MemoryDirectory struct {
	mu        sync.RWMutex
	profiles  map[string]user.Profile
	signedOut map[string]time.Time
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		profiles:  make(map[string]user.Profile),
		signedOut: make(map[string]time.Time),
	}
}

// Lookup returns the stored profile, or a bare one carrying only the uid.
func (m *MemoryDirectory) Lookup(ctx context.Context, uid string) (*user.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[uid]
	if !ok {
		p = user.Profile{UID: uid}
	}
	return &p, nil
}

func (m *MemoryDirectory) UpdatePhoto(ctx context.Context, uid, photoURL string) (*user.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[uid]
	if !ok {
		p = user.Profile{UID: uid}
	}
	p.PhotoURL = photoURL
	m.profiles[uid] = p
	return &p, nil
}

func (m *MemoryDirectory) SignOut(ctx context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signedOut[uid] = time.Now()
	return nil
}

// SignedOutAt reports when uid last signed out.
func (m *MemoryDirectory) SignedOutAt(uid string) (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.signedOut[uid]
	return t, ok
}
