package auth

import (
	"sync"
	"time"
)

// RevocationList remembers revoked token IDs (jti claims) until the token
// would have expired anyway. Logout revokes the presented tokens; the auth
// middleware rejects any access token whose jti appears here.
// Thread-safe for concurrent access.
type RevocationList struct {
	mu      sync.RWMutex
	entries map[string]time.Time // jti -> token expiry
	done    chan struct{}
}

// NewRevocationList creates a list and starts a background goroutine that
// drops expired entries every 5 minutes.
func NewRevocationList() *RevocationList {
	l := &RevocationList{
		entries: make(map[string]time.Time),
		done:    make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Revoke adds a token's jti to the list. expiresAt is the token's natural
// expiry; the entry is dropped after that time since an expired token is
// rejected regardless.
func (l *RevocationList) Revoke(jti string, expiresAt time.Time) {
	if jti == "" {
		return
	}
	l.mu.Lock()
	l.entries[jti] = expiresAt
	l.mu.Unlock()
}

// IsRevoked reports whether a token jti has been revoked.
func (l *RevocationList) IsRevoked(jti string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.entries[jti]
	return ok
}

// Count returns the number of currently revoked tokens.
func (l *RevocationList) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Close stops the cleanup goroutine.
func (l *RevocationList) Close() {
	close(l.done)
}

func (l *RevocationList) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.removeExpired(time.Now())
		case <-l.done:
			return
		}
	}
}

func (l *RevocationList) removeExpired(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for jti, exp := range l.entries {
		if now.After(exp) {
			delete(l.entries, jti)
		}
	}
}
