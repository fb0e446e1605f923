package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// nonceEntry is one live challenge. issuedAt only matters when the store has
// a TTL configured.
type nonceEntry struct {
	value    string
	issuedAt time.Time
}

// NonceStore maps lowercase wallet addresses to one-time login challenges.
// At most one nonce is live per address; issuing again overwrites the old
// one. A nonce is removed atomically when consumed, so it can never be used
// twice. A single mutex guards the whole map; callers must not hold it
// across I/O.
type NonceStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]nonceEntry
}

// NewNonceStore returns an empty store. ttl bounds how long an issued but
// never consumed nonce stays valid; ttl <= 0 disables expiry.
func NewNonceStore(ttl time.Duration) *NonceStore {
	return &NonceStore{ttl: ttl, entries: make(map[string]nonceEntry)}
}

// Issue generates a fresh random challenge for the address, replacing any
// previous one. The address must already be lowercased by the caller; it is
// folded again here so the store never holds mixed-case keys.
func (s *NonceStore) Issue(address string) string {
	nonce := uuid.NewString()
	s.mu.Lock()
	s.entries[lowercase(address)] = nonceEntry{value: nonce, issuedAt: time.Now()}
	s.mu.Unlock()
	return nonce
}

// Consume removes and returns the live nonce for the address. The second
// return is false when no nonce exists or the entry outlived the TTL; both
// cases look identical to the caller and map to a client error, not a server
// fault.
func (s *NonceStore) Consume(address string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := lowercase(address)
	e, ok := s.entries[key]
	if !ok {
		return "", false
	}
	delete(s.entries, key)
	if s.ttl > 0 && time.Since(e.issuedAt) > s.ttl {
		return "", false
	}
	return e.value, true
}
