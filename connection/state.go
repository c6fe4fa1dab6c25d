package connection

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
)

// stateTokenBytes is the entropy of an anti-CSRF state token. Hex
// encoding doubles the length on the wire.
const stateTokenBytes = 32

// StateStore holds the transient anti-CSRF state tokens bound to one
// authorization attempt each. Tokens are single-use: Consume removes
// the token, so a replayed callback finds nothing to match against.
type StateStore interface {
	// Issue generates, stores, and returns a new state token for the key,
	// replacing any previous one.
	Issue(key string) (string, error)

	// Consume removes and returns the stored token for the key.
	Consume(key string) (string, bool)

	// Clear drops every stored token. Used by the startup purge.
	Clear()
}

// MemoryStateStore keeps state tokens in process memory, the transient
// per-tab scope of the original flow.
type MemoryStateStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

// NewMemoryStateStore creates an empty state store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{tokens: make(map[string]string)}
}

// Issue implements StateStore.
func (s *MemoryStateStore) Issue(key string) (string, error) {
	token, err := generateStateToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.tokens[key] = token
	s.mu.Unlock()

	return token, nil
}

// Consume implements StateStore.
func (s *MemoryStateStore) Consume(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[key]
	if ok {
		delete(s.tokens, key)
	}
	return token, ok
}

// Clear implements StateStore.
func (s *MemoryStateStore) Clear() {
	s.mu.Lock()
	s.tokens = make(map[string]string)
	s.mu.Unlock()
}

func generateStateToken() (string, error) {
	b := make([]byte, stateTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
