package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"usermgmt/internal/model"
)

const keyPrefix = "session:"

// Backend is the byte-level storage a Store writes through. *cache.Client
// satisfies it for Redis; Memory is the in-process variant.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Store loads and saves console state by session id.
type Store struct {
	backend Backend
	ttl     time.Duration
}

// NewStore creates a state store over backend. Every save refreshes the TTL.
func NewStore(backend Backend, ttl time.Duration) *Store {
	return &Store{backend: backend, ttl: ttl}
}

// Load returns the state for id, or a fresh unmounted state when none is stored.
func (s *Store) Load(ctx context.Context, id string) (*State, error) {
	data, err := s.backend.Get(ctx, keyPrefix+id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if data == nil {
		return New(), nil
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if st.Users == nil {
		st.Users = []model.User{}
	}
	return &st, nil
}

// Save writes the state for id.
func (s *Store) Save(ctx context.Context, id string, st *State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.backend.Set(ctx, keyPrefix+id, payload, s.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// sweepInterval bounds how often Set scans for expired entries.
const sweepInterval = time.Minute

type memEntry struct {
	value   []byte
	expires time.Time
}

func (e memEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// Memory is a process-local Backend with TTL expiry. Expired entries are
// dropped on read and by a periodic sweep on write, so abandoned sessions do
// not accumulate.
type Memory struct {
	mu        sync.Mutex
	entries   map[string]memEntry
	now       func() time.Time
	lastSweep time.Time
}

// NewMemory creates an empty in-process backend.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memEntry), now: time.Now}
}

// Get returns a copy of the stored value or nil when missing or expired.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	if e.expired(m.now()) {
		delete(m.entries, key)
		return nil, nil
	}
	return append([]byte(nil), e.value...), nil
}

// Set stores a copy of value. A zero ttl never expires.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.sweep(now)
	e := memEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}
	m.entries[key] = e
	return nil
}

// sweep drops expired entries. Callers hold mu.
func (m *Memory) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < sweepInterval {
		return
	}
	m.lastSweep = now
	for k, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, k)
		}
	}
}
