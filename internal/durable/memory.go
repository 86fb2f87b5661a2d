package durable

import (
	"context"
	"sync"
)

// MemoryStore keeps records in process memory. It backs local development
// and tests, and can be told to fail to exercise degraded paths.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
	err     error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// FailWith makes every subsequent call fail with err. A nil err restores
// normal operation.
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Records returns a copy of everything stored.
func (m *MemoryStore) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Record(nil), m.records...)
}

func (m *MemoryStore) InsertRegistration(ctx context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return remote("insert registration", err)
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *MemoryStore) ListRegistrationsForUser(ctx context.Context, userID string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return nil, remote("list registrations", err)
	}
	var out []Record
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryStore) CountRegistrationsForEvent(ctx context.Context, eventID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return 0, remote("count registrations", err)
	}
	n := 0
	for _, r := range m.records {
		if r.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) check(ctx context.Context) error {
	if m.err != nil {
		return m.err
	}
	return ctx.Err()
}
