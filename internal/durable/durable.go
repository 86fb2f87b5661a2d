// Package durable defines the durable registration store, the external
// collaborator that records registrations beyond process memory, and its
// Postgres, Redis and in-memory backends.
package durable

import (
	"context"
	"time"

	"github.com/Shivanand-hulikatti/campus-connect/internal/apperror"
	"github.com/Shivanand-hulikatti/campus-connect/internal/model"
)

// Record is the durable form of a registration.
type Record struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	EventID      string             `json:"event_id"`
	AttendeeInfo model.AttendeeInfo `json:"attendee_info"`
	CreatedAt    time.Time          `json:"created_at"`
}

// RecordFromRegistration converts a catalog registration.
func RecordFromRegistration(r model.Registration) Record {
	return Record{
		ID:           r.ID,
		UserID:       r.UserID,
		EventID:      r.EventID,
		AttendeeInfo: r.AttendeeInfo,
		CreatedAt:    r.RegistrationDate,
	}
}

// Store is implemented by every backend. Errors returned by a Store are
// wrapped so that errors.Is(err, apperror.ErrRemote) holds.
type Store interface {
	InsertRegistration(ctx context.Context, rec Record) error
	ListRegistrationsForUser(ctx context.Context, userID string) ([]Record, error)
	CountRegistrationsForEvent(ctx context.Context, eventID string) (int, error)
	Close() error
}

// timeoutStore bounds every call with a per-call deadline.
type timeoutStore struct {
	next    Store
	timeout time.Duration
}

// WithTimeout wraps s so each call carries a deadline of d. A zero d
// returns s unchanged.
func WithTimeout(s Store, d time.Duration) Store {
	if d <= 0 {
		return s
	}
	return &timeoutStore{next: s, timeout: d}
}

func (t *timeoutStore) InsertRegistration(ctx context.Context, rec Record) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.InsertRegistration(ctx, rec)
}

func (t *timeoutStore) ListRegistrationsForUser(ctx context.Context, userID string) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.ListRegistrationsForUser(ctx, userID)
}

func (t *timeoutStore) CountRegistrationsForEvent(ctx context.Context, eventID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.CountRegistrationsForEvent(ctx, eventID)
}

func (t *timeoutStore) Close() error { return t.next.Close() }

// remote wraps backend errors into the shared taxonomy.
func remote(op string, err error) error {
	return apperror.Remote(op, err)
}
