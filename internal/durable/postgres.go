package durable

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists registrations in the event_registrations table.
// It uses pgx directly (no ORM).
type PostgresStore struct {
	db *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore constructs a PostgresStore over an open pool. The
// schema is created by database.Migrate.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// InsertRegistration writes one registration row.
func (s *PostgresStore) InsertRegistration(ctx context.Context, rec Record) error {
	info, err := json.Marshal(rec.AttendeeInfo)
	if err != nil {
		return remote("insert registration", fmt.Errorf("marshal attendee info: %w", err))
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO event_registrations (id, user_id, event_id, attendee_info, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.UserID, rec.EventID, info, rec.CreatedAt,
	)
	if err != nil {
		return remote("insert registration", err)
	}
	return nil
}

// ListRegistrationsForUser returns the user's registrations, oldest first.
func (s *PostgresStore) ListRegistrationsForUser(ctx context.Context, userID string) ([]Record, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, event_id, attendee_info, created_at
		 FROM event_registrations
		 WHERE user_id = $1
		 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, remote("list registrations", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var (
			rec  Record
			info []byte
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.EventID, &info, &rec.CreatedAt); err != nil {
			return nil, remote("list registrations", fmt.Errorf("scan registration: %w", err))
		}
		if len(info) > 0 {
			if err := json.Unmarshal(info, &rec.AttendeeInfo); err != nil {
				return nil, remote("list registrations", fmt.Errorf("decode attendee info: %w", err))
			}
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, remote("list registrations", err)
	}
	return recs, nil
}

// CountRegistrationsForEvent returns the number of rows for an event.
func (s *PostgresStore) CountRegistrationsForEvent(ctx context.Context, eventID string) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM event_registrations WHERE event_id = $1`,
		eventID,
	).Scan(&n)
	if err != nil {
		return 0, remote("count registrations", err)
	}
	return n, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
