package durable

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps registrations in Redis:
//
//	<prefix>:user:<userID>   list of JSON-encoded records, oldest first
//	<prefix>:event:<eventID> hash of registration id -> user id
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore constructs a RedisStore. An empty prefix defaults to
// "campus:registrations".
func NewRedisStore(rdb redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "campus:registrations"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) userKey(userID string) string {
	return fmt.Sprintf("%s:user:%s", s.prefix, userID)
}

func (s *RedisStore) eventKey(eventID string) string {
	return fmt.Sprintf("%s:event:%s", s.prefix, eventID)
}

// InsertRegistration appends the record to the user's list and indexes it
// under the event in one MULTI/EXEC.
func (s *RedisStore) InsertRegistration(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return remote("insert registration", fmt.Errorf("marshal record: %w", err))
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, s.userKey(rec.UserID), data)
		pipe.HSet(ctx, s.eventKey(rec.EventID), rec.ID, rec.UserID)
		return nil
	})
	if err != nil {
		return remote("insert registration", err)
	}
	return nil
}

// ListRegistrationsForUser decodes the user's list.
func (s *RedisStore) ListRegistrationsForUser(ctx context.Context, userID string) ([]Record, error) {
	raw, err := s.rdb.LRange(ctx, s.userKey(userID), 0, -1).Result()
	if err != nil {
		return nil, remote("list registrations", err)
	}

	recs := make([]Record, 0, len(raw))
	for _, item := range raw {
		var rec Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, remote("list registrations", fmt.Errorf("decode record: %w", err))
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// CountRegistrationsForEvent returns the size of the event's hash.
func (s *RedisStore) CountRegistrationsForEvent(ctx context.Context, eventID string) (int, error) {
	n, err := s.rdb.HLen(ctx, s.eventKey(eventID)).Result()
	if err != nil {
		return 0, remote("count registrations", err)
	}
	return int(n), nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
