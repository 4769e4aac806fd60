package redisc

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionPrefix = "session:"

// SessionStore keeps one key per issued token. Keys expire with the token.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Save(ctx context.Context, tokenID, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, sessionPrefix+tokenID, userID, ttl).Err()
}

func (s *SessionStore) Active(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, sessionPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *SessionStore) Revoke(ctx context.Context, tokenID string) error {
	return s.client.Del(ctx, sessionPrefix+tokenID).Err()
}
