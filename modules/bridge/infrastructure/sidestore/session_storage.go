package sidestore

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/gotd/td/session"
	"github.com/redis/go-redis/v9"
)

// SessionStorage keeps the Telegram session blob under a single Redis key.
type SessionStorage struct {
	redis *redis.Client
	key   string
}

var _ session.Storage = (*SessionStorage)(nil)

func NewSessionStorage(client *redis.Client, key string) *SessionStorage {
	return &SessionStorage{redis: client, key: key}
}

func (s *SessionStorage) LoadSession(ctx context.Context) ([]byte, error) {
	data, err := s.redis.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, errors.Wrap(err, "load session")
	}
	return data, nil
}

func (s *SessionStorage) StoreSession(ctx context.Context, data []byte) error {
	if err := s.redis.Set(ctx, s.key, data, 0).Err(); err != nil {
		return errors.Wrap(err, "store session")
	}
	return nil
}
