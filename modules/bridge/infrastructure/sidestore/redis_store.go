package sidestore

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/tgbridge/modules/bridge/domain/command"
	"github.com/iota-uz/tgbridge/pkg/configuration"
)

const defaultBatchSize = 1000

type RedisStore struct {
	redis     *redis.Client
	batchSize int
}

func NewRedisStore(client *redis.Client, batchSize int) *RedisStore {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &RedisStore{redis: client, batchSize: batchSize}
}

// Connect opens a client and pings it, retrying while Redis is still loading its dataset.
func Connect(ctx context.Context, opts configuration.RedisOptions, logger *logrus.Entry) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
	})

	retries := opts.InitRetries
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(opts.InitRetryDelay), uint64(retries)),
		ctx,
	)
	err := backoff.RetryNotify(func() error {
		err := client.Ping(ctx).Err()
		if err != nil && !isBusyLoading(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, next time.Duration) {
		logger.WithError(err).WithField("next", next).Warn("Redis is loading its dataset, reconnecting")
	})
	if err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "connect to redis")
	}
	return client, nil
}

func isBusyLoading(err error) bool {
	var rerr redis.Error
	if errors.As(err, &rerr) {
		return strings.HasPrefix(rerr.Error(), "LOADING")
	}
	return false
}

func (s *RedisStore) MessageChat(ctx context.Context, messageID int) (command.ChatID, error) {
	v, err := s.redis.Get(ctx, messageKey(messageID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return command.ChatID(v), nil
}

func (s *RedisStore) RememberMessages(ctx context.Context, chatID command.ChatID, messageIDs []int) error {
	for start := 0; start < len(messageIDs); start += s.batchSize {
		end := start + s.batchSize
		if end > len(messageIDs) {
			end = len(messageIDs)
		}
		pipe := s.redis.Pipeline()
		for _, id := range messageIDs[start:end] {
			pipe.SetNX(ctx, messageKey(id), string(chatID), 0)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return errors.Wrap(err, "remember messages")
		}
	}
	return nil
}

func (s *RedisStore) Topic(ctx context.Context, chatID command.ChatID, topicID int) (Topic, error) {
	var t Topic
	if err := s.getJSON(ctx, topicKey(chatID, topicID), &t); err != nil {
		return Topic{}, err
	}
	return t, nil
}

func (s *RedisStore) SaveTopic(ctx context.Context, chatID command.ChatID, topicID int, t Topic) error {
	return s.setJSON(ctx, topicKey(chatID, topicID), t)
}

func (s *RedisStore) Chat(ctx context.Context, chatID command.ChatID) (Chat, error) {
	var c Chat
	if err := s.getJSON(ctx, chatKey(chatID), &c); err != nil {
		return Chat{}, err
	}
	return c, nil
}

func (s *RedisStore) SaveChat(ctx context.Context, c Chat) error {
	return s.setJSON(ctx, chatKey(c.ChatID()), c)
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

func (s *RedisStore) getJSON(ctx context.Context, key string, dst any) error {
	raw, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return err
	}
	return json.Unmarshal(raw, dst)
}

func (s *RedisStore) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, raw, 0).Err()
}
