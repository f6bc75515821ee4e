package main

import (
	"context"
	"os"

	"github.com/go-faster/errors"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/iota-uz/tgbridge/modules/bridge/infrastructure/sidestore"
	tgbridge "github.com/iota-uz/tgbridge/modules/bridge/infrastructure/telegram"
	"github.com/iota-uz/tgbridge/pkg/configuration"
	"github.com/iota-uz/tgbridge/pkg/middleware"
)

// runtime holds the dependencies shared by every command.
type runtime struct {
	conf   *configuration.Configuration
	logger *logrus.Logger
	redis  *redis.Client
	store  *sidestore.RedisStore
}

func bootstrap(ctx context.Context) (*runtime, error) {
	conf := configuration.Use()
	if err := conf.Telegram.Validate(); err != nil {
		return nil, errors.Wrap(err, "telegram configuration")
	}
	logger := conf.Logger()

	client, err := sidestore.Connect(ctx, conf.Redis, logger.WithField("component", "redis"))
	if err != nil {
		return nil, err
	}
	return &runtime{
		conf:   conf,
		logger: logger,
		redis:  client,
		store:  sidestore.NewRedisStore(client, conf.Redis.MessageBatchSize),
	}, nil
}

func (rt *runtime) close() {
	if err := rt.redis.Close(); err != nil {
		rt.logger.WithError(err).Warn("failed to close redis client")
	}
}

func (rt *runtime) component(name string) *logrus.Entry {
	return rt.logger.WithField("component", name)
}

func (rt *runtime) session(handler telegram.UpdateHandler) *tgbridge.Session {
	storage := tgbridge.SessionStorage(rt.conf.Telegram, func(key string) session.Storage {
		return sidestore.NewSessionStorage(rt.redis, key)
	})
	return tgbridge.NewSession(tgbridge.SessionOptions{
		Telegram:      rt.conf.Telegram,
		Storage:       storage,
		UpdateHandler: handler,
		CodeInput:     os.Stdin,
		Logger:        rt.component("telegram"),
	})
}

// limiter paces Telegram calls. Nil when rate limiting is disabled.
func (rt *runtime) limiter() (*limiter.Limiter, error) {
	if !rt.conf.RateLimit.Enabled {
		return nil, nil
	}
	store, err := middleware.NewStore(rt.conf.RateLimit.Storage, rt.redis)
	if err != nil {
		return nil, errors.Wrap(err, "rate limiter store")
	}
	rate, err := limiter.NewRateFromFormatted(rt.conf.RateLimit.Rate)
	if err != nil {
		return nil, errors.Wrap(err, "rate limiter rate")
	}
	return limiter.New(store, rate), nil
}
