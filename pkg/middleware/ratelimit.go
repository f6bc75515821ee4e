package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/iota-uz/tgbridge/pkg/httpapi"
)

const limiterPrefix = "tgbridge:limiter"

func NewMemoryStore() limiter.Store {
	return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: limiterPrefix})
}

func NewRedisStore(client *redis.Client) (limiter.Store, error) {
	return sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: limiterPrefix})
}

// NewStore returns a Redis backed store when storage is "redis" and client is set,
// and an in-memory one otherwise.
func NewStore(storage string, client *redis.Client) (limiter.Store, error) {
	if storage == "redis" && client != nil {
		return NewRedisStore(client)
	}
	return NewMemoryStore(), nil
}

type RateLimitConfig struct {
	Rate  limiter.Rate
	Store limiter.Store
}

// RateLimit limits requests per client IP.
func RateLimit(cfg RateLimitConfig) mux.MiddlewareFunc {
	l := limiter.New(cfg.Store, cfg.Rate)
	m := stdlib.NewMiddleware(l, stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
	}))
	return m.Handler
}
