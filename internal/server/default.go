package server

import (
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/iota-uz/tgbridge/pkg/application"
	"github.com/iota-uz/tgbridge/pkg/configuration"
	"github.com/iota-uz/tgbridge/pkg/httpapi"
	"github.com/iota-uz/tgbridge/pkg/metrics"
	"github.com/iota-uz/tgbridge/pkg/middleware"
	"github.com/iota-uz/tgbridge/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	// Redis backs the HTTP rate limiter when RATE_LIMIT_STORAGE is redis.
	Redis *redis.Client
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	conf := options.Configuration

	loggerOpts := middleware.DefaultLoggerOptions()
	loggerOpts.RequestIDHeader = conf.RequestIDHeader
	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, loggerOpts),
	}

	if conf.RateLimit.Enabled {
		store, err := middleware.NewStore(conf.RateLimit.Storage, options.Redis)
		if err != nil {
			options.Logger.WithError(err).Warn("Failed to create Redis store for rate limiting, falling back to memory")
			store = middleware.NewMemoryStore()
		}
		rate, err := limiter.NewRateFromFormatted(conf.RateLimit.HTTPRate)
		if err != nil {
			return nil, err
		}
		middlewares = append(middlewares, middleware.RateLimit(middleware.RateLimitConfig{
			Rate:  rate,
			Store: store,
		}))
	}
	app.RegisterMiddleware(middlewares...)

	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path, nil))
	}

	return server.NewHTTPServer(app, httpapi.NotFound(), httpapi.MethodNotAllowed()), nil
}
