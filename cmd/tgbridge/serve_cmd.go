package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/go-faster/errors"
	"github.com/gotd/td/telegram/uploader"
	"github.com/gotd/td/tg"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iota-uz/tgbridge/internal/server"
	"github.com/iota-uz/tgbridge/modules/bridge"
	"github.com/iota-uz/tgbridge/modules/bridge/infrastructure/kafka"
	"github.com/iota-uz/tgbridge/modules/bridge/infrastructure/telegram"
	"github.com/iota-uz/tgbridge/modules/bridge/presentation/controllers"
	"github.com/iota-uz/tgbridge/modules/bridge/services"
	"github.com/iota-uz/tgbridge/pkg/application"
	"github.com/iota-uz/tgbridge/pkg/dispatch"
	"github.com/iota-uz/tgbridge/pkg/logging"
)

func newServeCmd() *cobra.Command {
	var skipWarmup bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bridge: consume commands, execute them on Telegram, publish responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, skipWarmup)
		},
	}

	cmd.Flags().BoolVar(&skipWarmup, "skip-warmup", false, "Do not preload the side-store on startup")
	return cmd
}

func runServe(ctx context.Context, skipWarmup bool) error {
	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.conf.Unload()
	defer rt.close()
	conf := rt.conf

	if conf.OpenTelemetry.Enabled {
		cleanup := logging.SetupTracing(ctx, conf.OpenTelemetry.ServiceName, conf.OpenTelemetry.TempoURL)
		defer cleanup()
		rt.logger.Info("OpenTelemetry tracing enabled, exporting to Tempo at " + conf.OpenTelemetry.TempoURL)
	}

	producer, err := kafka.NewProducer(ctx, conf.Kafka, rt.component("kafka"))
	if err != nil {
		return err
	}
	defer producer.Close()
	publisher := services.NewResponsePublisher(producer, rt.component("publisher"))

	queue, err := dispatch.New(dispatch.Options{
		MaxAttempts: conf.Dispatch.MaxAttempts,
		Interval:    conf.Dispatch.Interval,
		MaxBackoff:  conf.Dispatch.MaxBackoff,
		Logger:      rt.component("dispatch"),
		OnDrop: func(u dispatch.Unit, attempts int, lastErr error) {
			rt.component("dispatch").WithFields(logrus.Fields{
				"kind":       u.Name,
				"request_id": u.RequestID,
				"attempts":   attempts,
			}).WithError(lastErr).Error("command dropped after exhausting retries")
		},
	})
	if err != nil {
		return err
	}

	pace, err := rt.limiter()
	if err != nil {
		return err
	}

	updates := tg.NewUpdateDispatcher()
	sess := rt.session(updates)
	api := sess.API()

	peers := telegram.NewPeerResolver(api, rt.store, rt.component("peers"))
	telegram.NewUpdateListener(peers, rt.store, rt.component("updates")).Register(updates)

	executor := telegram.NewExecutor(api, uploader.NewUploader(api), peers, rt.store, telegram.ExecutorOptions{
		FloodWaitMax: conf.Telegram.FloodWaitMax,
		Limiter:      pace,
		Respond:      publisher.Responder(conf.Kafka.ResponsesTopic),
		Logger:       rt.component("executor"),
	})

	app := application.New(&application.ApplicationOptions{Logger: rt.logger})
	err = app.RegisterModules(bridge.NewModule(&bridge.ModuleOptions{
		Poller: services.NewPoller(services.NewDecoder(executor), queue, services.PollerOptions{
			Factory: func(ctx context.Context) (kafka.Fetcher, error) {
				consumer, err := kafka.NewConsumer(ctx, conf.Kafka, rt.component("kafka"))
				if err != nil {
					return nil, err
				}
				return consumer, nil
			},
			Logger: rt.component("poller"),
		}),
		Warmer: services.NewWarmer(api, peers, rt.store, services.WarmerOptions{
			Dialogs: conf.Telegram.WarmupDialogs,
			History: conf.Telegram.WarmupHistory,
			Logger:  rt.component("warmup"),
		}),
		Streamer: telegram.NewStreamer(api, peers, conf.StreamChunkSize, rt.component("stream")),
		Checks: map[string]controllers.HealthCheck{
			"redis": rt.store.Ping,
		},
		Logger: rt.logger.WithField("module", "bridge"),
	}))
	if err != nil {
		return err
	}
	srv, err := server.Default(&server.DefaultOptions{
		Logger:        rt.logger,
		Configuration: conf,
		Application:   app,
		Redis:         rt.redis,
	})
	if err != nil {
		return err
	}

	poller := app.Service((*services.Poller)(nil)).(*services.Poller)
	warmer := app.Service((*services.Warmer)(nil)).(*services.Warmer)

	err = sess.Run(ctx, func(ctx context.Context, _ *tg.Client) error {
		if !skipWarmup {
			if _, err := warmer.Warm(ctx); err != nil {
				rt.component("warmup").WithError(err).Warn("side-store warmup failed")
			}
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return queue.Run(gctx)
		})
		g.Go(func() error {
			return poller.Run(gctx)
		})
		g.Go(func() error {
			rt.logger.Infof("Listening on: %s", conf.SocketAddress)
			return srv.Start(gctx, conf.SocketAddress)
		})
		return g.Wait()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	rt.logger.Info("tgbridge stopped")
	return nil
}
