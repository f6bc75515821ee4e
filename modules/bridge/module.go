package bridge

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/tgbridge/modules/bridge/presentation/controllers"
	"github.com/iota-uz/tgbridge/modules/bridge/services"
	"github.com/iota-uz/tgbridge/pkg/application"
	"github.com/iota-uz/tgbridge/pkg/logging"
)

type ModuleOptions struct {
	// Poller and Warmer are registered as application services. A registered
	// poller also gets a "poller" health check.
	Poller *services.Poller
	Warmer *services.Warmer
	// Streamer serves /internal/stream. Nil leaves the route out.
	Streamer controllers.MediaStreamer
	Checks   map[string]controllers.HealthCheck
	Logger   *logrus.Entry
}

func NewModule(opts *ModuleOptions) application.Module {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Module{opts: opts}
}

type Module struct {
	opts *ModuleOptions
}

func (m *Module) Register(app application.Application) error {
	checks := make(map[string]controllers.HealthCheck, len(m.opts.Checks)+1)
	for name, check := range m.opts.Checks {
		checks[name] = check
	}
	if m.opts.Poller != nil {
		app.RegisterServices(m.opts.Poller)
		poller := app.Service((*services.Poller)(nil)).(*services.Poller)
		checks["poller"] = func(context.Context) error {
			if s := poller.State(); s != services.PollerRunning {
				return errors.Errorf("poller is %s", s)
			}
			return nil
		}
	}
	if m.opts.Warmer != nil {
		app.RegisterServices(m.opts.Warmer)
	}

	app.RegisterControllers(controllers.NewHealthController(checks))
	if m.opts.Streamer != nil {
		app.RegisterControllers(controllers.NewStreamController(
			m.opts.Streamer,
			m.opts.Logger.WithField("component", "stream"),
		))
	}
	return nil
}

func (m *Module) Name() string {
	return "bridge"
}
