package application

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Controller interface {
	Register(r *mux.Router)
	Key() string
}

// Module plugs controllers and services into an Application.
type Module interface {
	Name() string
	Register(app Application) error
}

type Application interface {
	Logger() *logrus.Logger
	Controllers() []Controller
	Middleware() []mux.MiddlewareFunc
	RegisterControllers(controllers ...Controller)
	RegisterMiddleware(middleware ...mux.MiddlewareFunc)
	RegisterServices(services ...interface{})
	Service(service interface{}) interface{}
	RegisterModules(modules ...Module) error
}

type ApplicationOptions struct {
	Logger *logrus.Logger
}

func New(opts *ApplicationOptions) Application {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &application{
		logger:      logger,
		controllers: make(map[string]Controller),
		services:    make(map[reflect.Type]interface{}),
	}
}

// application with a dynamically extendable service registry
type application struct {
	logger      *logrus.Logger
	services    map[reflect.Type]interface{}
	controllers map[string]Controller
	middleware  []mux.MiddlewareFunc
}

func (app *application) Logger() *logrus.Logger {
	return app.logger
}

func (app *application) Middleware() []mux.MiddlewareFunc {
	return app.middleware
}

// Controllers are returned ordered by key so route registration is stable.
func (app *application) Controllers() []Controller {
	controllers := make([]Controller, 0, len(app.controllers))
	for _, c := range app.controllers {
		controllers = append(controllers, c)
	}
	sort.Slice(controllers, func(i, j int) bool {
		return controllers[i].Key() < controllers[j].Key()
	})
	return controllers
}

func (app *application) RegisterControllers(controllers ...Controller) {
	for _, c := range controllers {
		app.controllers[c.Key()] = c
	}
}

func (app *application) RegisterMiddleware(middleware ...mux.MiddlewareFunc) {
	app.middleware = append(app.middleware, middleware...)
}

// RegisterServices registers a new service in the application by its type
func (app *application) RegisterServices(services ...interface{}) {
	for _, service := range services {
		serviceType := reflect.TypeOf(service).Elem()
		app.services[serviceType] = service
	}
}

// Service retrieves a service by its type. Both T{} and (*T)(nil) name T.
func (app *application) Service(service interface{}) interface{} {
	serviceType := reflect.TypeOf(service)
	if serviceType.Kind() == reflect.Ptr {
		serviceType = serviceType.Elem()
	}
	svc, exists := app.services[serviceType]
	if !exists {
		panic(fmt.Sprintf("service %s not found", serviceType.Name()))
	}
	return svc
}

func (app *application) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.Register(app); err != nil {
			return fmt.Errorf("register module %s: %w", m.Name(), err)
		}
		app.logger.WithField("module", m.Name()).Debug("module registered")
	}
	return nil
}
