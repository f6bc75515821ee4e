package application

import (
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type stubController struct{ key string }

func (c stubController) Key() string { return c.key }
func (c stubController) Register(r *mux.Router) {
	r.HandleFunc(c.key, func(http.ResponseWriter, *http.Request) {})
}

type stubService struct{ name string }

type stubModule struct{ registered bool }

func (m *stubModule) Name() string { return "stub" }
func (m *stubModule) Register(app Application) error {
	m.registered = true
	app.RegisterControllers(stubController{key: "/b"}, stubController{key: "/a"})
	app.RegisterServices(&stubService{name: "svc"})
	return nil
}

func TestApplication_RegisterModules(t *testing.T) {
	app := New(&ApplicationOptions{Logger: logrus.New()})
	m := &stubModule{}
	require.NoError(t, app.RegisterModules(m))
	require.True(t, m.registered)

	controllers := app.Controllers()
	require.Len(t, controllers, 2)
	require.Equal(t, "/a", controllers[0].Key())
	require.Equal(t, "/b", controllers[1].Key())

	svc := app.Service(stubService{}).(*stubService)
	require.Equal(t, "svc", svc.name)
	require.Same(t, svc, app.Service((*stubService)(nil)))
}

func TestApplication_ServicePanicsWhenMissing(t *testing.T) {
	app := New(&ApplicationOptions{})
	require.Panics(t, func() { app.Service(stubService{}) })
}
