package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/yash-1818/planemate/core"
	"github.com/yash-1818/planemate/core/list"
	"github.com/yash-1818/planemate/core/task"
	"github.com/yash-1818/planemate/core/user"
	exportsvc "github.com/yash-1818/planemate/services/export"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool
		UserSvc        user.Service
		ListSvc        list.Service
		TaskSvc        task.Service
		Exporter       *exportsvc.Exporter
		Logger         core.Logger
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
		// ShutdownSignal is closed when an unrecoverable error is caught
		// and the server must be brought down.
		ShutdownSignal() <-chan struct{}
	}

	server struct {
		opts *Options
		app  *echo.Echo

		// closed by the error handler on an unrecoverable store error
		shutdown chan struct{}
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan struct{}),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug && !core.Conf.TestMode
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.UserSvc)
	registerListAPI(v1, jwt, s.opts.ListSvc)
	registerTaskAPI(v1, jwt, s.opts.TaskSvc, s.opts.ListSvc, s.opts.Exporter)
	registerDashboardAPI(v1, jwt, s.opts.TaskSvc)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) signalShutdown() {
	select {
	case <-s.shutdown:
	default:
		close(s.shutdown)
	}
}

// ShutdownSignal exposes the channel closed on an unrecoverable error.
func (s *server) ShutdownSignal() <-chan struct{} {
	return s.shutdown
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+core.Conf.AppName+" API!")
}
