package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/elevezen/elevezen/core"
	"github.com/elevezen/elevezen/core/adminreq"
	"github.com/elevezen/elevezen/core/student"
	"github.com/elevezen/elevezen/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool
		Logger         core.Logger

		UserSvc     user.Service
		AdminReqSvc adminreq.Service
		StudentSvc  student.Service
		Storage     core.FileStorage
		MediaRoot   string // local dir served at /media; empty disables it

		// SignalShutdown is called when an unrecoverable error is caught;
		// the main goroutine is expected to stop the server.
		SignalShutdown func()
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.SignalShutdown == nil {
		opts.SignalShutdown = func() {}
	}
	s := &server{
		opts: opts,
		app:  echo.New(),
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

	appJWTConfig.SigningKey = core.Conf.SecretKey
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.SignalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)
	if s.opts.MediaRoot != "" {
		s.app.Static("/media", s.opts.MediaRoot)
	}

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.UserSvc, s.opts.Storage)
	registerAdminRequestAPI(v1, jwt, s.opts.AdminReqSvc, s.opts.UserSvc)
	registerStudentAPI(v1, jwt, s.opts.StudentSvc, s.opts.UserSvc, s.opts.Storage)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to ÉlèveZen API!")
}
