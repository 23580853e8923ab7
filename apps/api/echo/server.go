package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/roshna21/DevOps-project/core"
	"github.com/roshna21/DevOps-project/core/account"
	"github.com/roshna21/DevOps-project/core/notification"
	"github.com/roshna21/DevOps-project/core/student"
)

type Server struct {
	conf       *core.Config
	app        *echo.Echo
	logger     core.Logger
	jwtConfig  middleware.JWTConfig
	translator ut.Translator

	students      *student.Service
	accounts      *account.Service
	notifications *notification.Service

	errors   chan error
	shutdown chan os.Signal
}

func NewServer(
	conf *core.Config,
	logger core.Logger,
	translator ut.Translator,
	students *student.Service,
	accounts *account.Service,
	notifications *notification.Service,
) *Server {
	s := &Server{
		conf:          conf,
		app:           echo.New(),
		logger:        logger,
		jwtConfig:     newJWTConfig(conf),
		translator:    translator,
		students:      students,
		accounts:      accounts,
		notifications: notifications,
		errors:        make(chan error, 1),
		shutdown:      make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Server.ReadTimeout = s.conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = s.conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger, s.translator, s.signalShutdown)
	s.app.Debug = s.conf.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(s.jwtConfig)

	registerAccountAPI(v1, jwt, s.conf, s.accounts)
	registerStudentAPI(v1, jwt, s.students, s.accounts)
	registerNotificationAPI(v1, jwt, s.notifications, s.accounts)
}

// Start listens on the configured host; failures are reported on Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.conf.AppName+" API!")
}
