package echoapi

import (
	"context"
	"crypto/rsa"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/campuslink/campuslink/core"
	"github.com/campuslink/campuslink/core/analytics"
	"github.com/campuslink/campuslink/core/application"
	"github.com/campuslink/campuslink/core/event"
	"github.com/campuslink/campuslink/core/favorite"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		JWTKey         *rsa.PublicKey
		Directory      *core.Directory
		EventSvc       *event.Service
		FavoriteSvc    *favorite.Service
		ApplicationSvc *application.Service
		AnalyticsSvc   *analytics.Service
		Translator     ut.Translator
		DisableReqLogs bool
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.app.Server.ReadTimeout = deps.Conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = deps.Conf.Server.WriteTimeout
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = conf.TestMode
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := newJWTMiddleware(s.deps.JWTKey, conf.Identity.Issuer, s.deps.Directory)

	registerEventAPI(v1, jwt, s.deps.EventSvc, conf.Storage.MaxUploadSize)
	registerFavoriteAPI(v1, jwt, s.deps.FavoriteSvc)
	registerApplicationAPI(v1, jwt, s.deps.ApplicationSvc)
	registerAnalyticsAPI(v1, jwt, s.deps.AnalyticsSvc)
}

// Start blocks until the server stops. Failures are reported on Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // shutdown already signaled
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Campuslink API!")
}
