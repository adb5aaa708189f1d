package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/admission"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/album"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/graduate"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/message"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/report"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/settings"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/student"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/teacher"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
	notifysvc "github.com/Adeanak/web-pendidikanalhikmahfix-sub000/services/notify"
)

type (
	// ServerDeps holds the services served by the API.
	ServerDeps struct {
		Users      *user.Service
		Admissions *admission.Service
		Messages   *message.Service
		Students   *student.Service
		Teachers   *teacher.Service
		Graduates  *graduate.Service
		Settings   *settings.Service
		Albums     *album.Service
		Reports    *report.Service

		Hub      *notifysvc.Hub // optional; no websocket route without it
		MediaDir string         // optional; local uploads are served under /media when set
	}

	Server struct {
		conf     *core.Config
		logger   core.Logger
		deps     *ServerDeps
		auth     *tokenAuth
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(conf *core.Config, logger core.Logger, deps *ServerDeps) *Server {
	s := &Server{
		conf:     conf,
		logger:   logger,
		deps:     deps,
		auth:     newTokenAuth(conf),
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.conf.Server.AllowOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization, accessCodeHeader},
	}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger, s.signalShutdown)
	s.app.Debug = s.conf.Debug && !s.conf.TestMode

	s.app.GET("/", s.home)
	if s.deps.MediaDir != "" {
		s.app.Static("/media", s.deps.MediaDir)
	}

	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(s.auth.jwtConfig)

	registerSiteAPI(api, s.deps)
	registerAuthAPI(api, jwt, s.auth, s.deps.Users)

	admin := api.Group("/admin", accessCodeGate(s.conf.Server.AdminAccessCode))
	if s.deps.Hub != nil {
		registerNotificationsAPI(admin, s.auth, s.deps.Users, s.deps.Hub)
	}

	authed := admin.Group("", jwt, activeSession(s.deps.Users))
	registerWorkspaceAPI(authed)
	registerUserAPI(authed, s.deps.Users)
	registerAdmissionAPI(authed, s.deps.Admissions)
	registerMessageAPI(authed, s.deps.Messages)
	registerStudentAPI(authed, s.deps.Students)
	registerTeacherAPI(authed, s.deps.Teachers)
	registerGraduateAPI(authed, s.deps.Graduates)
	registerAlbumAPI(authed, s.deps.Albums)
	registerSettingsAPI(authed, s.deps.Settings)
	registerReportAPI(authed, s.deps.Reports)
}

// Start listens on the configured address. Listener failures are sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

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

// GenerateToken returns a signed session token for `usr`.
func (s *Server) GenerateToken(usr user.User) (string, error) {
	return s.auth.generate(s.auth.claims(usr))
}

// SignToken signs arbitrary claims with the server key.
func (s *Server) SignToken(claims *Claims) (string, error) {
	return s.auth.generate(claims)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Selamat datang di API "+s.conf.AppName+"!")
}
