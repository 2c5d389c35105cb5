// Package echoapi exposes the academy services over HTTP. It fronts the
// same service layer every backend mode shares; handlers never touch
// repositories directly.
package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/newrise0410/piano-academy-app-sub002/core"
	"github.com/newrise0410/piano-academy-app-sub002/core/activity"
	"github.com/newrise0410/piano-academy-app-sub002/core/attendance"
	"github.com/newrise0410/piano-academy-app-sub002/core/gallery"
	"github.com/newrise0410/piano-academy-app-sub002/core/lessonnote"
	"github.com/newrise0410/piano-academy-app-sub002/core/notice"
	"github.com/newrise0410/piano-academy-app-sub002/core/notification"
	"github.com/newrise0410/piano-academy-app-sub002/core/payment"
	"github.com/newrise0410/piano-academy-app-sub002/core/schedule"
	"github.com/newrise0410/piano-academy-app-sub002/core/student"
	"github.com/newrise0410/piano-academy-app-sub002/core/user"
	"github.com/newrise0410/piano-academy-app-sub002/storage"
)

type (
	Services struct {
		Users         *user.Service
		Students      *student.Service
		Attendance    *attendance.Service
		Notices       *notice.Service
		Payments      *payment.Service
		LessonNotes   *lessonnote.Service
		Gallery       *gallery.Service
		Activities    *activity.Service
		Notifications *notification.Service
		Schedules     *schedule.Service
	}

	Options struct {
		Address        string
		DisableReqLogs bool
		Conf           *core.Config
		Logger         core.Logger
		Services       Services
		// Repos grants access to mode-specific extras (change streams in
		// mongo mode); handlers fall back gracefully when they are absent.
		Repos *storage.Repositories
		// SignalShutdown is called when an integrity error demands a
		// graceful stop.
		SignalShutdown func()
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.app.Group("/v1")
	jwt := appJWTMiddleware(conf)
	svcs := s.opts.Services

	registerAuthAPI(v1, jwt, conf, svcs.Users)
	registerStudentAPI(v1, jwt, svcs.Students, s.opts.Repos)
	registerAttendanceAPI(v1, jwt, svcs.Attendance)
	registerNoticeAPI(v1, jwt, svcs.Notices)
	registerPaymentAPI(v1, jwt, conf, svcs.Payments)
	registerLessonNoteAPI(v1, jwt, svcs.LessonNotes, svcs.Users)
	registerGalleryAPI(v1, jwt, svcs.Gallery)
	registerScheduleAPI(v1, jwt, svcs.Schedules)
	registerDashboardAPI(v1, jwt, conf, svcs)
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

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the Piano Academy API!")
}
