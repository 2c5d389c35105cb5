package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/newrise0410/piano-academy-app-sub002/api/echo"
	"github.com/newrise0410/piano-academy-app-sub002/core"
	"github.com/newrise0410/piano-academy-app-sub002/core/activity"
	"github.com/newrise0410/piano-academy-app-sub002/core/attendance"
	"github.com/newrise0410/piano-academy-app-sub002/core/dispatch"
	"github.com/newrise0410/piano-academy-app-sub002/core/gallery"
	"github.com/newrise0410/piano-academy-app-sub002/core/lessonnote"
	"github.com/newrise0410/piano-academy-app-sub002/core/notice"
	"github.com/newrise0410/piano-academy-app-sub002/core/notification"
	"github.com/newrise0410/piano-academy-app-sub002/core/payment"
	"github.com/newrise0410/piano-academy-app-sub002/core/schedule"
	"github.com/newrise0410/piano-academy-app-sub002/core/student"
	"github.com/newrise0410/piano-academy-app-sub002/core/user"
	emailsvc "github.com/newrise0410/piano-academy-app-sub002/services/email"
	logsvc "github.com/newrise0410/piano-academy-app-sub002/services/logger"
	pushsvc "github.com/newrise0410/piano-academy-app-sub002/services/push"
	"github.com/newrise0410/piano-academy-app-sub002/storage"
	"github.com/newrise0410/piano-academy-app-sub002/storage/kv"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	ctx := context.Background()

	// set up the storage adapter; redis backs token/session persistence except
	// in mock mode where everything stays in-process
	var keeper kv.Store
	if conf.IsMockMode() {
		keeper = kv.NewInmemStore()
	} else {
		redisStore := kv.NewRedisStore(conf)
		if !redisStore.Healthy(ctx) {
			logger.Fatal("redis unreachable at " + conf.Redis.Addr)
		}
		defer func() {
			if err := redisStore.Close(); err != nil {
				logger.Error(fmt.Sprintf("closing redis: %v", err), err)
			}
		}()
		keeper = redisStore
	}

	// set up repositories for the configured source
	repos, err := storage.NewRepositories(ctx, conf, keeper, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up %s storage: %v", conf.Source, err), err)
	}
	defer func() {
		if err := repos.Close(context.Background()); err != nil {
			logger.Error(fmt.Sprintf("closing storage: %v", err), err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	dispatcher := dispatch.New(logger)
	defer dispatcher.Close()

	activitySvc := activity.NewService(repos.Activities, logger, dispatcher)
	notifSvc := notification.NewService(repos.Notifications, logger, dispatcher, pushsvc.NewGatewayService(conf, logger))
	stuSvc := student.NewService(repos.Students, logger, activitySvc, notifSvc, conf.Cache.StudentTTL)
	writer := student.Writer{Svc: stuSvc}

	svcs := echoapi.Services{
		Users:         user.NewService(repos.Users, mailSvc, keeper, conf),
		Students:      stuSvc,
		Attendance:    attendance.NewService(repos.Attendance, logger, activitySvc, conf.Cache.AttendanceTTL),
		Notices:       notice.NewService(repos.Notices, logger, notifSvc, conf.Cache.NoticeTTL),
		Payments:      payment.NewService(repos.Payments, logger, activitySvc, notifSvc, writer, conf.Cache.PaymentTTL),
		LessonNotes:   lessonnote.NewService(repos.LessonNotes, logger, activitySvc, conf.Cache.LessonNoteTTL),
		Gallery:       gallery.NewService(repos.Gallery, logger, activitySvc, conf.Cache.GalleryTTL),
		Activities:    activitySvc,
		Notifications: notifSvc,
		Schedules:     schedule.NewService(repos.ScheduleRequests, writer, logger, activitySvc, notifSvc),
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q : source %q", conf.Build, conf.Source))
	defer logger.Info("Application stopped")

	core.InitValidators(validator.New(), newTranslator())

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("source").Set(string(conf.Source))

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Address:        conf.Server.Host,
		Conf:           conf,
		Logger:         logger,
		Services:       svcs,
		Repos:          repos,
		SignalShutdown: func() { shutdown <- syscall.SIGTERM },
	})

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
