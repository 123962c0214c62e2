package main

import (
	"context"
	"database/sql"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/dentalearn/lms/apps/api/echo"
	"github.com/dentalearn/lms/core"
	"github.com/dentalearn/lms/core/certificate"
	"github.com/dentalearn/lms/core/course"
	"github.com/dentalearn/lms/core/progress"
	"github.com/dentalearn/lms/core/user"
	emailsvc "github.com/dentalearn/lms/services/email"
	logsvc "github.com/dentalearn/lms/services/logger"
	remindersvc "github.com/dentalearn/lms/services/reminder"
	"github.com/dentalearn/lms/storage"
	"github.com/dentalearn/lms/storage/database"
	boiledrepos "github.com/dentalearn/lms/storage/database/sqlboiler"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// set up loggers
	newLogger := func(prefix string) *logsvc.RollbarLogger {
		l := logsvc.NewRollbarLogger(
			log.New(os.Stdout, prefix, log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
			conf,
		)
		l.Enable(!conf.Debug)
		return l
	}
	logger := newLogger("API : ")
	defer logger.Close()
	dbLogger := newLogger("DB : ")
	cronLogger := newLogger("CRON : ")

	// set up DB
	db, err := setUpDB(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	store, closeStore, err := storage.OpenProgressStore(ctx, conf, db)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up progress store: %v", err), err)
	}
	defer func() {
		if err = closeStore.Close(); err != nil {
			dbLogger.Error("Failed to close progress store", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(log.New(os.Stdout, "", 0), logger, conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}
	usrSvc := user.NewService(boiledrepos.NewUserRepository(db), mailSvc, conf)
	courseSvc := course.NewService(boiledrepos.NewCourseRepository(db))
	registry := progress.NewRegistry(store, progress.TrackerConfig{
		VideoCompletionThreshold: conf.Progress.VideoCompletionThreshold,
		Logger:                   dbLogger,
	})
	progressSvc := progress.NewService(registry, courseSvc)
	certSvc := certificate.NewService(
		boiledrepos.NewCertificateRepository(db), courseSvc, progressSvc, mailSvc, logger, conf,
	)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : %s", conf))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	progress.InitValidators(validate, translator)

	core.ParseEmailTemplates(logger)

	user.LoadCommonPasswords(logger)

	// =========================================================================
	// Start Reminders

	if conf.Reminder.Enabled {
		reminders := remindersvc.NewService(courseSvc, progressSvc, usrSvc, mailSvc, cronLogger, conf.Reminder)
		if _, err = reminders.Schedule(ctx); err != nil {
			logger.Fatal(fmt.Sprintf("scheduling reminders: %v", err), err)
		}
		cronLogger.Info(fmt.Sprintf("reminders scheduled : %q", conf.Reminder.Schedule))
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("progressStore").Set(conf.Progress.Store)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:           conf,
			Logger:         logger,
			UserSvc:        usrSvc,
			CourseSvc:      courseSvc,
			ProgressSvc:    progressSvc,
			CertificateSvc: certSvc,
			Validate:       validate,
			Translator:     translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancelShutdown()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(shutdownCtx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}

		// stop the reminders before the stores they read go away
		cancel()

		if err = progressSvc.Flush(shutdownCtx); err != nil {
			dbLogger.Error(fmt.Sprintf("could not flush progress: %v", err), err)
		}
	}
}

func setUpDB(ctx context.Context, conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
