package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dentalearn/lms/core"
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
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	ctx := context.Background()

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	if err = db.PingContext(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("pinging database: %v", err), err)
	}

	store, closeStore, err := storage.OpenProgressStore(ctx, conf, db)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up progress store: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(log.New(os.Stdout, "", 0), logger, conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}
	core.ParseEmailTemplates(logger)

	usrRepo := boiledrepos.NewUserRepository(db)
	courseSvc := course.NewService(boiledrepos.NewCourseRepository(db))
	progressSvc := progress.NewService(
		progress.NewRegistry(store, progress.TrackerConfig{
			VideoCompletionThreshold: conf.Progress.VideoCompletionThreshold,
			Logger:                   logger,
		}),
		courseSvc,
	)
	usrSvc := user.NewService(usrRepo, mailSvc, conf)

	// start CLI
	cli := commandLine{
		db:        db,
		usrRepo:   usrRepo,
		reminders: remindersvc.NewService(courseSvc, progressSvc, usrSvc, mailSvc, logger, conf.Reminder),
	}
	err = cli.run(os.Args)

	_ = closeStore.Close()
	_ = db.Close()
	if err != nil && err != errHelp {
		logger.Error(fmt.Sprintf("error: %v", err), err)
	}
	logger.Close()
	if err != nil {
		os.Exit(1)
	}
}
