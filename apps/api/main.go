package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/qitc/apps/api/echo"
	"github.com/trezcool/qitc/core"
	"github.com/trezcool/qitc/core/application"
	"github.com/trezcool/qitc/core/auth"
	"github.com/trezcool/qitc/core/course"
	"github.com/trezcool/qitc/core/enroll"
	"github.com/trezcool/qitc/core/user"
	emailsvc "github.com/trezcool/qitc/services/email"
	logsvc "github.com/trezcool/qitc/services/logger"
	"github.com/trezcool/qitc/storage/database"
	pgrepos "github.com/trezcool/qitc/storage/database/postgres"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %+v", err)
	}

	// set up loggers
	var logger core.Logger
	if conf.Debug {
		zl, err := logsvc.NewZapLogger(conf)
		if err != nil {
			log.Fatalf("setting up logger: %+v", err)
		}
		defer func() { _ = zl.Sync() }()
		logger = zl
	} else {
		rl := logsvc.NewRollbarLogger(
			log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
			conf,
		)
		rl.Enable(true)
		logger = rl
	}

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("setting up database", "err", err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("failed to close database", "err", err)
		}
	}()
	if err = database.Migrate(db); err != nil {
		logger.Fatal("migrating database", "err", err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrRepo := pgrepos.NewUserRepository(db, conf)
	crsRepo := pgrepos.NewCourseRepository(db, conf)

	usrSvc := user.NewService(usrRepo, conf, logger)
	authSvc := auth.NewService(pgrepos.NewRevocationRepository(db, conf), conf, logger)
	crsSvc := course.NewService(crsRepo, logger)
	enrSvc := enroll.NewService(pgrepos.NewEnrollmentRepository(db, conf), usrRepo, crsRepo, logger)
	appSvc := application.NewService(pgrepos.NewApplicationRepository(db, conf), mailSvc, conf, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.RegisterCustomValidators(validate, translator)

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			AuthSvc:    authSvc,
			UserSvc:    usrSvc,
			CourseSvc:  crsSvc,
			EnrollSvc:  enrSvc,
			AppSvc:     appSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		logger.Fatal("server error", "err", err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error("could not stop server gracefully", "err", err)

			if err = server.Close(); err != nil {
				logger.Fatal("could not force stop server", "err", err)
			}
		}
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
