package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	echoapi "github.com/elevezen/elevezen/apps/api/echo"
	"github.com/elevezen/elevezen/core"
	"github.com/elevezen/elevezen/core/adminreq"
	"github.com/elevezen/elevezen/core/student"
	"github.com/elevezen/elevezen/core/user"
	emailsvc "github.com/elevezen/elevezen/services/email"
	sendgridmail "github.com/elevezen/elevezen/services/email/sendgrid"
	logsvc "github.com/elevezen/elevezen/services/logger"
	storagesvc "github.com/elevezen/elevezen/services/storage"
	"github.com/elevezen/elevezen/storage/database"
	sqlxrepos "github.com/elevezen/elevezen/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	core.InitConf()

	// set up logger
	var logger core.Logger
	if core.Conf.Debug || core.Conf.RollbarToken == "" {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, core.Conf)
	}

	// set up DB
	if err := database.CreateIfNotExist(core.Conf); err != nil {
		logger.Fatal("creating database", err)
	}
	db, err := database.Open(core.Conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer db.Close()
	if err := database.Migrate(db.DB); err != nil {
		logger.Fatal("migrating database", err)
	}

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = sendgridmail.NewService(core.Conf, logger)
	}

	mediaRoot := filepath.Join(core.Conf.WorkDir, "media")
	fileStorage, err := storagesvc.NewLocalStorage(mediaRoot, "/media")
	if err != nil {
		logger.Fatal("setting up file storage", err)
	}

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc)
	reqSvc := adminreq.NewService(sqlxrepos.NewAdminRequestRepository(db), usrSvc, mailSvc, logger)
	stSvc := student.NewService(sqlxrepos.NewStudentRepository(db))

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	app := echoapi.NewServer(
		&echoapi.Options{
			Address:        fmt.Sprintf("%s:%d", core.Conf.Server.Host, core.Conf.Server.Port),
			Logger:         logger,
			UserSvc:        usrSvc,
			AdminReqSvc:    reqSvc,
			StudentSvc:     stSvc,
			Storage:        fileStorage,
			MediaRoot:      mediaRoot,
			SignalShutdown: func() { shutdown <- syscall.SIGTERM },
		},
	)
	go app.Start()

	sig := <-shutdown
	logger.Info("shutting down", map[string]interface{}{"signal": sig.String()})

	ctx, cancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		logger.Error("graceful shutdown failed", err)
	}
}
