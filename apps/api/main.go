package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	echoapi "github.com/yash-1818/planemate/apps/api/echo"
	"github.com/yash-1818/planemate/core"
	"github.com/yash-1818/planemate/core/list"
	"github.com/yash-1818/planemate/core/task"
	"github.com/yash-1818/planemate/core/user"
	emailsvc "github.com/yash-1818/planemate/services/email"
	exportsvc "github.com/yash-1818/planemate/services/export"
	logsvc "github.com/yash-1818/planemate/services/logger"
	remindersvc "github.com/yash-1818/planemate/services/reminder"
	"github.com/yash-1818/planemate/storage/database"
	sqlxrepos "github.com/yash-1818/planemate/storage/database/sqlx"
)

func main() {
	stdLogger := log.New(os.Stdout, core.Conf.AppName+" API : ", log.LstdFlags|log.Lshortfile)

	var logger core.Logger
	if core.Conf.Debug {
		logger = logsvc.NewConsoleLogger(stdLogger)
	} else {
		logger = logsvc.NewRollbarLogger(stdLogger, core.Conf)
	}

	if err := run(stdLogger, logger); err != nil {
		logger.Fatal("starting app", err)
	}
}

func run(stdLogger *log.Logger, logger core.Logger) error {
	// set up DB
	if err := database.CreateIfNotExist(core.Conf); err != nil {
		return err
	}
	db, err := database.Open(core.Conf)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Ping(db); err != nil {
		return err
	}
	if err := database.Migrate(db.DB); err != nil {
		return err
	}

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	listRepo := sqlxrepos.NewListRepository(db)
	taskRepo := sqlxrepos.NewTaskRepository(db)

	usrSvc := user.NewService(usrRepo)
	listSvc := list.NewService(listRepo)
	taskSvc := task.NewService(taskRepo, listRepo)
	exporter := exportsvc.NewExporter(taskSvc)

	// daily due-task reminder
	if core.Conf.Reminder.Enabled {
		reminder := remindersvc.NewService(taskSvc, usrSvc, mailSvc, logger)
		if err := reminder.Start(); err != nil {
			return err
		}
		defer reminder.Stop()
	}

	// start API server
	app := echoapi.NewServer(&echoapi.Options{
		Address:  core.Conf.Addr(),
		UserSvc:  usrSvc,
		ListSvc:  listSvc,
		TaskSvc:  taskSvc,
		Exporter: exporter,
		Logger:   logger,
	})

	serverErrors := make(chan error, 1)
	go func() {
		stdLogger.Printf("server listening at %s", core.Conf.Addr())
		serverErrors <- app.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return err
	case <-app.ShutdownSignal():
		stdLogger.Println("unrecoverable error, shutting down")
	case sig := <-shutdown:
		stdLogger.Printf("%v : starting shutdown", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
	defer cancel()

	if err := app.Stop(ctx); err != nil {
		stdLogger.Printf("graceful shutdown did not complete in %v : %v", core.Conf.Server.ShutdownTimeout, err)
		return err
	}
	return nil
}
