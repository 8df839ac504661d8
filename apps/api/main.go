package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/masomo/planner/apps/api/echo"
	"github.com/masomo/planner/core"
	"github.com/masomo/planner/core/assignment"
	"github.com/masomo/planner/core/course"
	logsvc "github.com/masomo/planner/services/logger"
	"github.com/masomo/planner/services/metrics"
	"github.com/masomo/planner/storage"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	var logger, storeLogger core.Logger
	if conf.Debug {
		logger = logsvc.NewConsoleLogger(log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile))
		storeLogger = logsvc.NewConsoleLogger(log.New(os.Stdout, "STORE : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile))
	} else {
		rbLogger := logsvc.NewRollbarLogger(log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
		rbLogger.Enable(true)
		logger = rbLogger
		storeLogger = logsvc.NewRollbarLogger(log.New(os.Stdout, "STORE : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	if err := core.ValidateConfig(conf, validate, translator); err != nil {
		logger.Fatal(fmt.Sprintf("invalid configuration: %v", err), err)
	}

	// set up record store
	store, closer, err := storage.Open(conf, true)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up record store: %v", err), err)
	}
	defer func() {
		if err = closer.Close(); err != nil {
			storeLogger.Error("Failed to close", err)
		}
	}()

	reg := metrics.NewRegistry()
	store = metrics.InstrumentStore(store, reg)

	// set up services
	courseSvc := course.NewService(store, storeLogger)
	assignmentSvc := assignment.NewService(store, storeLogger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q, store %q", conf.Build, conf.Store.Engine))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("store").Set(conf.Store.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			CourseSvc:     courseSvc,
			AssignmentSvc: assignmentSvc,
			Metrics:       reg,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
