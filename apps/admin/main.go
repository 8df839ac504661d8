package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/masomo/planner/core"
	"github.com/masomo/planner/core/assignment"
	"github.com/masomo/planner/core/course"
	logsvc "github.com/masomo/planner/services/logger"
	"github.com/masomo/planner/storage"
)

func main() {
	std := log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewConsoleLogger(std)

	conf := core.NewConfig()

	// set up record store; migrations are run explicitly
	store, closer, err := storage.Open(conf, false)
	if err != nil {
		logger.Fatal(err.Error(), err)
	}

	// start CLI
	cli := commandLine{
		courseSvc:     course.NewService(store, logger),
		assignmentSvc: assignment.NewService(store, logger),
		out:           os.Stdout,
		table:         term.IsTerminal(int(os.Stdout.Fd())),
	}
	if db, ok := closer.(*sqlx.DB); ok {
		cli.migrator = dbMigrator{db: db}
	}

	err = cli.run(os.Args)
	if cErr := closer.Close(); cErr != nil {
		std.Printf("closing record store: %v", cErr)
	}
	if err != nil {
		if err != errHelp {
			std.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
