package main

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/masomo/planner/storage/database"
)

var errNoDatabase = errors.New("migrate requires the postgres record store")

type migrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
}

// dbMigrator runs the embedded migrations against a postgres database.
type dbMigrator struct {
	db *sqlx.DB
}

func (m dbMigrator) Up() error { return database.Migrate(m.db) }

func (m dbMigrator) Down() error { return database.MigrateDown(m.db) }

func (m dbMigrator) Version() (uint, bool, error) { return database.MigrateVersion(m.db) }

func (cli *commandLine) migrate(command string) error {
	if cli.migrator == nil {
		return errNoDatabase
	}
	switch command {
	case "up":
		return cli.migrator.Up()
	case "down":
		return cli.migrator.Down()
	case "version":
		version, dirty, err := cli.migrator.Version()
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "version: %d (dirty: %t)\n", version, dirty)
		return nil
	default:
		return fmt.Errorf("%q: no such command", command)
	}
}
