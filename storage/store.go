// Package storage selects the core.RecordStore backing the apps.
package storage

import (
	"io"

	"github.com/pkg/errors"

	"github.com/masomo/planner/core"
	"github.com/masomo/planner/core/assignment"
	"github.com/masomo/planner/core/course"
	"github.com/masomo/planner/services/recordstore"
	"github.com/masomo/planner/storage/database"
	"github.com/masomo/planner/storage/database/pgstore"
	inmemdb "github.com/masomo/planner/storage/inmem"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the record store of the configured engine & a closer releasing it.
// The postgres engine is migrated to the latest version when migrate is true.
func Open(conf *core.Config, migrate bool) (core.RecordStore, io.Closer, error) {
	switch conf.Store.Engine {
	case core.StoreApper:
		return recordstore.NewFromConfig(conf), nopCloser{}, nil
	case core.StorePostgres:
		db, err := database.Open(conf)
		if err != nil {
			return nil, nil, err
		}
		if migrate {
			if err = database.Migrate(db); err != nil {
				_ = db.Close()
				return nil, nil, err
			}
		}
		return pgstore.New(db), db, nil
	case core.StoreMemory:
		return inmemdb.Open(course.Table, assignment.Table), nopCloser{}, nil
	default:
		return nil, nil, errors.Errorf("unknown record store engine %q", conf.Store.Engine)
	}
}
