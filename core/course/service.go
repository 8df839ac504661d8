package course

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/masomo/planner/core"
)

// operation-scoped failures returned to callers
const (
	errFetchAll = "Failed to fetch courses"
	errFetch    = "Failed to fetch course"
	errCreate   = "Failed to create course"
	errUpdate   = "Failed to update course"
	errDelete   = "Failed to delete course"
)

var newestFirst = []core.Ordering{{Field: core.FieldCreatedOn, Ascending: false}}

type (
	Service interface {
		QueryAll(ctx context.Context) ([]Course, error)
		GetByID(ctx context.Context, id int) (Course, error)
		Create(ctx context.Context, nc NewCourse) (Course, error)
		Update(ctx context.Context, id int, uc UpdateCourse) (Course, error)
		Delete(ctx context.Context, id int) (bool, error)
	}

	service struct {
		store  core.RecordStore
		logger core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(store core.RecordStore, logger core.Logger) Service {
	return &service{store: store, logger: logger}
}

// fail logs the full detail of err and returns the coarse failure.
func (svc *service) fail(msg, logMsg string, err error) error {
	svc.logger.Error(logMsg, errors.WithStack(err))
	return core.NewOpError(msg, err)
}

func (svc *service) QueryAll(ctx context.Context) ([]Course, error) {
	recs, err := svc.store.FetchRecords(ctx, Table, core.Query{
		Fields:  fields,
		OrderBy: newestFirst,
		Paging:  core.FirstPage(),
	})
	if err != nil {
		return nil, svc.fail(errFetchAll, "Error fetching courses", err)
	}
	courses := make([]Course, 0, len(recs))
	for _, rec := range recs {
		courses = append(courses, Normalize(rec))
	}
	return courses, nil
}

func (svc *service) GetByID(ctx context.Context, id int) (Course, error) {
	rec, err := svc.store.GetRecordByID(ctx, Table, id, core.Query{Fields: fields})
	if err == nil && rec == nil {
		err = errors.Wrap(core.ErrNotFound, "course not found")
	}
	if err != nil {
		return Course{}, svc.fail(errFetch, fmt.Sprintf("Error fetching course %d", id), err)
	}
	return Normalize(rec), nil
}

// Create returns the created course with the schedule given in nc:
// the record store does not echo structured schedules.
func (svc *service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	results, err := svc.store.CreateRecords(ctx, Table, nc.record())
	var rec core.Record
	if err == nil {
		rec, err = core.CheckWrite(svc.logger, errCreate, results)
	}
	if err != nil {
		return Course{}, svc.fail(errCreate, "Error creating course", err)
	}
	c := Normalize(rec)
	c.Schedule = scheduleOrEmpty(nc.Schedule)
	return c, nil
}

// Update only writes the fields of uc that are Set.
// When uc sets a schedule it is returned as given, otherwise it is rebuilt from the updated record.
func (svc *service) Update(ctx context.Context, id int, uc UpdateCourse) (Course, error) {
	results, err := svc.store.UpdateRecords(ctx, Table, uc.record(id))
	var rec core.Record
	if err == nil {
		rec, err = core.CheckWrite(svc.logger, errUpdate, results)
	}
	if err != nil {
		return Course{}, svc.fail(errUpdate, fmt.Sprintf("Error updating course %d", id), err)
	}
	c := Normalize(rec)
	if uc.Schedule.Set {
		c.Schedule = scheduleOrEmpty(uc.Schedule.Value)
	}
	return c, nil
}

// Delete reports whether the record store deleted at least one record.
func (svc *service) Delete(ctx context.Context, id int) (bool, error) {
	results, err := svc.store.DeleteRecords(ctx, Table, id)
	var deleted bool
	if err == nil {
		deleted, err = core.CheckDelete(svc.logger, errDelete, results)
	}
	if err != nil {
		return false, svc.fail(errDelete, fmt.Sprintf("Error deleting course %d", id), err)
	}
	return deleted, nil
}
