package assignment

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/masomo/planner/core"
)

// operation-scoped failures returned to callers
const (
	errFetchAll       = "Failed to fetch assignments"
	errFetch          = "Failed to fetch assignment"
	errFetchForCourse = "Failed to fetch course assignments"
	errCreate         = "Failed to create assignment"
	errUpdate         = "Failed to update assignment"
	errDelete         = "Failed to delete assignment"
	errToggle         = "Failed to toggle assignment completion"
)

var byDueDate = []core.Ordering{{Field: fieldDueDate, Ascending: true}}

type (
	Service interface {
		QueryAll(ctx context.Context) ([]Assignment, error)
		QueryByCourse(ctx context.Context, courseID string) ([]Assignment, error)
		GetByID(ctx context.Context, id int) (Assignment, error)
		Create(ctx context.Context, na NewAssignment) (Assignment, error)
		Update(ctx context.Context, id int, ua UpdateAssignment) (Assignment, error)
		Delete(ctx context.Context, id int) (bool, error)
		ToggleComplete(ctx context.Context, id int, completed bool) (Assignment, error)
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
func (svc *service) fail(msg, logMsg string, err error, extra map[string]interface{}) error {
	svc.logger.Error(logMsg, errors.WithStack(err), extra)
	return core.NewOpError(msg, err)
}

func (svc *service) QueryAll(ctx context.Context) ([]Assignment, error) {
	recs, err := svc.store.FetchRecords(ctx, Table, core.Query{
		Fields:  fields,
		OrderBy: byDueDate,
		Paging:  core.FirstPage(),
	})
	if err != nil {
		return nil, svc.fail(errFetchAll, "Error fetching assignments", err, nil)
	}
	return normalizeAll(recs), nil
}

// QueryByCourse returns the assignments of the course `courseID`, ordered by due date.
func (svc *service) QueryByCourse(ctx context.Context, courseID string) ([]Assignment, error) {
	id, ok := core.ParseInt(courseID)
	if !ok {
		// nothing can reference an invalid course id
		return []Assignment{}, nil
	}
	recs, err := svc.store.FetchRecords(ctx, Table, core.Query{
		Fields:  fields,
		Where:   []core.Condition{core.Eq(fieldCourseID, id)},
		OrderBy: byDueDate,
		Paging:  core.FirstPage(),
	})
	if err != nil {
		return nil, svc.fail(errFetchForCourse, "Error fetching course assignments", err, map[string]interface{}{"courseId": courseID})
	}
	return normalizeAll(recs), nil
}

func (svc *service) GetByID(ctx context.Context, id int) (Assignment, error) {
	rec, err := svc.store.GetRecordByID(ctx, Table, id, core.Query{Fields: fields})
	if err == nil && rec == nil {
		err = errors.Wrap(core.ErrNotFound, "assignment not found")
	}
	if err != nil {
		return Assignment{}, svc.fail(errFetch, fmt.Sprintf("Error fetching assignment %d", id), err, nil)
	}
	return Normalize(rec), nil
}

func (svc *service) Create(ctx context.Context, na NewAssignment) (Assignment, error) {
	rec := na.record()
	results, err := svc.store.CreateRecords(ctx, Table, rec)
	if err == nil {
		rec, err = core.CheckWrite(svc.logger, errCreate, results)
	}
	if err != nil {
		return Assignment{}, svc.fail(errCreate, "Error creating assignment", err, nil)
	}
	return Normalize(rec), nil
}

// Update only writes the fields of ua that are Set.
func (svc *service) Update(ctx context.Context, id int, ua UpdateAssignment) (Assignment, error) {
	rec := ua.record(id)
	results, err := svc.store.UpdateRecords(ctx, Table, rec)
	if err == nil {
		rec, err = core.CheckWrite(svc.logger, errUpdate, results)
	}
	if err != nil {
		return Assignment{}, svc.fail(errUpdate, fmt.Sprintf("Error updating assignment %d", id), err, nil)
	}
	return Normalize(rec), nil
}

// Delete reports whether the record store deleted at least one record.
func (svc *service) Delete(ctx context.Context, id int) (bool, error) {
	results, err := svc.store.DeleteRecords(ctx, Table, id)
	var deleted bool
	if err == nil {
		deleted, err = core.CheckDelete(svc.logger, errDelete, results)
	}
	if err != nil {
		return false, svc.fail(errDelete, fmt.Sprintf("Error deleting assignment %d", id), err, nil)
	}
	return deleted, nil
}

func (svc *service) ToggleComplete(ctx context.Context, id int, completed bool) (Assignment, error) {
	a, err := svc.Update(ctx, id, UpdateAssignment{Completed: core.Set(completed)})
	if err != nil {
		return Assignment{}, svc.fail(errToggle, "Error toggling assignment completion", err, nil)
	}
	return a, nil
}

func normalizeAll(recs []core.Record) []Assignment {
	assignments := make([]Assignment, 0, len(recs))
	for _, rec := range recs {
		assignments = append(assignments, Normalize(rec))
	}
	return assignments
}
