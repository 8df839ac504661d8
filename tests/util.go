package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/masomo/planner/core"
	"github.com/masomo/planner/core/assignment"
	"github.com/masomo/planner/core/course"
	inmemdb "github.com/masomo/planner/storage/inmem"
)

// NewStore returns an empty in-memory store holding the course & assignment tables.
func NewStore() *inmemdb.DB {
	return inmemdb.Open(course.Table, assignment.Table)
}

func CreateCourse(t *testing.T, svc course.Service, nc course.NewCourse) course.Course {
	t.Helper()
	c, err := svc.Create(context.Background(), nc)
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return c
}

func CreateAssignment(t *testing.T, svc assignment.Service, na assignment.NewAssignment) assignment.Assignment {
	t.Helper()
	a, err := svc.Create(context.Background(), na)
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return a
}

// InsertRecord writes a raw record, bypassing the adapters' defaults.
func InsertRecord(t *testing.T, store core.RecordStore, table string, rec core.Record) core.Record {
	t.Helper()
	results, err := store.CreateRecords(context.Background(), table, rec)
	if err != nil {
		t.Fatalf("InsertRecord() failed: %v", err)
	}
	if len(results) != 1 || !results[0].Success {
		t.Fatalf("InsertRecord() failed: %+v", results)
	}
	return results[0].Data
}

// Call is a record store call captured by StubStore.
type Call struct {
	Op      string
	Table   string
	Query   core.Query
	ID      int
	Records []core.Record
	IDs     []int
}

// StubStore is a core.RecordStore returning canned responses & capturing every call.
type StubStore struct {
	Records []core.Record
	Record  core.Record
	Results []core.RecordResult
	Err     error

	mu    sync.Mutex
	calls []Call
}

var _ core.RecordStore = (*StubStore)(nil)

func (s *StubStore) capture(c Call) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
}

// Calls returns the captured calls, in order.
func (s *StubStore) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// LastCall returns the most recent call; it fails the test when there was none.
func (s *StubStore) LastCall(t *testing.T) Call {
	t.Helper()
	calls := s.Calls()
	if len(calls) == 0 {
		t.Fatalf("LastCall(): record store was not called")
	}
	return calls[len(calls)-1]
}

func (s *StubStore) FetchRecords(_ context.Context, table string, q core.Query) ([]core.Record, error) {
	s.capture(Call{Op: "fetch", Table: table, Query: q})
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Records, nil
}

func (s *StubStore) GetRecordByID(_ context.Context, table string, id int, q core.Query) (core.Record, error) {
	s.capture(Call{Op: "get", Table: table, ID: id, Query: q})
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Record, nil
}

func (s *StubStore) CreateRecords(_ context.Context, table string, records ...core.Record) ([]core.RecordResult, error) {
	s.capture(Call{Op: "create", Table: table, Records: records})
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Results, nil
}

func (s *StubStore) UpdateRecords(_ context.Context, table string, records ...core.Record) ([]core.RecordResult, error) {
	s.capture(Call{Op: "update", Table: table, Records: records})
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Results, nil
}

func (s *StubStore) DeleteRecords(_ context.Context, table string, ids ...int) ([]core.RecordResult, error) {
	s.capture(Call{Op: "delete", Table: table, IDs: ids})
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Results, nil
}
