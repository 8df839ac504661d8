package metrics

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/masomo/planner/core"
)

// instrumentedStore records calls, latency & failed entries of the wrapped core.RecordStore.
type instrumentedStore struct {
	next core.RecordStore
	reg  *Registry
}

var _ core.RecordStore = (*instrumentedStore)(nil)

func InstrumentStore(store core.RecordStore, reg *Registry) core.RecordStore {
	return &instrumentedStore{next: store, reg: reg}
}

func (s *instrumentedStore) FetchRecords(ctx context.Context, table string, q core.Query) ([]core.Record, error) {
	start := time.Now()
	recs, err := s.next.FetchRecords(ctx, table, q)
	s.reg.observe(table, "fetch", start, errors.Cause(err))
	return recs, err
}

func (s *instrumentedStore) GetRecordByID(ctx context.Context, table string, id int, q core.Query) (core.Record, error) {
	start := time.Now()
	rec, err := s.next.GetRecordByID(ctx, table, id, q)
	s.reg.observe(table, "get", start, errors.Cause(err))
	return rec, err
}

func (s *instrumentedStore) CreateRecords(ctx context.Context, table string, records ...core.Record) ([]core.RecordResult, error) {
	start := time.Now()
	results, err := s.next.CreateRecords(ctx, table, records...)
	s.reg.observe(table, "create", start, errors.Cause(err))
	s.reg.observeResults(table, "create", results)
	return results, err
}

func (s *instrumentedStore) UpdateRecords(ctx context.Context, table string, records ...core.Record) ([]core.RecordResult, error) {
	start := time.Now()
	results, err := s.next.UpdateRecords(ctx, table, records...)
	s.reg.observe(table, "update", start, errors.Cause(err))
	s.reg.observeResults(table, "update", results)
	return results, err
}

func (s *instrumentedStore) DeleteRecords(ctx context.Context, table string, ids ...int) ([]core.RecordResult, error) {
	start := time.Now()
	results, err := s.next.DeleteRecords(ctx, table, ids...)
	s.reg.observe(table, "delete", start, errors.Cause(err))
	s.reg.observeResults(table, "delete", results)
	return results, err
}
