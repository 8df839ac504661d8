package inmemdb

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/masomo/planner/core"
)

func (db *DB) FetchRecords(_ context.Context, name string, q core.Query) ([]core.Record, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	t, err := db.table(name, false)
	if err != nil {
		return nil, err
	}

	recs := make([]core.Record, 0, len(t.rows))
	for _, row := range t.query() {
		if matchAll(row, q.Where) {
			recs = append(recs, row)
		}
	}
	sortRecords(recs, q.OrderBy)

	if q.Paging != nil {
		start := q.Paging.Offset
		if start > len(recs) {
			start = len(recs)
		}
		end := len(recs)
		if q.Paging.Limit > 0 && start+q.Paging.Limit < end {
			end = start + q.Paging.Limit
		}
		recs = recs[start:end]
	}

	result := make([]core.Record, 0, len(recs))
	for _, row := range recs {
		result = append(result, selectFields(row, q.Fields))
	}
	return result, nil
}

func (db *DB) GetRecordByID(_ context.Context, name string, id int, q core.Query) (core.Record, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	t, err := db.table(name, false)
	if err != nil {
		return nil, err
	}
	if row, ok := t.rows[id]; ok {
		return selectFields(row, q.Fields), nil
	}
	return nil, nil
}

func (db *DB) CreateRecords(_ context.Context, name string, records ...core.Record) ([]core.RecordResult, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	t, err := db.table(name, true)
	if err != nil {
		return nil, err
	}
	results := make([]core.RecordResult, 0, len(records))
	for _, rec := range records {
		results = append(results, core.RecordResult{Success: true, Data: t.insert(rec)})
	}
	return results, nil
}

func (db *DB) UpdateRecords(_ context.Context, name string, records ...core.Record) ([]core.RecordResult, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	t, err := db.table(name, true)
	if err != nil {
		return nil, err
	}
	results := make([]core.RecordResult, 0, len(records))
	for _, rec := range records {
		id := rec.ID()
		row, ok := t.rows[id]
		if !ok {
			results = append(results, core.RecordResult{Message: fmt.Sprintf("Record with Id %d does not exist", id)})
			continue
		}
		for k, v := range rec {
			if k == core.FieldID || k == core.FieldCreatedOn {
				continue
			}
			row[k] = v
		}
		results = append(results, core.RecordResult{Success: true, Data: copyRecord(row)})
	}
	return results, nil
}

func (db *DB) DeleteRecords(_ context.Context, name string, ids ...int) ([]core.RecordResult, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	t, err := db.table(name, true)
	if err != nil {
		return nil, err
	}
	results := make([]core.RecordResult, 0, len(ids))
	for _, id := range ids {
		if _, ok := t.rows[id]; !ok {
			results = append(results, core.RecordResult{Message: fmt.Sprintf("Record with Id %d does not exist", id)})
			continue
		}
		t.remove(id)
		results = append(results, core.RecordResult{Success: true})
	}
	return results, nil
}

// selectFields copies the requested fields of row. Id is always returned; no fields means all of them.
func selectFields(row core.Record, fields []string) core.Record {
	if len(fields) == 0 {
		return copyRecord(row)
	}
	rec := make(core.Record, len(fields)+1)
	rec[core.FieldID] = row[core.FieldID]
	for _, f := range fields {
		if v, ok := row[f]; ok {
			rec[f] = v
		}
	}
	return rec
}

func matchAll(row core.Record, conds []core.Condition) bool {
	for _, cond := range conds {
		if !match(row.Value(cond.FieldName), cond) {
			return false
		}
	}
	return true
}

// match only knows EqualTo: true when v equals any of the condition values.
// Lookup references ({"Id": ..}) are compared by Id.
func match(v interface{}, cond core.Condition) bool {
	if !strings.EqualFold(cond.Operator, core.OpEqualTo) {
		return false
	}
	if ref, ok := v.(map[string]interface{}); ok {
		v = ref[core.FieldID]
	}
	for _, want := range cond.Values {
		if equal(v, want) {
			return true
		}
	}
	return false
}

func equal(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	fa, okA := core.ToFloat(a)
	fb, okB := core.ToFloat(b)
	if okA && okB {
		return fa == fb
	}
	return core.ToString(a) == core.ToString(b)
}

func sortRecords(recs []core.Record, orderings []core.Ordering) {
	if len(orderings) == 0 {
		return
	}
	sort.SliceStable(recs, func(i, j int) bool {
		for _, ord := range orderings {
			c := compare(recs[i].Value(ord.Field), recs[j].Value(ord.Field))
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

// compare orders absent values first, numbers numerically & everything else as strings.
func compare(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	_, strA := a.(string)
	_, strB := b.(string)
	if !strA && !strB {
		fa, okA := core.ToFloat(a)
		fb, okB := core.ToFloat(b)
		if okA && okB {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(core.ToString(a), core.ToString(b))
}
