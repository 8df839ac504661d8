// Package pgstore is a core.RecordStore keeping records as JSONB documents in postgres.
package pgstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/masomo/planner/core"
)

type (
	Store struct {
		db *sqlx.DB
	}

	row struct {
		ID        int       `db:"id"`
		Data      []byte    `db:"data"`
		CreatedOn time.Time `db:"created_on"`
	}
)

var _ core.RecordStore = (*Store)(nil)

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (r row) record(fields []string) (core.Record, error) {
	rec := make(core.Record)
	dec := json.NewDecoder(bytes.NewReader(r.Data))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return nil, errors.Wrapf(err, "decoding record %d", r.ID)
	}
	rec[core.FieldID] = r.ID
	rec[core.FieldCreatedOn] = r.CreatedOn.UTC().Format(core.ISOLayout)
	if len(fields) == 0 {
		return rec, nil
	}
	selected := make(core.Record, len(fields)+1)
	selected[core.FieldID] = r.ID
	for _, f := range fields {
		if v, ok := rec[f]; ok {
			selected[f] = v
		}
	}
	return selected, nil
}

// document strips the columns managed by the store from rec.
func document(rec core.Record) ([]byte, error) {
	doc := make(core.Record, len(rec))
	for k, v := range rec {
		if k == core.FieldID || k == core.FieldCreatedOn {
			continue
		}
		doc[k] = v
	}
	return json.Marshal(doc)
}

// fieldExpr returns the SQL expression matching a field: columns for Id & CreatedOn, JSONB text otherwise.
// Lookup references ({"Id": ..}) compare by their Id.
func fieldExpr(field string) (string, error) {
	switch field {
	case core.FieldID:
		return "id::text", nil
	case core.FieldCreatedOn:
		return "created_on::text", nil
	}
	if !core.IsFieldName(field) {
		return "", errors.Errorf("invalid field name %q", field)
	}
	return fmt.Sprintf("COALESCE(data -> '%[1]s' ->> 'Id', data ->> '%[1]s')", field), nil
}

// orderExpr sorts JSONB values, keeping numbers numeric.
func orderExpr(field string) (string, error) {
	switch field {
	case core.FieldID:
		return "id", nil
	case core.FieldCreatedOn:
		return "created_on", nil
	}
	if !core.IsFieldName(field) {
		return "", errors.Errorf("invalid field name %q", field)
	}
	return fmt.Sprintf("data -> '%s'", field), nil
}

func buildFetch(table string, q core.Query) (string, []interface{}, error) {
	var sb strings.Builder
	args := []interface{}{table}
	sb.WriteString("SELECT id, data, created_on FROM records WHERE table_name = ?")

	for _, cond := range q.Where {
		if !strings.EqualFold(cond.Operator, core.OpEqualTo) {
			return "", nil, errors.Errorf("unsupported operator %q", cond.Operator)
		}
		expr, err := fieldExpr(cond.FieldName)
		if err != nil {
			return "", nil, err
		}
		if len(cond.Values) == 0 {
			sb.WriteString(" AND false")
			continue
		}
		placeholders := make([]string, 0, len(cond.Values))
		for _, v := range cond.Values {
			placeholders = append(placeholders, "?")
			args = append(args, core.ToString(v))
		}
		sb.WriteString(" AND " + expr + " IN (" + strings.Join(placeholders, ", ") + ")")
	}

	orderings := make([]string, 0, len(q.OrderBy)+1)
	for _, ord := range q.OrderBy {
		expr, err := orderExpr(ord.Field)
		if err != nil {
			return "", nil, err
		}
		direction := "DESC NULLS LAST"
		if ord.Ascending {
			direction = "ASC NULLS FIRST"
		}
		orderings = append(orderings, expr+" "+direction)
	}
	orderings = append(orderings, "id ASC")
	sb.WriteString(" ORDER BY " + strings.Join(orderings, ", "))

	if q.Paging != nil {
		if q.Paging.Limit > 0 {
			sb.WriteString(" LIMIT ?")
			args = append(args, q.Paging.Limit)
		}
		sb.WriteString(" OFFSET ?")
		args = append(args, q.Paging.Offset)
	}
	return sb.String(), args, nil
}

func (s *Store) FetchRecords(ctx context.Context, table string, q core.Query) ([]core.Record, error) {
	query, args, err := buildFetch(table, q)
	if err != nil {
		return nil, core.NewRemoteError(err.Error())
	}
	var rows []row
	if err = s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrapf(err, "selecting %s records", table)
	}
	recs := make([]core.Record, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record(q.Fields)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (s *Store) GetRecordByID(ctx context.Context, table string, id int, q core.Query) (core.Record, error) {
	var r row
	query := s.db.Rebind("SELECT id, data, created_on FROM records WHERE table_name = ? AND id = ?")
	if err := s.db.GetContext(ctx, &r, query, table, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "getting %s record %d", table, id)
	}
	return r.record(q.Fields)
}

func (s *Store) CreateRecords(ctx context.Context, table string, records ...core.Record) ([]core.RecordResult, error) {
	query := s.db.Rebind("INSERT INTO records (table_name, data) VALUES (?, ?::jsonb) RETURNING id, data, created_on")
	results := make([]core.RecordResult, 0, len(records))
	for _, rec := range records {
		results = append(results, s.write(ctx, query, func() ([]interface{}, error) {
			doc, err := document(rec)
			return []interface{}{table, string(doc)}, err
		}, "Record could not be created"))
	}
	return results, nil
}

func (s *Store) UpdateRecords(ctx context.Context, table string, records ...core.Record) ([]core.RecordResult, error) {
	query := s.db.Rebind(`UPDATE records SET data = data || ?::jsonb, modified_on = now()
		WHERE table_name = ? AND id = ? RETURNING id, data, created_on`)
	results := make([]core.RecordResult, 0, len(records))
	for _, rec := range records {
		id := rec.ID()
		results = append(results, s.write(ctx, query, func() ([]interface{}, error) {
			doc, err := document(rec)
			return []interface{}{string(doc), table, id}, err
		}, fmt.Sprintf("Record with Id %d does not exist", id)))
	}
	return results, nil
}

// write runs a single-row RETURNING statement; missingMsg is reported when no row comes back.
func (s *Store) write(ctx context.Context, query string, args func() ([]interface{}, error), missingMsg string) core.RecordResult {
	a, err := args()
	if err != nil {
		return core.RecordResult{Message: err.Error()}
	}
	var r row
	if err = s.db.GetContext(ctx, &r, query, a...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.RecordResult{Message: missingMsg}
		}
		return core.RecordResult{Message: err.Error()}
	}
	rec, err := r.record(nil)
	if err != nil {
		return core.RecordResult{Message: err.Error()}
	}
	return core.RecordResult{Success: true, Data: rec}
}

func (s *Store) DeleteRecords(ctx context.Context, table string, ids ...int) ([]core.RecordResult, error) {
	query := s.db.Rebind("DELETE FROM records WHERE table_name = ? AND id = ?")
	results := make([]core.RecordResult, 0, len(ids))
	for _, id := range ids {
		res, err := s.db.ExecContext(ctx, query, table, id)
		if err != nil {
			results = append(results, core.RecordResult{Message: err.Error()})
			continue
		}
		if n, err := res.RowsAffected(); err != nil || n == 0 {
			results = append(results, core.RecordResult{Message: fmt.Sprintf("Record with Id %d does not exist", id)})
			continue
		}
		results = append(results, core.RecordResult{Success: true})
	}
	return results, nil
}
