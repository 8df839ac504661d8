package core

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
)

// Default record fields
const (
	FieldID        = "Id"
	FieldName      = "Name"
	FieldCreatedOn = "CreatedOn"
)

// Where operators
const (
	OpEqualTo = "EqualTo"
)

// DefaultPageSize is the fixed page size used by every list operation.
const DefaultPageSize = 100

type (
	// Record is a raw record as returned by a RecordStore: field name → value.
	// Fields are optional & loosely typed.
	Record map[string]interface{}

	// Condition is an equality-style filter on a single field.
	Condition struct {
		FieldName string
		Operator  string
		Values    []interface{}
	}

	Ordering struct {
		Field     string
		Ascending bool
	}

	Paging struct {
		Limit  int
		Offset int
	}

	// Query describes a record fetch: selected fields, filters, ordering & page window.
	Query struct {
		Fields  []string
		Where   []Condition
		OrderBy []Ordering
		Paging  *Paging
	}

	// RecordResult is one entry of a mutation result list.
	RecordResult struct {
		Success bool
		Data    Record
		Message string
	}

	// RecordStore is the remote CRUD capability operating on named tables.
	// Implementations report an unsuccessful response envelope as a *RemoteError.
	RecordStore interface {
		FetchRecords(ctx context.Context, table string, q Query) ([]Record, error)
		// GetRecordByID returns a nil Record (and no error) when there is no such record.
		GetRecordByID(ctx context.Context, table string, id int, q Query) (Record, error)
		CreateRecords(ctx context.Context, table string, records ...Record) ([]RecordResult, error)
		UpdateRecords(ctx context.Context, table string, records ...Record) ([]RecordResult, error)
		DeleteRecords(ctx context.Context, table string, ids ...int) ([]RecordResult, error)
	}
)

func (ord Ordering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// Eq returns an EqualTo condition.
func Eq(field string, values ...interface{}) Condition {
	return Condition{FieldName: field, Operator: OpEqualTo, Values: values}
}

// FirstPage is the only page window used by list operations.
func FirstPage() *Paging {
	return &Paging{Limit: DefaultPageSize, Offset: 0}
}

// PartitionResults separates successful from failed entries.
func PartitionResults(results []RecordResult) (successful, failed []RecordResult) {
	for _, res := range results {
		if res.Success {
			successful = append(successful, res)
		} else {
			failed = append(failed, res)
		}
	}
	return successful, failed
}

// Value returns the raw value of field, nil if absent.
func (r Record) Value(field string) interface{} {
	if r == nil {
		return nil
	}
	return r[field]
}

// Has reports whether field is present with a non-nil value.
func (r Record) Has(field string) bool {
	return r.Value(field) != nil
}

// Text returns field as a string. Numbers are formatted; anything else yields "".
func (r Record) Text(field string) string {
	return ToString(r.Value(field))
}

// Float returns field as a float64; ok is false when absent or not numeric.
func (r Record) Float(field string) (float64, bool) {
	return ToFloat(r.Value(field))
}

// Int returns field as an int; ok is false when absent or not an integer.
func (r Record) Int(field string) (int, bool) {
	f, ok := ToFloat(r.Value(field))
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// Bool returns field as a bool; ok is false when absent or not a boolean.
func (r Record) Bool(field string) (bool, bool) {
	switch v := r.Value(field).(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		return b, err == nil
	}
	return false, false
}

// ID returns the record's Id, 0 if absent.
func (r Record) ID() int {
	id, _ := r.Int(FieldID)
	return id
}

// ToString formats scalar values as strings.
func ToString(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// ToFloat converts numeric values (and numeric strings) to float64.
func ToFloat(v interface{}) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}
