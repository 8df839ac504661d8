package inmemdb

import (
	"sync"
	"time"

	"github.com/masomo/planner/core"
)

var nowFunc = time.Now // mockable

type (
	// DB is an in-memory core.RecordStore.
	DB struct {
		tables map[string]*table
		strict bool
		mutex  sync.RWMutex
	}

	table struct {
		rows  map[int]core.Record
		pk    int
		order []int // insertion order, tie breaker when sorting
	}
)

var _ core.RecordStore = (*DB)(nil)

// Open returns an empty DB. When tables are named, any other table is reported as missing;
// otherwise tables are created on first use.
func Open(tables ...string) *DB {
	db := &DB{
		tables: make(map[string]*table, len(tables)),
		strict: len(tables) > 0,
	}
	for _, name := range tables {
		db.tables[name] = newTable()
	}
	return db
}

func newTable() *table {
	return &table{rows: make(map[int]core.Record)}
}

// table returns the named table; the caller must hold the lock (write lock when create is true).
func (db *DB) table(name string, create bool) (*table, error) {
	if t, ok := db.tables[name]; ok {
		return t, nil
	}
	if db.strict {
		return nil, core.NewRemoteError("table " + name + " does not exist")
	}
	if !create {
		return newTable(), nil
	}
	t := newTable()
	db.tables[name] = t
	return t, nil
}

// Reset drops every record, keeping the tables.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name := range db.tables {
		db.tables[name] = newTable()
	}
}

func (t *table) insert(rec core.Record) core.Record {
	t.pk++
	row := copyRecord(rec)
	row[core.FieldID] = t.pk
	row[core.FieldCreatedOn] = nowFunc().UTC().Format(core.ISOLayout)
	t.rows[t.pk] = row
	t.order = append(t.order, t.pk)
	return copyRecord(row)
}

func (t *table) query() []core.Record {
	recs := make([]core.Record, 0, len(t.rows))
	for _, id := range t.order {
		if row, ok := t.rows[id]; ok {
			recs = append(recs, row)
		}
	}
	return recs
}

func (t *table) remove(id int) {
	delete(t.rows, id)
	for i, pk := range t.order {
		if pk == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

func copyRecord(rec core.Record) core.Record {
	cp := make(core.Record, len(rec))
	for k, v := range rec {
		cp[k] = v
	}
	return cp
}
