package assignment

import (
	"github.com/masomo/planner/core"
)

type refKind int

const (
	refAbsent refKind = iota
	refScalar
	refReference
)

// courseRef is the parsed `course_id_c` value: either a lookup reference object ({"Id": 5, "Name": ..}),
// a bare scalar (5 | "5") or nothing.
type courseRef struct {
	kind refKind
	id   string
}

func parseCourseRef(v interface{}) courseRef {
	switch v := v.(type) {
	case nil:
		return courseRef{kind: refAbsent}
	case map[string]interface{}:
		return referenceOf(core.Record(v))
	case core.Record:
		return referenceOf(v)
	}
	if s := core.ToString(v); s != "" {
		return courseRef{kind: refScalar, id: s}
	}
	return courseRef{kind: refAbsent}
}

func referenceOf(rec core.Record) courseRef {
	if id := rec.Text(core.FieldID); id != "" {
		return courseRef{kind: refReference, id: id}
	}
	return courseRef{kind: refAbsent}
}

// String returns the course id, "" when absent.
func (ref courseRef) String() string {
	if ref.kind == refAbsent {
		return ""
	}
	return ref.id
}
