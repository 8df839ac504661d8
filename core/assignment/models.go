package assignment

import (
	"github.com/volatiletech/null/v8"

	"github.com/masomo/planner/core"
)

// Table is the record store table holding assignments.
const Table = "assignment_c"

// Raw record fields
const (
	fieldTitle       = "title_c"
	fieldDescription = "description_c"
	fieldDueDate     = "due_date_c"
	fieldPriority    = "priority_c"
	fieldCompleted   = "completed_c"
	fieldGrade       = "grade_c"
	fieldWeight      = "weight_c"
	fieldType        = "type_c"
	fieldCourseID    = "course_id_c"
)

// Priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Defaults
const (
	DefaultPriority = PriorityMedium
	DefaultWeight   = 0.1
	DefaultType     = "Assignment"
)

var fields = []string{
	core.FieldName,
	fieldTitle,
	fieldDescription,
	fieldDueDate,
	fieldPriority,
	fieldCompleted,
	fieldGrade,
	fieldWeight,
	fieldType,
	fieldCourseID,
	core.FieldCreatedOn,
}

type Assignment struct {
	ID          int          `json:"id"`
	CourseID    string       `json:"courseId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueDate     string       `json:"dueDate"` // ISO-8601
	Priority    string       `json:"priority"`
	Completed   bool         `json:"completed"`
	Grade       null.Float64 `json:"grade"`
	Weight      float64      `json:"weight"`
	Type        string       `json:"type"`
	CreatedAt   string       `json:"createdAt"` // ISO-8601
}

// Normalize maps a raw assignment record to a fully defaulted Assignment.
// Only Grade may remain null.
func Normalize(rec core.Record) Assignment {
	a := Assignment{
		ID:          rec.ID(),
		CourseID:    parseCourseRef(rec.Value(fieldCourseID)).String(),
		Title:       firstNonEmpty(rec.Text(fieldTitle), rec.Text(core.FieldName)),
		Description: rec.Text(fieldDescription),
		DueDate:     rec.Text(fieldDueDate),
		Priority:    rec.Text(fieldPriority),
		Type:        rec.Text(fieldType),
		CreatedAt:   rec.Text(core.FieldCreatedOn),
	}
	if a.DueDate == "" {
		a.DueDate = core.NowISO()
	}
	if a.Priority == "" {
		a.Priority = DefaultPriority
	}
	if a.Type == "" {
		a.Type = DefaultType
	}
	if a.CreatedAt == "" {
		a.CreatedAt = core.NowISO()
	}
	a.Completed, _ = rec.Bool(fieldCompleted)
	if grade, ok := rec.Float(fieldGrade); ok {
		a.Grade = null.Float64From(grade)
	}
	if weight, ok := rec.Float(fieldWeight); ok && weight != 0 {
		a.Weight = weight
	} else {
		a.Weight = DefaultWeight
	}
	return a
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// NewAssignment contains information needed to create a new Assignment.
// Zero values fall back to the defaults.
type NewAssignment struct {
	CourseID    core.FlexString `json:"courseId"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DueDate     string          `json:"dueDate"`
	Priority    string          `json:"priority"`
	Completed   bool            `json:"completed"`
	Grade       null.Float64    `json:"grade"`
	Weight      core.FlexString `json:"weight"`
	Type        string          `json:"type"`
}

// record builds the raw payload of a create call.
func (na NewAssignment) record() core.Record {
	rec := core.Record{
		core.FieldName:   na.Title,
		fieldTitle:       na.Title,
		fieldDescription: na.Description,
		fieldDueDate:     na.DueDate,
		fieldPriority:    na.Priority,
		fieldCompleted:   na.Completed,
		fieldGrade:       nil,
		fieldWeight:      DefaultWeight,
		fieldType:        na.Type,
		fieldCourseID:    nil,
	}
	if na.DueDate == "" {
		rec[fieldDueDate] = core.NowISO()
	}
	if na.Priority == "" {
		rec[fieldPriority] = DefaultPriority
	}
	if na.Type == "" {
		rec[fieldType] = DefaultType
	}
	if na.Grade.Valid {
		rec[fieldGrade] = na.Grade.Float64
	}
	if weight, ok := na.Weight.Float(); ok && weight != 0 {
		rec[fieldWeight] = weight
	}
	if courseID, ok := na.CourseID.Int(); ok && courseID != 0 {
		rec[fieldCourseID] = courseID
	}
	return rec
}

// UpdateAssignment defines what information may be provided to modify an existing Assignment.
// Only the fields that are Set are sent to the record store; explicit false, 0 & null values included.
type UpdateAssignment struct {
	CourseID    core.Field[core.FlexString] `json:"courseId"`
	Title       core.Field[string]          `json:"title"`
	Description core.Field[string]          `json:"description"`
	DueDate     core.Field[string]          `json:"dueDate"`
	Priority    core.Field[string]          `json:"priority"`
	Completed   core.Field[bool]            `json:"completed"`
	Grade       core.Field[null.Float64]    `json:"grade"`
	Weight      core.Field[core.FlexString] `json:"weight"`
	Type        core.Field[string]          `json:"type"`
}

// record builds the raw payload of an update call for the record `id`.
func (ua UpdateAssignment) record(id int) core.Record {
	rec := core.Record{core.FieldID: id}
	if ua.Title.Set {
		rec[core.FieldName] = ua.Title.Value
		rec[fieldTitle] = ua.Title.Value
	}
	if ua.Description.Set {
		rec[fieldDescription] = ua.Description.Value
	}
	if ua.DueDate.Set {
		rec[fieldDueDate] = ua.DueDate.Value
	}
	if ua.Priority.Set {
		rec[fieldPriority] = ua.Priority.Value
	}
	if ua.Completed.Set {
		rec[fieldCompleted] = ua.Completed.Value
	}
	if ua.Grade.Set {
		if ua.Grade.Value.Valid {
			rec[fieldGrade] = ua.Grade.Value.Float64
		} else {
			rec[fieldGrade] = nil
		}
	}
	if ua.Weight.Set {
		// an unparsable weight is left untouched
		if weight, ok := ua.Weight.Value.Float(); ok {
			rec[fieldWeight] = weight
		}
	}
	if ua.Type.Set {
		rec[fieldType] = ua.Type.Value
	}
	if ua.CourseID.Set {
		if courseID, ok := ua.CourseID.Value.Int(); ok {
			rec[fieldCourseID] = courseID
		} else {
			rec[fieldCourseID] = nil
		}
	}
	return rec
}

// IsEmpty reports whether no field is Set.
func (ua UpdateAssignment) IsEmpty() bool {
	return len(ua.record(0)) == 1
}
