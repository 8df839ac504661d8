package course

import (
	"github.com/masomo/planner/core"
)

// Table is the record store table holding courses.
const Table = "course_c"

// Raw record fields
const (
	fieldName          = "name_c"
	fieldInstructor    = "instructor_c"
	fieldColor         = "color_c"
	fieldCredits       = "credits_c"
	fieldSemester      = "semester_c"
	fieldScheduleDay   = "schedule_day_c"
	fieldScheduleStart = "schedule_startTime_c"
	fieldScheduleEnd   = "schedule_endTime_c"
	fieldScheduleLoc   = "schedule_location_c"
)

// Defaults
const (
	DefaultColor    = "#4F46E5"
	DefaultCredits  = 3
	DefaultSemester = "Fall 2024"
)

var fields = []string{
	core.FieldName,
	fieldName,
	fieldInstructor,
	fieldColor,
	fieldCredits,
	fieldSemester,
	fieldScheduleDay,
	fieldScheduleStart,
	fieldScheduleEnd,
	fieldScheduleLoc,
	core.FieldCreatedOn,
}

// ScheduleSlot is a weekly meeting of a course.
type ScheduleSlot struct {
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Location  string `json:"location"`
}

// IsComplete reports whether the slot has a day, a start & an end time. Location is optional.
func (s ScheduleSlot) IsComplete() bool {
	return s.Day != "" && s.StartTime != "" && s.EndTime != ""
}

type Course struct {
	ID         int            `json:"id"`
	Name       string         `json:"name"`
	Instructor string         `json:"instructor"`
	Color      string         `json:"color"`
	Credits    int            `json:"credits"`
	Semester   string         `json:"semester"`
	Schedule   []ScheduleSlot `json:"schedule"`
	CreatedAt  string         `json:"createdAt"` // ISO-8601
}

// Normalize maps a raw course record to a fully defaulted Course.
// The record stores a single schedule slot as four flat fields; it is kept only if complete.
func Normalize(rec core.Record) Course {
	c := Course{
		ID:         rec.ID(),
		Name:       rec.Text(fieldName),
		Instructor: rec.Text(fieldInstructor),
		Color:      rec.Text(fieldColor),
		Semester:   rec.Text(fieldSemester),
		Schedule:   collapseSchedule(rec),
		CreatedAt:  rec.Text(core.FieldCreatedOn),
	}
	if c.Name == "" {
		c.Name = rec.Text(core.FieldName)
	}
	if c.Color == "" {
		c.Color = DefaultColor
	}
	if credits, ok := rec.Int(fieldCredits); ok && credits != 0 {
		c.Credits = credits
	} else {
		c.Credits = DefaultCredits
	}
	if c.Semester == "" {
		c.Semester = DefaultSemester
	}
	if c.CreatedAt == "" {
		c.CreatedAt = core.NowISO()
	}
	return c
}

func collapseSchedule(rec core.Record) []ScheduleSlot {
	slot := ScheduleSlot{
		Day:       rec.Text(fieldScheduleDay),
		StartTime: rec.Text(fieldScheduleStart),
		EndTime:   rec.Text(fieldScheduleEnd),
		Location:  rec.Text(fieldScheduleLoc),
	}
	if !slot.IsComplete() {
		return []ScheduleSlot{}
	}
	return []ScheduleSlot{slot}
}

// flattenSchedule writes the first slot of schedule into rec; empty strings when there is none.
func flattenSchedule(rec core.Record, schedule []ScheduleSlot) {
	var first ScheduleSlot
	if len(schedule) > 0 {
		first = schedule[0]
	}
	rec[fieldScheduleDay] = first.Day
	rec[fieldScheduleStart] = first.StartTime
	rec[fieldScheduleEnd] = first.EndTime
	rec[fieldScheduleLoc] = first.Location
}

func scheduleOrEmpty(schedule []ScheduleSlot) []ScheduleSlot {
	if schedule == nil {
		return []ScheduleSlot{}
	}
	return schedule
}

// NewCourse contains information needed to create a new Course.
// Zero values fall back to the defaults.
type NewCourse struct {
	Name       string          `json:"name"`
	Instructor string          `json:"instructor"`
	Color      string          `json:"color"`
	Credits    core.FlexString `json:"credits"`
	Semester   string          `json:"semester"`
	Schedule   []ScheduleSlot  `json:"schedule"`
}

// record builds the raw payload of a create call.
func (nc NewCourse) record() core.Record {
	rec := core.Record{
		core.FieldName:  nc.Name,
		fieldName:       nc.Name,
		fieldInstructor: nc.Instructor,
		fieldColor:      nc.Color,
		fieldCredits:    DefaultCredits,
		fieldSemester:   nc.Semester,
	}
	if nc.Color == "" {
		rec[fieldColor] = DefaultColor
	}
	if credits, ok := nc.Credits.Int(); ok && credits != 0 {
		rec[fieldCredits] = credits
	}
	if nc.Semester == "" {
		rec[fieldSemester] = DefaultSemester
	}
	flattenSchedule(rec, nc.Schedule)
	return rec
}

// UpdateCourse defines what information may be provided to modify an existing Course.
// Only the fields that are Set are sent to the record store.
type UpdateCourse struct {
	Name       core.Field[string]          `json:"name"`
	Instructor core.Field[string]          `json:"instructor"`
	Color      core.Field[string]          `json:"color"`
	Credits    core.Field[core.FlexString] `json:"credits"`
	Semester   core.Field[string]          `json:"semester"`
	Schedule   core.Field[[]ScheduleSlot]  `json:"schedule"`
}

// record builds the raw payload of an update call for the record `id`.
func (uc UpdateCourse) record(id int) core.Record {
	rec := core.Record{core.FieldID: id}
	if uc.Name.Set {
		rec[core.FieldName] = uc.Name.Value
		rec[fieldName] = uc.Name.Value
	}
	if uc.Instructor.Set {
		rec[fieldInstructor] = uc.Instructor.Value
	}
	if uc.Color.Set {
		rec[fieldColor] = uc.Color.Value
	}
	if uc.Credits.Set {
		// unparsable credits are left untouched
		if credits, ok := uc.Credits.Value.Int(); ok {
			rec[fieldCredits] = credits
		}
	}
	if uc.Semester.Set {
		rec[fieldSemester] = uc.Semester.Value
	}
	if uc.Schedule.Set {
		flattenSchedule(rec, uc.Schedule.Value)
	}
	return rec
}
