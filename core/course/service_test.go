package course_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masomo/planner/core"
	"github.com/masomo/planner/core/course"
	logsvc "github.com/masomo/planner/services/logger"
	"github.com/masomo/planner/tests"
)

func setup(t *testing.T) course.Service {
	t.Helper()
	return course.NewService(testutil.NewStore(), logsvc.NewConsoleLoggerMock())
}

func stubService(store *testutil.StubStore) (course.Service, *logsvc.ConsoleLogger) {
	logger := logsvc.NewConsoleLoggerMock()
	return course.NewService(store, logger), logger
}

var monday = []course.ScheduleSlot{{Day: "Mon", StartTime: "9:00", EndTime: "10:00", Location: "Room 12"}}

func Test_service_QueryAll(t *testing.T) {
	store := &testutil.StubStore{Records: []core.Record{
		{core.FieldID: 2, "name_c": "Physics", "CreatedOn": "2024-09-02T08:00:00.000Z"},
		{core.FieldID: 1, "name_c": "Math", "CreatedOn": "2024-09-01T08:00:00.000Z"},
	}}
	svc, _ := stubService(store)

	got, err := svc.QueryAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Physics", got[0].Name)
	assert.Equal(t, "Math", got[1].Name)

	call := store.LastCall(t)
	assert.Equal(t, "fetch", call.Op)
	assert.Equal(t, course.Table, call.Table)
	assert.Equal(t, []core.Ordering{{Field: core.FieldCreatedOn, Ascending: false}}, call.Query.OrderBy)
	assert.Equal(t, &core.Paging{Limit: 100}, call.Query.Paging)
	assert.Contains(t, call.Query.Fields, "schedule_startTime_c")

	store.Records = nil
	got, err = svc.QueryAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func Test_service_CreateGet(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	created := testutil.CreateCourse(t, svc, course.NewCourse{
		Name:       "Calculus",
		Instructor: "Dr. Ilunga",
		Credits:    "4",
		Schedule:   monday,
	})
	assert.Equal(t, "Calculus", created.Name)
	assert.Equal(t, 4, created.Credits)
	assert.Equal(t, course.DefaultColor, created.Color)
	assert.Equal(t, course.DefaultSemester, created.Semester)
	assert.Equal(t, monday, created.Schedule)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got, "the schedule round-trips through the flat fields")

	_, err = svc.GetByID(ctx, created.ID+1)
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))
	assert.Equal(t, "Failed to fetch course", err.Error())
}

func Test_service_Create_schedule(t *testing.T) {
	t.Run("no schedule", func(t *testing.T) {
		created := testutil.CreateCourse(t, setup(t), course.NewCourse{Name: "Art"})
		assert.NotNil(t, created.Schedule)
		assert.Empty(t, created.Schedule)
	})

	t.Run("schedule is echoed as given", func(t *testing.T) {
		store := &testutil.StubStore{Results: []core.RecordResult{{Success: true, Data: core.Record{core.FieldID: 3, "name_c": "Art"}}}}
		svc, _ := stubService(store)

		got, err := svc.Create(context.Background(), course.NewCourse{Name: "Art", Schedule: monday})
		require.NoError(t, err)
		assert.Equal(t, monday, got.Schedule)
		assert.Equal(t, "Mon", store.LastCall(t).Records[0]["schedule_day_c"])
	})
}

func Test_service_Update(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	created := testutil.CreateCourse(t, svc, course.NewCourse{Name: "Calculus", Credits: "4", Schedule: monday})

	t.Run("absent fields are untouched", func(t *testing.T) {
		got, err := svc.Update(ctx, created.ID, course.UpdateCourse{Instructor: core.Set("Dr. Mbuyi")})
		require.NoError(t, err)
		assert.Equal(t, "Dr. Mbuyi", got.Instructor)
		assert.Equal(t, "Calculus", got.Name)
		assert.Equal(t, 4, got.Credits)
		assert.Equal(t, monday, got.Schedule, "the schedule is rebuilt from the record")
	})

	t.Run("schedule cleared", func(t *testing.T) {
		got, err := svc.Update(ctx, created.ID, course.UpdateCourse{Schedule: core.Set([]course.ScheduleSlot{})})
		require.NoError(t, err)
		assert.Empty(t, got.Schedule)

		got, err = svc.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Schedule)
	})

	t.Run("missing course", func(t *testing.T) {
		_, err := svc.Update(ctx, 999, course.UpdateCourse{Name: core.Set("X")})
		require.Error(t, err)
		assert.Equal(t, "Record with Id 999 does not exist", err.Error())

		var opErr *core.OpError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, "Failed to update course", opErr.Message)
	})
}

func Test_service_failures(t *testing.T) {
	remote := core.NewRemoteError("Table course_c not found")

	tests := []struct {
		name    string
		call    func(svc course.Service) error
		wantMsg string
	}{
		{
			name:    "QueryAll",
			call:    func(svc course.Service) error { _, err := svc.QueryAll(context.Background()); return err },
			wantMsg: "Failed to fetch courses",
		},
		{
			name:    "GetByID",
			call:    func(svc course.Service) error { _, err := svc.GetByID(context.Background(), 1); return err },
			wantMsg: "Failed to fetch course",
		},
		{
			name: "Create",
			call: func(svc course.Service) error {
				_, err := svc.Create(context.Background(), course.NewCourse{Name: "A"})
				return err
			},
			wantMsg: "Failed to create course",
		},
		{
			name: "Update",
			call: func(svc course.Service) error {
				_, err := svc.Update(context.Background(), 1, course.UpdateCourse{Name: core.Set("A")})
				return err
			},
			wantMsg: "Failed to update course",
		},
		{
			name:    "Delete",
			call:    func(svc course.Service) error { _, err := svc.Delete(context.Background(), 1); return err },
			wantMsg: "Failed to delete course",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, logger := stubService(&testutil.StubStore{Err: remote})

			err := tt.call(svc)
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.True(t, errors.Is(err, remote))
			assert.NotEmpty(t, logger.Entries("ERROR"))
		})
	}
}

func Test_service_Delete(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	created := testutil.CreateCourse(t, svc, course.NewCourse{Name: "Calculus"})

	deleted, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(ctx, created.ID)
	require.Error(t, err)
	assert.False(t, deleted)
	assert.Equal(t, "Record with Id 1 does not exist", err.Error())
}
