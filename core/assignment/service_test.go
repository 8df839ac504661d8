package assignment_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/masomo/planner/core"
	"github.com/masomo/planner/core/assignment"
	logsvc "github.com/masomo/planner/services/logger"
	"github.com/masomo/planner/tests"
)

func setup(t *testing.T) (assignment.Service, *logsvc.ConsoleLogger) {
	t.Helper()
	logger := logsvc.NewConsoleLoggerMock()
	return assignment.NewService(testutil.NewStore(), logger), logger
}

func stubService(store *testutil.StubStore) (assignment.Service, *logsvc.ConsoleLogger) {
	logger := logsvc.NewConsoleLoggerMock()
	return assignment.NewService(store, logger), logger
}

func Test_service_QueryAll(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	late := testutil.CreateAssignment(t, svc, assignment.NewAssignment{Title: "Late", DueDate: "2024-12-01T00:00:00.000Z"})
	early := testutil.CreateAssignment(t, svc, assignment.NewAssignment{Title: "Early", DueDate: "2024-10-01T00:00:00.000Z"})
	mid := testutil.CreateAssignment(t, svc, assignment.NewAssignment{Title: "Mid", DueDate: "2024-11-01T00:00:00.000Z"})

	got, err := svc.QueryAll(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff([]assignment.Assignment{early, mid, late}, got); diff != "" {
		t.Errorf("QueryAll() mismatch (-want +got):\n%s", diff)
	}
}

func Test_service_QueryAll_query(t *testing.T) {
	store := &testutil.StubStore{}
	svc, _ := stubService(store)

	got, err := svc.QueryAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	call := store.LastCall(t)
	assert.Equal(t, "fetch", call.Op)
	assert.Equal(t, assignment.Table, call.Table)
	assert.Equal(t, []core.Ordering{{Field: "due_date_c", Ascending: true}}, call.Query.OrderBy)
	assert.Equal(t, &core.Paging{Limit: 100}, call.Query.Paging)
	assert.Contains(t, call.Query.Fields, "course_id_c")
	assert.Empty(t, call.Query.Where)
}

func Test_service_QueryByCourse(t *testing.T) {
	t.Run("filter", func(t *testing.T) {
		store := &testutil.StubStore{Records: []core.Record{
			{core.FieldID: 1, "title_c": "A", "course_id_c": map[string]interface{}{"Id": 5, "Name": "Math"}},
		}}
		svc, _ := stubService(store)

		got, err := svc.QueryByCourse(context.Background(), "5")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "5", got[0].CourseID)

		call := store.LastCall(t)
		assert.Equal(t, []core.Condition{{FieldName: "course_id_c", Operator: "EqualTo", Values: []interface{}{5}}}, call.Query.Where)
		assert.Equal(t, []core.Ordering{{Field: "due_date_c", Ascending: true}}, call.Query.OrderBy)
	})

	t.Run("invalid course id", func(t *testing.T) {
		store := &testutil.StubStore{}
		svc, _ := stubService(store)

		got, err := svc.QueryByCourse(context.Background(), "math")
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Empty(t, store.Calls(), "the record store is not called")
	})

	t.Run("in-memory store", func(t *testing.T) {
		svc, _ := setup(t)
		b := testutil.CreateAssignment(t, svc, assignment.NewAssignment{Title: "B", CourseID: "5", DueDate: "2024-11-01T00:00:00.000Z"})
		testutil.CreateAssignment(t, svc, assignment.NewAssignment{Title: "Other", CourseID: "6"})
		a := testutil.CreateAssignment(t, svc, assignment.NewAssignment{Title: "A", CourseID: "5", DueDate: "2024-10-01T00:00:00.000Z"})
		testutil.CreateAssignment(t, svc, assignment.NewAssignment{Title: "No course"})

		got, err := svc.QueryByCourse(context.Background(), "5")
		require.NoError(t, err)
		assert.Equal(t, []assignment.Assignment{a, b}, got)
	})
}

func Test_service_GetByID(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	created := testutil.CreateAssignment(t, svc, assignment.NewAssignment{
		Title:    "Essay",
		CourseID: "5",
		Priority: assignment.PriorityHigh,
		Grade:    null.Float64From(0),
		Weight:   "0.3",
	})
	assert.Equal(t, "Essay", created.Title)
	assert.Equal(t, "5", created.CourseID)
	assert.Equal(t, null.Float64From(0), created.Grade)
	assert.Equal(t, 0.3, created.Weight)
	assert.Equal(t, assignment.DefaultType, created.Type)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = svc.GetByID(ctx, 999)
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))
	assert.Equal(t, "Failed to fetch assignment", err.Error())
}

func Test_service_failures(t *testing.T) {
	remote := core.NewRemoteError("Table assignment_c not found")

	tests := []struct {
		name    string
		call    func(svc assignment.Service) error
		wantMsg string
	}{
		{
			name:    "QueryAll",
			call:    func(svc assignment.Service) error { _, err := svc.QueryAll(context.Background()); return err },
			wantMsg: "Failed to fetch assignments",
		},
		{
			name:    "QueryByCourse",
			call:    func(svc assignment.Service) error { _, err := svc.QueryByCourse(context.Background(), "5"); return err },
			wantMsg: "Failed to fetch course assignments",
		},
		{
			name:    "GetByID",
			call:    func(svc assignment.Service) error { _, err := svc.GetByID(context.Background(), 1); return err },
			wantMsg: "Failed to fetch assignment",
		},
		{
			name: "Create",
			call: func(svc assignment.Service) error {
				_, err := svc.Create(context.Background(), assignment.NewAssignment{Title: "A"})
				return err
			},
			wantMsg: "Failed to create assignment",
		},
		{
			name: "Update",
			call: func(svc assignment.Service) error {
				_, err := svc.Update(context.Background(), 1, assignment.UpdateAssignment{Title: core.Set("A")})
				return err
			},
			wantMsg: "Failed to update assignment",
		},
		{
			name:    "Delete",
			call:    func(svc assignment.Service) error { _, err := svc.Delete(context.Background(), 1); return err },
			wantMsg: "Failed to delete assignment",
		},
		{
			name:    "ToggleComplete",
			call:    func(svc assignment.Service) error { _, err := svc.ToggleComplete(context.Background(), 1, true); return err },
			wantMsg: "Failed to toggle assignment completion",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, logger := stubService(&testutil.StubStore{Err: remote})

			err := tt.call(svc)
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.True(t, errors.Is(err, remote), "the remote failure is kept in the chain")
			assert.NotEmpty(t, logger.Entries("ERROR"), "the failure detail is logged")
		})
	}
}

func Test_service_Create(t *testing.T) {
	t.Run("partial failure reports the first failure", func(t *testing.T) {
		store := &testutil.StubStore{Results: []core.RecordResult{
			{Success: true, Data: core.Record{core.FieldID: 1}},
			{Message: "X"},
			{Message: "Y"},
		}}
		svc, logger := stubService(store)

		_, err := svc.Create(context.Background(), assignment.NewAssignment{Title: "A"})
		require.Error(t, err)
		assert.Equal(t, "X", err.Error())

		var opErr *core.OpError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, core.KindWrite, opErr.Kind)
		assert.Equal(t, "Failed to create assignment", opErr.Message)

		var logged bool
		for _, e := range logger.Entries("ERROR") {
			if e.Msg == "Failed to create assignment" {
				logged = true
				assert.Equal(t, []interface{}{map[string]interface{}{"failures": []core.RecordResult{{Message: "X"}, {Message: "Y"}}}}, e.Args)
			}
		}
		assert.True(t, logged, "every failed entry is logged")
	})

	t.Run("empty result list", func(t *testing.T) {
		svc, _ := stubService(&testutil.StubStore{Results: []core.RecordResult{}})

		_, err := svc.Create(context.Background(), assignment.NewAssignment{Title: "A"})
		require.Error(t, err)
		assert.Equal(t, "Failed to create assignment", err.Error())
		assert.True(t, errors.Is(err, core.ErrEmptyResult))
	})

	t.Run("payload", func(t *testing.T) {
		store := &testutil.StubStore{Results: []core.RecordResult{{Success: true, Data: core.Record{core.FieldID: 9, "Name": "A"}}}}
		svc, _ := stubService(store)

		got, err := svc.Create(context.Background(), assignment.NewAssignment{Title: "A", CourseID: "5"})
		require.NoError(t, err)
		assert.Equal(t, 9, got.ID)
		assert.Equal(t, "A", got.Title)

		call := store.LastCall(t)
		assert.Equal(t, "create", call.Op)
		require.Len(t, call.Records, 1)
		assert.Equal(t, 5, call.Records[0]["course_id_c"])
		assert.Equal(t, "A", call.Records[0]["Name"])
		assert.Equal(t, "A", call.Records[0]["title_c"])
	})
}

func Test_service_Update(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	created := testutil.CreateAssignment(t, svc, assignment.NewAssignment{
		Title:     "Essay",
		Completed: true,
		Grade:     null.Float64From(75),
		CourseID:  "5",
	})

	got, err := svc.Update(ctx, created.ID, assignment.UpdateAssignment{Completed: core.Set(false)})
	require.NoError(t, err)
	assert.False(t, got.Completed, "completed:false is written")
	assert.Equal(t, "Essay", got.Title, "absent fields are untouched")
	assert.Equal(t, null.Float64From(75), got.Grade)
	assert.Equal(t, "5", got.CourseID)

	got, err = svc.Update(ctx, created.ID, assignment.UpdateAssignment{Grade: core.Set(null.Float64{})})
	require.NoError(t, err)
	assert.False(t, got.Grade.Valid, "grade null clears the grade")

	_, err = svc.Update(ctx, 999, assignment.UpdateAssignment{Title: core.Set("B")})
	require.Error(t, err)
	assert.Equal(t, "Record with Id 999 does not exist", err.Error())
}

func Test_service_ToggleComplete(t *testing.T) {
	store := &testutil.StubStore{Results: []core.RecordResult{
		{Success: true, Data: core.Record{core.FieldID: 4, "completed_c": false}},
	}}
	svc, _ := stubService(store)

	got, err := svc.ToggleComplete(context.Background(), 4, false)
	require.NoError(t, err)
	assert.False(t, got.Completed)

	call := store.LastCall(t)
	assert.Equal(t, "update", call.Op)
	assert.Equal(t, []core.Record{{core.FieldID: 4, "completed_c": false}}, call.Records)

	store.Results = []core.RecordResult{{Message: "X"}}
	_, err = svc.ToggleComplete(context.Background(), 4, true)
	require.Error(t, err)
	assert.Equal(t, "X", err.Error())
}

func Test_service_Delete(t *testing.T) {
	tests := []struct {
		name    string
		results []core.RecordResult
		want    bool
		wantErr string
	}{
		{name: "deleted", results: []core.RecordResult{{Success: true}}, want: true},
		{name: "partial failure", results: []core.RecordResult{{Success: true}, {Message: "X"}}, want: true},
		{name: "failed", results: []core.RecordResult{{Message: "X"}}, wantErr: "X"},
		{name: "empty result list", results: []core.RecordResult{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &testutil.StubStore{Results: tt.results}
			svc, _ := stubService(store)

			got, err := svc.Delete(context.Background(), 3)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []int{3}, store.LastCall(t).IDs)
		})
	}

	t.Run("in-memory store", func(t *testing.T) {
		svc, _ := setup(t)
		ctx := context.Background()
		a := testutil.CreateAssignment(t, svc, assignment.NewAssignment{Title: "A"})

		deleted, err := svc.Delete(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = svc.GetByID(ctx, a.ID)
		assert.True(t, core.IsNotFound(err))
	})
}
