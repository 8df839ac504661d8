package recordstore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masomo/planner/core"
)

type capturedRequest struct {
	method  string
	path    string
	headers http.Header
	body    map[string]interface{}
}

// newTestClient starts a server replying with status & body, capturing the last request.
func newTestClient(t *testing.T, status int, body string) (*Client, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.headers = r.Header.Clone()
		data, _ := io.ReadAll(r.Body)
		captured.body = nil
		_ = json.Unmarshal(data, &captured.body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	client := New(Options{
		BaseURL:   srv.URL + "/",
		ProjectID: "proj-1",
		PublicKey: "pk-1",
		Timeout:   5 * time.Second,
	})
	return client, captured
}

func TestClient_FetchRecords(t *testing.T) {
	client, req := newTestClient(t, http.StatusOK, `{"success": true, "data": [
		{"Id": 1, "Name": "Quiz", "course_id_c": {"Id": 5, "Name": "Math"}},
		{"Id": 2, "Name": "Essay", "grade_c": 88.5}
	]}`)

	recs, err := client.FetchRecords(context.Background(), "assignment_c", core.Query{
		Fields:  []string{"Name", "grade_c"},
		Where:   []core.Condition{core.Eq("course_id_c", 5)},
		OrderBy: []core.Ordering{{Field: "due_date_c", Ascending: true}},
		Paging:  core.FirstPage(),
	})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 1, recs[0].ID())
	assert.Equal(t, json.Number("1"), recs[0][core.FieldID], "numbers are decoded as json.Number")
	assert.Equal(t, map[string]interface{}{"Id": json.Number("5"), "Name": "Math"}, recs[0]["course_id_c"])
	grade, ok := recs[1].Float("grade_c")
	assert.True(t, ok)
	assert.Equal(t, 88.5, grade)

	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/tables/assignment_c/records/query", req.path)
	assert.Equal(t, "proj-1", req.headers.Get("X-Apper-Project-Id"))
	assert.Equal(t, "pk-1", req.headers.Get("X-Apper-Public-Key"))
	assert.Equal(t, map[string]interface{}{
		"fields": []interface{}{
			map[string]interface{}{"field": map[string]interface{}{"Name": "Name"}},
			map[string]interface{}{"field": map[string]interface{}{"Name": "grade_c"}},
		},
		"where": []interface{}{
			map[string]interface{}{"FieldName": "course_id_c", "Operator": "EqualTo", "Values": []interface{}{5.0}},
		},
		"orderBy":    []interface{}{map[string]interface{}{"fieldName": "due_date_c", "sorttype": "ASC"}},
		"pagingInfo": map[string]interface{}{"limit": 100.0, "offset": 0.0},
	}, req.body)
}

func TestClient_FetchRecords_nullData(t *testing.T) {
	client, _ := newTestClient(t, http.StatusOK, `{"success": true, "data": null}`)

	recs, err := client.FetchRecords(context.Background(), "course_c", core.Query{})
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestClient_failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantRemote bool
		wantErr    string
	}{
		{
			name: "unsuccessful envelope", status: http.StatusOK, body: `{"success": false, "message": "Table not found"}`,
			wantRemote: true, wantErr: "Table not found",
		},
		{
			name: "unsuccessful envelope without message", status: http.StatusForbidden, body: `{"success": false}`,
			wantRemote: true, wantErr: "Forbidden",
		},
		{name: "bad gateway", status: http.StatusBadGateway, body: `<html>oops</html>`, wantErr: "unexpected status 502"},
		{name: "garbage", status: http.StatusOK, body: `oops`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, tt.status, tt.body)

			_, err := client.FetchRecords(context.Background(), "course_c", core.Query{})
			require.Error(t, err)
			var remote *core.RemoteError
			assert.Equal(t, tt.wantRemote, errors.As(err, &remote))
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestClient_GetRecordByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		client, req := newTestClient(t, http.StatusOK, `{"success": true, "data": {"Id": 7, "name_c": "Calculus"}}`)

		rec, err := client.GetRecordByID(context.Background(), "course_c", 7, core.Query{Fields: []string{"name_c"}})
		require.NoError(t, err)
		assert.Equal(t, 7, rec.ID())
		assert.Equal(t, "Calculus", rec.Text("name_c"))
		assert.Equal(t, "/tables/course_c/records/7/query", req.path)
		assert.Equal(t, http.MethodPost, req.method)
	})

	t.Run("absent", func(t *testing.T) {
		client, _ := newTestClient(t, http.StatusOK, `{"success": true, "data": null}`)

		rec, err := client.GetRecordByID(context.Background(), "course_c", 7, core.Query{})
		require.NoError(t, err)
		assert.Nil(t, rec)
	})
}

func TestClient_mutations(t *testing.T) {
	body := `{"success": true, "results": [
		{"success": true, "data": {"Id": 3, "Name": "Essay"}},
		{"success": false, "message": "X"}
	]}`
	want := []core.RecordResult{
		{Success: true, Data: core.Record{"Id": json.Number("3"), "Name": "Essay"}},
		{Success: false, Message: "X"},
	}

	t.Run("create", func(t *testing.T) {
		client, req := newTestClient(t, http.StatusOK, body)
		results, err := client.CreateRecords(context.Background(), "assignment_c", core.Record{"Name": "Essay", "completed_c": false})
		require.NoError(t, err)
		assert.Equal(t, want, results)
		assert.Equal(t, http.MethodPost, req.method)
		assert.Equal(t, "/tables/assignment_c/records", req.path)
		assert.Equal(t, map[string]interface{}{
			"records": []interface{}{map[string]interface{}{"Name": "Essay", "completed_c": false}},
		}, req.body)
	})

	t.Run("update", func(t *testing.T) {
		client, req := newTestClient(t, http.StatusOK, body)
		results, err := client.UpdateRecords(context.Background(), "assignment_c", core.Record{"Id": 3, "grade_c": nil})
		require.NoError(t, err)
		assert.Equal(t, want, results)
		assert.Equal(t, http.MethodPatch, req.method)
		assert.Equal(t, map[string]interface{}{
			"records": []interface{}{map[string]interface{}{"Id": 3.0, "grade_c": nil}},
		}, req.body)
	})

	t.Run("delete", func(t *testing.T) {
		client, req := newTestClient(t, http.StatusOK, `{"success": true, "results": [{"success": true}]}`)
		results, err := client.DeleteRecords(context.Background(), "assignment_c", 3)
		require.NoError(t, err)
		assert.Equal(t, []core.RecordResult{{Success: true}}, results)
		assert.Equal(t, http.MethodDelete, req.method)
		assert.Equal(t, map[string]interface{}{"RecordIds": []interface{}{3.0}}, req.body)
	})

	t.Run("no results", func(t *testing.T) {
		client, _ := newTestClient(t, http.StatusOK, `{"success": true}`)
		results, err := client.DeleteRecords(context.Background(), "assignment_c", 3)
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})
}

func TestClient_latency(t *testing.T) {
	client, _ := newTestClient(t, http.StatusOK, `{"success": true, "data": []}`)
	client.latency = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := client.FetchRecords(ctx, "course_c", core.Query{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_cancelledCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	client := New(Options{BaseURL: srv.URL, Timeout: time.Minute})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.CreateRecords(ctx, "course_c", core.Record{"name_c": "Math"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
