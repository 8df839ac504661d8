package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/masomo/planner/apps/api/echo"
	"github.com/masomo/planner/core"
	"github.com/masomo/planner/core/assignment"
	"github.com/masomo/planner/core/course"
	logsvc "github.com/masomo/planner/services/logger"
	"github.com/masomo/planner/services/metrics"
	"github.com/masomo/planner/tests"
)

type deps struct {
	store         core.RecordStore
	logger        *logsvc.ConsoleLogger
	courseSvc     course.Service
	assignmentSvc assignment.Service
}

// setup returns a server backed by store; a fresh in-memory store when nil.
func setup(t *testing.T, store core.RecordStore) (Server, deps) {
	t.Helper()
	if store == nil {
		store = testutil.NewStore()
	}
	conf := &core.Config{Env: "TEST", AppName: "Planner", TestMode: true}
	conf.Server.DisableReqLogs = true

	d := deps{store: store, logger: logsvc.NewConsoleLoggerMock()}
	d.courseSvc = course.NewService(store, d.logger)
	d.assignmentSvc = assignment.NewService(store, d.logger)

	return NewServer(ServerDeps{
		Conf:          conf,
		Logger:        d.logger,
		CourseSvc:     d.courseSvc,
		AssignmentSvc: d.assignmentSvc,
		Metrics:       metrics.NewRegistry(),
	}), d
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code, "status code")
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app Server, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newRequest(method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
