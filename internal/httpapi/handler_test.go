package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"attend-go/internal/attend"
	"attend-go/internal/httpapi"
	"attend-go/internal/model"
	"attend-go/internal/testutil"
)

// newTestRouter wires the full stack over an in-memory store: real service,
// real SQLite, stubbed clock.
func newTestRouter(t *testing.T) (http.Handler, *attend.Service, *testutil.StubClock) {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	clock := testutil.FixedClock()
	svc := attend.NewService(db, attend.NewNopLogger(), clock, testutil.NewStubIDGenerator())
	h := httpapi.NewHandler(svc, clock, attend.NewNopLogger())
	return httpapi.NewRouter(h), svc, clock
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestManualAttendance(t *testing.T) {
	t.Run("records and returns 201", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		rec := doRequest(t, router, http.MethodPost, "/api/attendance/manual",
			`{"student_name": "Alice", "status": "present"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201; body = %s", rec.Code, rec.Body.String())
		}
		body := decodeBody[map[string]string](t, rec)
		if body["message"] != "attendance logged successfully" {
			t.Errorf("message = %q, want success message", body["message"])
		}
	})

	t.Run("second record same day returns 409", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		first := doRequest(t, router, http.MethodPost, "/api/attendance/manual",
			`{"student_name": "Alice"}`)
		if first.Code != http.StatusCreated {
			t.Fatalf("first status = %d, want 201", first.Code)
		}

		second := doRequest(t, router, http.MethodPost, "/api/attendance/manual",
			`{"student_name": "Alice"}`)
		if second.Code != http.StatusConflict {
			t.Fatalf("second status = %d, want 409", second.Code)
		}
		body := decodeBody[map[string]string](t, second)
		if body["error"] != "attendance already logged today" {
			t.Errorf("error = %q, want duplicate message", body["error"])
		}
	})

	t.Run("status defaults to present", func(t *testing.T) {
		router, svc, _ := newTestRouter(t)

		rec := doRequest(t, router, http.MethodPost, "/api/attendance/manual",
			`{"student_name": "Alice"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", rec.Code)
		}

		stats, err := svc.StudentStats("Alice")
		if err != nil {
			t.Fatalf("StudentStats() error = %v", err)
		}
		if stats.PresentDays != 1 {
			t.Errorf("PresentDays = %d, want 1", stats.PresentDays)
		}
	})

	t.Run("missing student name returns 400", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		rec := doRequest(t, router, http.MethodPost, "/api/attendance/manual", `{"status": "present"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		rec := doRequest(t, router, http.MethodPost, "/api/attendance/manual", `{not json`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		body := decodeBody[map[string]string](t, rec)
		if body["error"] != "invalid request body" {
			t.Errorf("error = %q, want invalid body message", body["error"])
		}
	})
}

func TestStudentStatsEndpoint(t *testing.T) {
	t.Run("unknown student returns 404", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		rec := doRequest(t, router, http.MethodGet, "/api/stats/Nobody", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("returns the student's stats", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		doRequest(t, router, http.MethodPost, "/api/attendance/manual", `{"student_name": "Alice"}`)

		rec := doRequest(t, router, http.MethodGet, "/api/stats/Alice", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
		}

		stats := decodeBody[model.Stats](t, rec)
		if stats.StudentName != "Alice" {
			t.Errorf("StudentName = %q, want Alice", stats.StudentName)
		}
		if stats.PresentDays != 1 || stats.TotalDays != 1 {
			t.Errorf("counts = %d/%d, want 1/1", stats.PresentDays, stats.TotalDays)
		}
		if stats.AttendancePercentage != 100 {
			t.Errorf("AttendancePercentage = %v, want 100", stats.AttendancePercentage)
		}
	})
}

func TestAllStatsEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t)

	doRequest(t, router, http.MethodPost, "/api/attendance/manual", `{"student_name": "Alice"}`)
	doRequest(t, router, http.MethodPost, "/api/attendance/manual",
		`{"student_name": "Bob", "status": "absent"}`)

	rec := doRequest(t, router, http.MethodGet, "/api/stats/all", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decodeBody[struct {
		Students     []model.Stats `json:"students"`
		ClassAverage float64       `json:"class_average"`
	}](t, rec)

	if len(body.Students) != 2 {
		t.Fatalf("got %d students, want 2", len(body.Students))
	}
	if body.ClassAverage != 50 {
		t.Errorf("class_average = %v, want 50", body.ClassAverage)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	t.Run("returns recorded events", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		doRequest(t, router, http.MethodPost, "/api/attendance/manual", `{"student_name": "Alice"}`)

		rec := doRequest(t, router, http.MethodGet, "/api/attendance/history", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		entries := decodeBody[[]model.HistoryEntry](t, rec)
		if len(entries) != 1 || entries[0].StudentName != "Alice" {
			t.Errorf("entries = %+v, want one Alice entry", entries)
		}
	})

	t.Run("filters by student name", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		doRequest(t, router, http.MethodPost, "/api/attendance/manual", `{"student_name": "Alice"}`)
		doRequest(t, router, http.MethodPost, "/api/attendance/manual", `{"student_name": "Bob"}`)

		rec := doRequest(t, router, http.MethodGet, "/api/attendance/history?student_name=Bob", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		entries := decodeBody[[]model.HistoryEntry](t, rec)
		if len(entries) != 1 || entries[0].StudentName != "Bob" {
			t.Errorf("entries = %+v, want one Bob entry", entries)
		}
	})

	t.Run("unknown student returns 404", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		rec := doRequest(t, router, http.MethodGet, "/api/attendance/history?student_name=Nobody", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("non-integer days returns 400", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		rec := doRequest(t, router, http.MethodGet, "/api/attendance/history?days=soon", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("non-positive days returns 400", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		rec := doRequest(t, router, http.MethodGet, "/api/attendance/history?days=0", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestTrendsEndpoint(t *testing.T) {
	t.Run("unknown student returns 404", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		rec := doRequest(t, router, http.MethodGet, "/api/attendance/trends/Nobody", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("returns chart series", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		doRequest(t, router, http.MethodPost, "/api/attendance/manual", `{"student_name": "Alice"}`)

		rec := doRequest(t, router, http.MethodGet, "/api/attendance/trends/Alice", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		trends := decodeBody[model.Trends](t, rec)
		if len(trends.Monthly.Labels) != 1 || trends.Monthly.Values[0] != 1 {
			t.Errorf("monthly series = %+v, want one bucket with value 1", trends.Monthly)
		}
	})
}

func TestSummaryEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t)

	doRequest(t, router, http.MethodPost, "/api/attendance/manual", `{"student_name": "Alice"}`)
	doRequest(t, router, http.MethodPost, "/api/attendance/manual",
		`{"student_name": "Bob", "status": "absent"}`)

	rec := doRequest(t, router, http.MethodGet, "/api/attendance/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	summary := decodeBody[model.Summary](t, rec)
	if summary.TotalStudents != 2 {
		t.Errorf("TotalStudents = %d, want 2", summary.TotalStudents)
	}
	if len(summary.TodayAttendance) != 2 {
		t.Fatalf("got %d today entries, want 2", len(summary.TodayAttendance))
	}
	if !summary.TodayAttendance[0].Present {
		t.Error("Alice should be marked present today")
	}
	if summary.TodayAttendance[1].Present {
		t.Error("Bob should not be marked present today")
	}
}

func TestStudentsEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t)

	doRequest(t, router, http.MethodPost, "/api/attendance/manual", `{"student_name": "Bob"}`)
	doRequest(t, router, http.MethodPost, "/api/attendance/manual", `{"student_name": "Alice"}`)

	rec := doRequest(t, router, http.MethodGet, "/api/students", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	names := decodeBody[[]string](t, rec)
	if len(names) != 2 || names[0] != "Alice" || names[1] != "Bob" {
		t.Errorf("names = %v, want [Alice Bob]", names)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody[map[string]string](t, rec)
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}
