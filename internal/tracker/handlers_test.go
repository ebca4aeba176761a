package tracker

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend-soozu/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func newApp(svc *Service) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler})
	RegisterRoutes(app.Group("/trackers"), svc)
	return app
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return out
}

func TestTrackerHandlersCreate(t *testing.T) {
	mock := newMock(t)
	app := newApp(newService(mock, nil))

	expectGetTrip(mock, "trip-1")
	mock.ExpectExec(`UPDATE trips SET start_date`).
		WithArgs("trip-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM trackers`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO trackers`).
		WithArgs(pgxmock.AnyArg(), "trip-1", "a@x.com", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"save_date"}).AddRow(time.Now()))

	body, _ := json.Marshal(CreateInput{TripID: "trip-1", Email: "a@x.com"})
	req := httptest.NewRequest(http.MethodPost, "/trackers/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: %v %d", err, resp.StatusCode)
	}

	got := decodeBody(t, resp)
	if got["success"] != true {
		t.Fatalf("expected success envelope, got %v", got)
	}
}

func TestTrackerHandlersCreateValidation(t *testing.T) {
	app := newApp(newService(newMock(t), nil))

	body, _ := json.Marshal(CreateInput{TripID: "trip-1", Email: "nope"})
	req := httptest.NewRequest(http.MethodPost, "/trackers/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v %d", err, resp.StatusCode)
	}

	got := decodeBody(t, resp)
	if got["error"] != apperr.CodeValidation {
		t.Fatalf("expected VALIDATION code, got %v", got)
	}
}

func TestTrackerHandlersCreateParseError(t *testing.T) {
	app := newApp(newService(newMock(t), nil))

	req := httptest.NewRequest(http.MethodPost, "/trackers/", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request")
	}
}

func TestTrackerHandlersCreateUnknownTrip(t *testing.T) {
	mock := newMock(t)
	app := newApp(newService(mock, nil))

	mock.ExpectQuery(`SELECT id, COALESCE\(owner_id,''\), name, destination`).
		WithArgs("missing").
		WillReturnError(errNoRowsForTest())

	body, _ := json.Marshal(CreateInput{TripID: "missing", Email: "a@x.com"})
	req := httptest.NewRequest(http.MethodPost, "/trackers/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %v %d", err, resp.StatusCode)
	}

	got := decodeBody(t, resp)
	if got["error"] != apperr.CodeNotFound {
		t.Fatalf("expected NOT_FOUND code, got %v", got)
	}
}

func TestTrackerHandlersRead(t *testing.T) {
	mock := newMock(t)
	app := newApp(newService(mock, nil))

	now := time.Now()
	mock.ExpectQuery(`SELECT token, trip_id, email`).
		WithArgs("TRV-ABCDEF-0001").
		WillReturnRows(trackerRows().AddRow("TRV-ABCDEF-0001", "trip-1", "a@x.com", "", "", true, int64(0), nil, nil, now))
	mock.ExpectQuery(`UPDATE trackers\s+SET access_count = access_count \+ 1`).
		WithArgs("TRV-ABCDEF-0001").
		WillReturnRows(pgxmock.NewRows([]string{"access_count", "last_accessed"}).AddRow(int64(1), &now))
	expectGetTrip(mock, "trip-1")
	mock.ExpectQuery(`SELECT id, trip_id, name, COALESCE\(notes,''\), order_index, added_at`).
		WithArgs("trip-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "trip_id", "name", "notes", "order_index", "added_at"}))
	mock.ExpectQuery(`SELECT id, trip_id, total_distance_km`).
		WithArgs("trip-1").
		WillReturnError(errNoRowsForTest())

	req := httptest.NewRequest(http.MethodGet, "/trackers/TRV-ABCDEF-0001?email=a%40x.com", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("read status: %v %d", err, resp.StatusCode)
	}

	got := decodeBody(t, resp)
	trip, ok := got["trip"].(map[string]any)
	if !ok || trip["name"] != "Bali Escape" {
		t.Fatalf("expected embedded trip, got %v", got)
	}
	if _, hasRoute := trip["route"]; hasRoute {
		t.Fatalf("route must be omitted when the trip has none")
	}
}

func TestTrackerHandlersReadDenied(t *testing.T) {
	mock := newMock(t)
	app := newApp(newService(mock, nil))

	mock.ExpectQuery(`SELECT token, trip_id, email`).
		WithArgs("T").
		WillReturnRows(trackerRows().AddRow("T", "trip-1", "a@x.com", "", "", true, int64(0), nil, nil, time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/trackers/T?email=b%40x.com", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %v %d", err, resp.StatusCode)
	}

	got := decodeBody(t, resp)
	if got["error"] != apperr.CodeAccessDenied {
		t.Fatalf("expected ACCESS_DENIED code, got %v", got)
	}
}

func TestTrackerHandlersReadGone(t *testing.T) {
	mock := newMock(t)
	app := newApp(newService(mock, nil))

	mock.ExpectQuery(`SELECT token, trip_id, email`).
		WithArgs("T").
		WillReturnRows(trackerRows().AddRow("T", "trip-1", "a@x.com", "", "", false, int64(0), nil, nil, time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/trackers/T", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusGone {
		t.Fatalf("expected 410, got %v %d", err, resp.StatusCode)
	}
}

func TestTrackerHandlersValidate(t *testing.T) {
	mock := newMock(t)
	app := newApp(newService(mock, nil))

	mock.ExpectQuery(`SELECT token, trip_id, email`).
		WithArgs("T").
		WillReturnRows(trackerRows().AddRow("T", "trip-1", "a@x.com", "", "", false, int64(0), nil, nil, time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/trackers/T/validate", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("validate must answer 200 even for dead trackers: %v %d", err, resp.StatusCode)
	}

	got := decodeBody(t, resp)
	if got["valid"] != false || got["reason"] != ReasonInactive {
		t.Fatalf("expected inactive verdict, got %v", got)
	}
}

func TestTrackerHandlersListByEmail(t *testing.T) {
	mock := newMock(t)
	app := newApp(newService(mock, nil))

	mock.ExpectQuery(`SELECT tr.token, tr.trip_id, tr.email`).
		WithArgs("a@x.com").
		WillReturnRows(pgxmock.NewRows([]string{"token", "trip_id", "email", "traveler_name", "phone",
			"is_active", "access_count", "last_accessed", "expires_at", "save_date",
			"name", "destination", "start_date", "status"}))

	req := httptest.NewRequest(http.MethodGet, "/trackers/email/a%40x.com", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("list status: %v %d", err, resp.StatusCode)
	}

	got := decodeBody(t, resp)
	if trackers, ok := got["trackers"].([]any); !ok || len(trackers) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
}

func TestTrackerHandlersUpdate(t *testing.T) {
	mock := newMock(t)
	app := newApp(newService(mock, nil))

	mock.ExpectQuery(`SELECT token, trip_id, email`).
		WithArgs("T").
		WillReturnRows(trackerRows().AddRow("T", "trip-1", "a@x.com", "Ann", "", true, int64(0), nil, nil, time.Now()))
	mock.ExpectExec(`UPDATE trackers\s+SET traveler_name`).
		WithArgs("T", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	req := httptest.NewRequest(http.MethodPut, "/trackers/T?email=a%40x.com", bytes.NewReader([]byte(`{"traveler_name":"Annie"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("update status: %v %d", err, resp.StatusCode)
	}

	got := decodeBody(t, resp)
	tr, ok := got["tracker"].(map[string]any)
	if !ok || tr["traveler_name"] != "Annie" {
		t.Fatalf("expected patched tracker, got %v", got)
	}
}

func TestTrackerHandlersDeactivate(t *testing.T) {
	mock := newMock(t)
	app := newApp(newService(mock, nil))

	mock.ExpectQuery(`SELECT token, trip_id, email`).
		WithArgs("T").
		WillReturnRows(trackerRows().AddRow("T", "trip-1", "a@x.com", "", "", true, int64(0), nil, nil, time.Now()))
	mock.ExpectExec(`UPDATE trackers SET is_active=FALSE`).
		WithArgs("T").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	req := httptest.NewRequest(http.MethodDelete, "/trackers/T?email=a%40x.com", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("deactivate status: %v %d", err, resp.StatusCode)
	}
}

func TestTrackerHandlersDeactivateDenied(t *testing.T) {
	mock := newMock(t)
	app := newApp(newService(mock, nil))

	mock.ExpectQuery(`SELECT token, trip_id, email`).
		WithArgs("T").
		WillReturnRows(trackerRows().AddRow("T", "trip-1", "a@x.com", "", "", true, int64(0), nil, nil, time.Now()))

	req := httptest.NewRequest(http.MethodDelete, "/trackers/T?email=b%40x.com", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %v %d", err, resp.StatusCode)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("denied delete must not write: %v", err)
	}
}
