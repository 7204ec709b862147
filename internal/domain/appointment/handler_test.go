package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newHandlerFixture(t *testing.T) (*Handler, *fixture, *echo.Echo) {
	t.Helper()
	f := newFixture(t)
	return NewHandler(f.svc, 30*time.Minute), f, echo.New()
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return he.Code
}

func TestHandlerSchedule(t *testing.T) {
	h, f, e := newHandlerFixture(t)

	body := fmt.Sprintf(`{"doctor_id":%q,"patient_id":%q,"start_time":%q,"reason":"checkup"}`,
		f.doctor, f.patient, at(10, 0).Format(time.RFC3339))
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Schedule(c); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	var got Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != StatusScheduled {
		t.Errorf("status = %q, want %q", got.Status, StatusScheduled)
	}
	if !got.EndTime.Equal(at(10, 30)) {
		t.Errorf("end = %v, want default 30 minute window", got.EndTime)
	}
}

func TestHandlerScheduleMissingReason(t *testing.T) {
	h, f, e := newHandlerFixture(t)

	body := fmt.Sprintf(`{"doctor_id":%q,"patient_id":%q,"start_time":%q}`,
		f.doctor, f.patient, at(10, 0).Format(time.RFC3339))
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Schedule(c)
	if code := httpStatus(t, err); code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", code, http.StatusBadRequest)
	}
}

func TestHandlerScheduleConflict(t *testing.T) {
	h, f, e := newHandlerFixture(t)
	f.schedule(t, at(10, 0), nil)

	body := fmt.Sprintf(`{"doctor_id":%q,"patient_id":%q,"start_time":%q,"reason":"checkup"}`,
		f.doctor, f.patient, at(10, 15).Format(time.RFC3339))
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Schedule(c)
	if code := httpStatus(t, err); code != http.StatusConflict {
		t.Errorf("status = %d, want %d", code, http.StatusConflict)
	}
}

func TestHandlerSchedulePastStart(t *testing.T) {
	h, f, e := newHandlerFixture(t)

	body := fmt.Sprintf(`{"doctor_id":%q,"patient_id":%q,"start_time":%q,"reason":"checkup"}`,
		f.doctor, f.patient, fixedNow.Add(-time.Hour).Format(time.RFC3339))
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Schedule(c)
	if code := httpStatus(t, err); code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", code, http.StatusUnprocessableEntity)
	}
}

func TestHandlerGet(t *testing.T) {
	h, f, e := newHandlerFixture(t)
	ap := f.schedule(t, at(10, 0), nil)

	req := httptest.NewRequest(http.MethodGet, "/appointments/"+ap.ID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(ap.ID.String())

	if err := h.Get(c); err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestHandlerGetNotFound(t *testing.T) {
	h, _, e := newHandlerFixture(t)

	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/appointments/"+id.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	err := h.Get(c)
	if code := httpStatus(t, err); code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", code, http.StatusNotFound)
	}
}

func TestHandlerGetInvalidID(t *testing.T) {
	h, _, e := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/appointments/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.Get(c)
	if code := httpStatus(t, err); code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", code, http.StatusBadRequest)
	}
}

func TestHandlerConfirmIllegalTransition(t *testing.T) {
	h, f, e := newHandlerFixture(t)
	ap := f.schedule(t, at(10, 0), nil)
	if _, err := f.svc.Cancel(context.Background(), ap.ID, nil); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/appointments/"+ap.ID.String()+"/confirm", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(ap.ID.String())

	err := h.Confirm(c)
	if code := httpStatus(t, err); code != http.StatusConflict {
		t.Errorf("status = %d, want %d", code, http.StatusConflict)
	}
}

func TestHandlerSearchByStatus(t *testing.T) {
	h, f, e := newHandlerFixture(t)
	f.schedule(t, at(10, 0), nil)
	ap := f.schedule(t, at(11, 0), nil)
	if _, err := f.svc.Cancel(context.Background(), ap.ID, nil); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/appointments?status=cancelled", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Search(c); err != nil {
		t.Fatalf("search: %v", err)
	}

	var resp struct {
		Data  []*Appointment `json:"data"`
		Total int            `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || len(resp.Data) != 1 || resp.Data[0].ID != ap.ID {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHandlerSearchInvalidStatus(t *testing.T) {
	h, _, e := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/appointments?status=bogus", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Search(c)
	if code := httpStatus(t, err); code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", code, http.StatusBadRequest)
	}
}

func TestHandlerSweep(t *testing.T) {
	h, f, e := newHandlerFixture(t)
	f.schedule(t, at(9, 0), nil)
	f.svc.now = func() time.Time { return at(10, 0) }

	req := httptest.NewRequest(http.MethodPost, "/appointments/sweep", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Sweep(c); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("count = %d, want 1", resp.Count)
	}
}
