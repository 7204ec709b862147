package appointment

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dvdm12/hospital-api/internal/platform/auth"
	"github.com/dvdm12/hospital-api/internal/platform/lock"
	"github.com/dvdm12/hospital-api/pkg/pagination"
)

type Handler struct {
	svc   *Service
	grace time.Duration
}

func NewHandler(svc *Service, grace time.Duration) *Handler {
	return &Handler{svc: svc, grace: grace}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("admin", "physician", "nurse", "registrar"))
	read.GET("/appointments", h.Search)
	read.GET("/appointments/stats", h.Stats)
	read.GET("/appointments/next", h.NextForPatient)
	read.GET("/appointments/day", h.ListForDay)
	read.GET("/appointments/:id", h.Get)
	read.GET("/doctors/:id/appointments", h.ListByDoctor)
	read.GET("/patients/:id/appointments", h.ListByPatient)

	write := api.Group("", auth.RequireRole("admin", "physician", "registrar"))
	write.POST("/appointments", h.Schedule)
	write.POST("/appointments/:id/confirm", h.Confirm)
	write.POST("/appointments/:id/cancel", h.Cancel)
	write.POST("/appointments/:id/complete", h.Complete)
	write.POST("/appointments/:id/no-show", h.MarkNoShow)
	write.POST("/appointments/:id/reschedule", h.Reschedule)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.POST("/appointments/sweep", h.Sweep)
}

// httpError maps the engine's typed rejections to HTTP statuses.
func httpError(err error) error {
	var (
		notFound    *NotFoundError
		timing      *InvalidTimingError
		unavailable *DoctorUnavailableError
		conflict    *ConflictError
		illegal     *IllegalTransitionError
	)
	switch {
	case errors.As(err, &notFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.As(err, &timing), errors.As(err, &unavailable):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &conflict), errors.As(err, &illegal):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, lock.ErrLockNotAcquired):
		return echo.NewHTTPError(http.StatusConflict, "doctor is being booked, retry shortly")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) Schedule(c echo.Context) error {
	var req ScheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.DoctorID == uuid.Nil || req.PatientID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "doctor_id and patient_id are required")
	}
	if req.Reason == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reason is required")
	}
	if req.Start.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "start_time is required")
	}

	ap, err := h.svc.Schedule(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, ap)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ap, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ap)
}

func (h *Handler) Confirm(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ap, err := h.svc.Confirm(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ap)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body struct {
		Reason *string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ap, err := h.svc.Cancel(c.Request().Context(), id, body.Reason)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ap)
}

func (h *Handler) Complete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body struct {
		Notes string `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ap, err := h.svc.Complete(c.Request().Context(), id, body.Notes)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ap)
}

func (h *Handler) MarkNoShow(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ap, err := h.svc.MarkNoShow(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ap)
}

func (h *Handler) Reschedule(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body struct {
		Start time.Time  `json:"start_time"`
		End   *time.Time `json:"end_time"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.Start.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "start_time is required")
	}
	ap, err := h.svc.Reschedule(c.Request().Context(), id, body.Start, body.End)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ap)
}

// Search handles GET /appointments with optional conjunctive filters.
func (h *Handler) Search(c echo.Context) error {
	pg := pagination.FromContext(c)

	var params SearchParams
	if v := c.QueryParam("doctor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		params.DoctorID = &id
	}
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		params.PatientID = &id
	}
	if v := c.QueryParam("status"); v != "" {
		status := Status(v)
		if !status.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		params.Status = &status
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid from time")
		}
		params.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to time")
		}
		params.To = &t
	}
	params.Reason = c.QueryParam("reason")

	items, total, err := h.svc.Search(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByDoctor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByDoctor(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByPatient(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// ListForDay handles GET /appointments/day?doctor_id=...&date=2026-09-01.
func (h *Handler) ListForDay(c echo.Context) error {
	doctorID, err := uuid.Parse(c.QueryParam("doctor_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "doctor_id is required")
	}
	day := time.Now()
	if v := c.QueryParam("date"); v != "" {
		day, err = time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		}
	}
	items, err := h.svc.ListForDay(c.Request().Context(), doctorID, day)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) NextForPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.QueryParam("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}
	ap, err := h.svc.NextForPatient(c.Request().Context(), patientID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ap)
}

func (h *Handler) Stats(c echo.Context) error {
	counts, err := h.svc.CountByStatus(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, counts)
}

// Sweep triggers one no-show sweep on demand, outside the periodic schedule.
func (h *Handler) Sweep(c echo.Context) error {
	marked, err := h.svc.ProcessNoShows(c.Request().Context(), h.grace)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"marked": marked,
		"count":  len(marked),
	})
}
