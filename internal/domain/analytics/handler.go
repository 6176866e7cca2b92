package analytics

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campushealth/campushealth/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the reporting endpoints for admins and providers.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	a := api.Group("/analytics", auth.RequireRole(auth.RoleAdmin, auth.RoleProvider))
	a.GET("/moods", h.MoodDistribution)
	a.GET("/moods/trend", h.MoodTrend)
	a.GET("/diagnoses", h.DiagnosisCounts)
	a.GET("/appointments/status", h.AppointmentStatusCounts)
	a.GET("/appointments/providers", h.AppointmentsPerProvider)
	a.GET("/summary", h.Summary)
}

func httpError(err error) error {
	if errors.Is(err, ErrValidation) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// window parses optional start/end query params as RFC 3339 timestamps.
func window(c echo.Context) (time.Time, time.Time, error) {
	var start, end time.Time
	if v := c.QueryParam("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return start, end, echo.NewHTTPError(http.StatusBadRequest, "invalid start timestamp")
		}
		start = t
	}
	if v := c.QueryParam("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return start, end, echo.NewHTTPError(http.StatusBadRequest, "invalid end timestamp")
		}
		end = t
	}
	return start, end, nil
}

func (h *Handler) MoodDistribution(c echo.Context) error {
	start, end, err := window(c)
	if err != nil {
		return err
	}
	items, err := h.svc.MoodDistribution(c.Request().Context(), start, end)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) MoodTrend(c echo.Context) error {
	start, end, err := window(c)
	if err != nil {
		return err
	}
	report, err := h.svc.MoodTrend(c.Request().Context(), start, end)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) DiagnosisCounts(c echo.Context) error {
	start, end, err := window(c)
	if err != nil {
		return err
	}
	items, err := h.svc.DiagnosisCounts(c.Request().Context(), start, end)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) AppointmentStatusCounts(c echo.Context) error {
	start, end, err := window(c)
	if err != nil {
		return err
	}
	items, err := h.svc.AppointmentStatusCounts(c.Request().Context(), start, end)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) AppointmentsPerProvider(c echo.Context) error {
	start, end, err := window(c)
	if err != nil {
		return err
	}
	items, err := h.svc.AppointmentsPerProvider(c.Request().Context(), start, end)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Summary(c echo.Context) error {
	start, end, err := window(c)
	if err != nil {
		return err
	}
	report, err := h.svc.Summary(c.Request().Context(), start, end)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}
