package wellness

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/campushealth/campushealth/internal/platform/auth"
	"github.com/campushealth/campushealth/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the student self-care endpoints. Everything here is
// owner-scoped; no other role can see a student's journal or mood history.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	student := api.Group("/student", auth.RequireRole(auth.RoleStudent))

	student.POST("/journals", h.CreateJournal)
	student.GET("/journals", h.ListJournals)
	student.GET("/journals/:id", h.GetJournal)
	student.PUT("/journals/:id", h.UpdateJournal)
	student.DELETE("/journals/:id", h.DeleteJournal)

	student.POST("/moods", h.LogMood)
	student.GET("/moods", h.ListMoodLogs)
	student.DELETE("/moods/:id", h.DeleteMoodLog)

	student.POST("/emergency-contacts", h.CreateContact)
	student.GET("/emergency-contacts", h.ListContacts)
	student.PUT("/emergency-contacts/:id", h.UpdateContact)
	student.DELETE("/emergency-contacts/:id", h.DeleteContact)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) CreateJournal(c echo.Context) error {
	var in JournalInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	j, err := h.svc.CreateJournal(ctx, auth.UserIDFromContext(ctx), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, j)
}

func (h *Handler) ListJournals(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListJournals(ctx, auth.UserIDFromContext(ctx), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetJournal(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	j, err := h.svc.GetJournal(ctx, auth.UserIDFromContext(ctx), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, j)
}

func (h *Handler) UpdateJournal(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var in JournalInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	j, err := h.svc.UpdateJournal(ctx, auth.UserIDFromContext(ctx), id, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, j)
}

func (h *Handler) DeleteJournal(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.svc.DeleteJournal(ctx, auth.UserIDFromContext(ctx), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) LogMood(c echo.Context) error {
	var in MoodLogInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	m, err := h.svc.LogMood(ctx, auth.UserIDFromContext(ctx), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) ListMoodLogs(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)

	var from, to time.Time
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid from timestamp")
		}
		from = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to timestamp")
		}
		to = t
	}

	items, total, err := h.svc.ListMoodLogs(ctx, auth.UserIDFromContext(ctx), from, to, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) DeleteMoodLog(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.svc.DeleteMoodLog(ctx, auth.UserIDFromContext(ctx), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateContact(c echo.Context) error {
	var in EmergencyContactInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	ec, err := h.svc.CreateContact(ctx, auth.UserIDFromContext(ctx), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, ec)
}

func (h *Handler) ListContacts(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.svc.ListContacts(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateContact(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var in EmergencyContactInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	ec, err := h.svc.UpdateContact(ctx, auth.UserIDFromContext(ctx), id, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ec)
}

func (h *Handler) DeleteContact(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.svc.DeleteContact(ctx, auth.UserIDFromContext(ctx), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
