package support

import (
	"errors"
	"net/http"

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

// RegisterRoutes wires help requests and feedback for students, the triage
// queue for staff, and alert broadcast for staff and providers.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	student := api.Group("/student", auth.RequireRole(auth.RoleStudent))
	student.POST("/help-requests", h.CreateHelpRequest)
	student.GET("/help-requests", h.ListHelpRequestsForStudent)
	student.GET("/help-requests/:id", h.GetHelpRequestForStudent)
	student.POST("/feedback", h.SubmitFeedback)
	student.GET("/feedback", h.ListFeedbackForStudent)
	student.GET("/alerts", h.ListActiveAlerts)

	staff := api.Group("/staff", auth.RequireRole(auth.RoleStaff))
	staff.GET("/help-requests", h.ListHelpRequests)
	staff.PUT("/help-requests/:id/status", h.UpdateHelpRequestStatus)
	staff.GET("/feedback", h.ListFeedback)

	broadcast := api.Group("/alerts", auth.RequireRole(auth.RoleStaff, auth.RoleProvider))
	broadcast.POST("", h.CreateAlert)
	broadcast.GET("", h.ListAlerts)
	broadcast.PUT("/:id/deactivate", h.DeactivateAlert)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
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

func (h *Handler) CreateHelpRequest(c echo.Context) error {
	var in HelpRequestInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	hr, err := h.svc.CreateHelpRequest(ctx, auth.UserIDFromContext(ctx), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, hr)
}

func (h *Handler) ListHelpRequestsForStudent(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListHelpRequestsForStudent(ctx, auth.UserIDFromContext(ctx), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetHelpRequestForStudent(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	hr, err := h.svc.GetHelpRequestForStudent(ctx, auth.UserIDFromContext(ctx), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, hr)
}

func (h *Handler) ListHelpRequests(c echo.Context) error {
	pg := pagination.FromContext(c)
	filters := map[string]string{}
	for _, k := range []string{"status", "urgency"} {
		if v := c.QueryParam(k); v != "" {
			filters[k] = v
		}
	}
	items, total, err := h.svc.ListHelpRequests(c.Request().Context(), filters, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type statusRequest struct {
	Status RequestStatus `json:"status"`
}

func (h *Handler) UpdateHelpRequestStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	hr, err := h.svc.UpdateHelpRequestStatus(ctx, auth.UserIDFromContext(ctx), id, req.Status)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, hr)
}

func (h *Handler) SubmitFeedback(c echo.Context) error {
	var in FeedbackInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	f, err := h.svc.SubmitFeedback(ctx, auth.UserIDFromContext(ctx), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *Handler) ListFeedback(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListFeedback(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListFeedbackForStudent(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListFeedbackForStudent(ctx, auth.UserIDFromContext(ctx), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) CreateAlert(c echo.Context) error {
	var in HealthAlertInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	a, err := h.svc.CreateAlert(ctx, auth.UserIDFromContext(ctx), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListAlerts(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAlerts(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListActiveAlerts(c echo.Context) error {
	items, err := h.svc.ListActiveAlerts(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) DeactivateAlert(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.DeactivateAlert(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}
