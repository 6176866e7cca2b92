package audit

import (
	"errors"
	"net/http"

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

// RegisterRoutes wires the admin-only log browsing endpoints.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := api.Group("/logs", auth.RequireRole(auth.RoleAdmin))
	admin.GET("/activity", h.ListActivity)
	admin.GET("/system", h.ListSystem)
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

func (h *Handler) ListActivity(c echo.Context) error {
	pg := pagination.FromContext(c)
	filters := map[string]string{}
	for _, k := range []string{"user", "action", "from", "to"} {
		if v := c.QueryParam(k); v != "" {
			filters[k] = v
		}
	}
	items, total, err := h.svc.ListActivity(c.Request().Context(), filters, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListSystem(c echo.Context) error {
	pg := pagination.FromContext(c)
	filters := map[string]string{}
	for _, k := range []string{"level", "source", "from", "to"} {
		if v := c.QueryParam(k); v != "" {
			filters[k] = v
		}
	}
	items, total, err := h.svc.ListSystem(c.Request().Context(), filters, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
