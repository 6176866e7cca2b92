package records

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

// RegisterRoutes wires the provider record-keeping endpoints and the
// student's read-only views of their own chart.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	provider := api.Group("/provider", auth.RequireRole(auth.RoleProvider))
	provider.POST("/records", h.CreateRecord)
	provider.GET("/records", h.ListRecordsForProvider)
	provider.PUT("/records/:id", h.UpdateRecord)
	provider.PUT("/records/:id/verify", h.VerifyRecord)
	provider.POST("/prescriptions", h.CreatePrescription)
	provider.GET("/prescriptions", h.ListPrescriptionsForProvider)
	provider.PUT("/prescriptions/:id", h.UpdatePrescription)

	student := api.Group("/student", auth.RequireRole(auth.RoleStudent))
	student.GET("/records", h.ListRecordsForStudent)
	student.GET("/records/:id", h.GetRecordForStudent)
	student.GET("/prescriptions", h.ListPrescriptionsForStudent)
	student.GET("/prescriptions/:id", h.GetPrescriptionForStudent)
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

func (h *Handler) CreateRecord(c echo.Context) error {
	var in CreateRecordInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	rec, err := h.svc.CreateRecord(ctx, auth.UserIDFromContext(ctx), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) UpdateRecord(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var in UpdateRecordInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	rec, err := h.svc.UpdateRecord(ctx, auth.UserIDFromContext(ctx), id, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) VerifyRecord(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	rec, err := h.svc.VerifyRecord(ctx, auth.UserIDFromContext(ctx), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) ListRecordsForProvider(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	filters := map[string]string{}
	for _, k := range []string{"verified", "diagnosis"} {
		if v := c.QueryParam(k); v != "" {
			filters[k] = v
		}
	}
	items, total, err := h.svc.ListRecordsForProvider(ctx, auth.UserIDFromContext(ctx), filters, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListRecordsForStudent(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListRecordsForStudent(ctx, auth.UserIDFromContext(ctx), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetRecordForStudent(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	rec, err := h.svc.GetRecordForStudent(ctx, auth.UserIDFromContext(ctx), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) CreatePrescription(c echo.Context) error {
	var in CreatePrescriptionInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	p, err := h.svc.CreatePrescription(ctx, auth.UserIDFromContext(ctx), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePrescription(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var in UpdatePrescriptionInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	p, err := h.svc.UpdatePrescription(ctx, auth.UserIDFromContext(ctx), id, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPrescriptionsForProvider(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPrescriptionsForProvider(ctx, auth.UserIDFromContext(ctx), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListPrescriptionsForStudent(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPrescriptionsForStudent(ctx, auth.UserIDFromContext(ctx), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetPrescriptionForStudent(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	p, err := h.svc.GetPrescriptionForStudent(ctx, auth.UserIDFromContext(ctx), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}
