package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func requestWithRole(role string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if role != "" {
		ctx := context.WithValue(req.Context(), UserRoleKey, role)
		req = req.WithContext(ctx)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	c := requestWithRole(RoleProvider)
	handler := RequireRole(RoleProvider)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Errorf("expected provider to pass, got %v", err)
	}
}

func TestRequireRoleAdminBypass(t *testing.T) {
	c := requestWithRole(RoleAdmin)
	handler := RequireRole(RoleStudent)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Errorf("expected admin to pass every gate, got %v", err)
	}
}

func TestRequireRoleForbidsOtherRoles(t *testing.T) {
	c := requestWithRole(RoleStudent)
	handler := RequireRole(RoleProvider)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}

func TestRequireRoleForbidsMissingRole(t *testing.T) {
	c := requestWithRole("")
	handler := RequireRole(RoleStudent)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}
