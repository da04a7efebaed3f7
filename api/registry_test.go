package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRegistry_Register_Apply(t *testing.T) {
	RegisterGET("/probe/availability", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	e := echo.New()
	ApplyRoutes(e, nil)

	req := httptest.NewRequest(http.MethodGet, "/probe/availability", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRegistry_RegisterAfterApply_Panics(t *testing.T) {
	ApplyRoutes(echo.New(), nil) // locks the routes registry
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic when registering after ApplyRoutes locked the registry")
		}
	}()
	RegisterGET("/probe/late", func(c echo.Context) error { return nil })
}
