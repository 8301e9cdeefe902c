package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cerveceria-ancestral/inventario-api/internal/application/dto"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/entity"
	apihttp "github.com/cerveceria-ancestral/inventario-api/internal/interfaces/http"
	"github.com/cerveceria-ancestral/inventario-api/pkg/jwt"
)

const testSecret = "secreto-para-pruebas-del-middleware"

// ─────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────

func buildTestApp(roles ...string) *fiber.App {
	app := fiber.New()
	app.Use(apihttp.AuthMiddleware(testSecret))
	handler := func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"userId": apihttp.GetUserID(c),
			"rol":    apihttp.GetRole(c),
		})
	}
	if len(roles) > 0 {
		app.Get("/recurso", apihttp.RequireRole(roles...), handler)
	} else {
		app.Get("/recurso", handler)
	}
	return app
}

func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	token, err := jwt.Generate(testSecret, "user-1", role, "inventario-api", 5)
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/recurso", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

// ─────────────────────────────────────────────────────────────
// AuthMiddleware
// ─────────────────────────────────────────────────────────────

func TestAuthMiddleware_SinToken(t *testing.T) {
	app := buildTestApp()

	resp := doRequest(t, app, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", decodeError(t, resp).Code)
}

func TestAuthMiddleware_FormatoInvalido(t *testing.T) {
	app := buildTestApp()

	resp := doRequest(t, app, "Basic dXN1YXJpbzpjbGF2ZQ==")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", decodeError(t, resp).Code)
}

func TestAuthMiddleware_TokenInvalido(t *testing.T) {
	app := buildTestApp()

	resp := doRequest(t, app, "Bearer esto-no-es-un-jwt")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", decodeError(t, resp).Code)
}

func TestAuthMiddleware_TokenConOtroSecreto(t *testing.T) {
	app := buildTestApp()
	ajeno, err := jwt.Generate("otro-secreto", "user-1", entity.RoleAdmin, "inventario-api", 5)
	require.NoError(t, err)

	resp := doRequest(t, app, "Bearer "+ajeno)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_ExtraeClaimsALocals(t *testing.T) {
	app := buildTestApp()

	resp := doRequest(t, app, "Bearer "+tokenForRole(t, entity.RoleWarehouse))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]string
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "user-1", out["userId"])
	assert.Equal(t, entity.RoleWarehouse, out["rol"])
}

// ─────────────────────────────────────────────────────────────
// RequireRole
// ─────────────────────────────────────────────────────────────

func TestRequireRole_AdminAccedeSiempre(t *testing.T) {
	app := buildTestApp(entity.RoleWarehouse)

	resp := doRequest(t, app, "Bearer "+tokenForRole(t, entity.RoleAdmin))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_RolPermitido(t *testing.T) {
	app := buildTestApp(entity.RoleWarehouse, entity.RoleOperator)

	resp := doRequest(t, app, "Bearer "+tokenForRole(t, entity.RoleOperator))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_RolInsuficiente(t *testing.T) {
	app := buildTestApp(entity.RoleWarehouse)

	resp := doRequest(t, app, "Bearer "+tokenForRole(t, entity.RoleOperator))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decodeError(t, resp).Code)
}

func TestRequireRole_TokenSinRol(t *testing.T) {
	app := buildTestApp(entity.RoleWarehouse)

	resp := doRequest(t, app, "Bearer "+tokenForRole(t, ""))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_ROLE", decodeError(t, resp).Code)
}
