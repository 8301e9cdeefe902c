package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cerveceria-ancestral/inventario-api/internal/application/apptest"
	"github.com/cerveceria-ancestral/inventario-api/internal/application/usecase"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/entity"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/repository"
	apihttp "github.com/cerveceria-ancestral/inventario-api/internal/interfaces/http"
)

// ─────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────

func buildItemApp(repo repository.ItemRepository, store *apptest.Store) *fiber.App {
	uc := usecase.NewItemUseCase(entity.ElementRawMaterial, repo, &apptest.TxRunner{S: store})
	handler := apihttp.NewItemHandler(uc)
	app := fiber.New()
	app.Get("/items/:id", handler.GetByID)
	return app
}

// itemsConFallo simula una falla de infraestructura al consultar por ID.
type itemsConFallo struct {
	repository.ItemRepository
}

func (itemsConFallo) GetByID(context.Context, string) (*entity.Item, error) {
	return nil, apptest.ErrInjected
}

// ─────────────────────────────────────────────────────────────
// Parámetros de ruta UUID
// ─────────────────────────────────────────────────────────────

func TestParamUUID_MalFormadoDevuelveValidacion(t *testing.T) {
	store := apptest.NewStore()
	app := buildItemApp(&apptest.ItemRepo{S: store}, store)

	req := httptest.NewRequest(http.MethodGet, "/items/no-es-un-uuid", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	out := decodeError(t, resp)
	assert.Equal(t, "VALIDATION", out.Code)
}

func TestParamUUID_BienFormadoLlegaAlCasoDeUso(t *testing.T) {
	store := apptest.NewStore()
	app := buildItemApp(&apptest.ItemRepo{S: store}, store)

	req := httptest.NewRequest(http.MethodGet, "/items/6f1f3f1e-2a6b-4c8e-9f5d-0b3a2c1d4e5f", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	out := decodeError(t, resp)
	assert.Equal(t, "NOT_FOUND", out.Code)
}

// ─────────────────────────────────────────────────────────────
// Errores no manejados
// ─────────────────────────────────────────────────────────────

func TestRespondError_InternoNoFiltraDetalles(t *testing.T) {
	store := apptest.NewStore()
	app := buildItemApp(itemsConFallo{ItemRepository: &apptest.ItemRepo{S: store}}, store)

	req := httptest.NewRequest(http.MethodGet, "/items/6f1f3f1e-2a6b-4c8e-9f5d-0b3a2c1d4e5f", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	out := decodeError(t, resp)
	assert.Equal(t, "INTERNAL", out.Code)
	assert.Equal(t, "error interno", out.Message)
	assert.NotContains(t, out.Message, apptest.ErrInjected.Error())
}
