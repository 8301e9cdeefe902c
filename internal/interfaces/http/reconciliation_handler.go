package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cerveceria-ancestral/inventario-api/internal/application/usecase"
)

// ReconciliationHandler maneja las consultas de alertas y consistencia.
type ReconciliationHandler struct {
	uc *usecase.ReconciliationUseCase
}

// NewReconciliationHandler construye el handler.
func NewReconciliationHandler(uc *usecase.ReconciliationUseCase) *ReconciliationHandler {
	return &ReconciliationHandler{uc: uc}
}

// LowStock lista los ítems bajo stock mínimo, mayor déficit primero.
func (h *ReconciliationHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.uc.LowStock(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// NearExpiry lista los lotes que caducan dentro de ?dias= (por defecto 30).
func (h *ReconciliationHandler) NearExpiry(c *fiber.Ctx) error {
	days := c.QueryInt("dias", 30)
	out, err := h.uc.NearExpiry(c.Context(), days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Verify compara el stock agregado del ítem contra la suma de disponibles de
// sus lotes y reporta la diferencia.
func (h *ReconciliationHandler) Verify(c *fiber.Ctx) error {
	elementID, err := paramUUID(c, "elementoId")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Verify(c.Context(), c.Params("tipoElemento"), elementID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
