package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cerveceria-ancestral/inventario-api/internal/application/dto"
	"github.com/cerveceria-ancestral/inventario-api/internal/application/usecase"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/repository"
)

// LotHandler maneja el CRUD de lotes. Igual que ItemHandler, una instancia
// por tipo de elemento.
type LotHandler struct {
	uc *usecase.LotUseCase
}

// NewLotHandler construye el handler.
func NewLotHandler(uc *usecase.LotUseCase) *LotHandler {
	return &LotHandler{uc: uc}
}

// Create crea un lote. Es una Entrada: suma stock y deja asiento en el libro.
func (h *LotHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLotRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List lista lotes con filtros opcionales.
func (h *LotHandler) List(c *fiber.Ctx) error {
	filter := repository.LotFilter{
		ItemID:  c.Query("elementoId"),
		LotCode: c.Query("codigoLote"),
		Status:  c.Query("estado"),
	}
	if v := c.Query("caducidadDesde"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "caducidadDesde inválida (RFC3339)"})
		}
		filter.ExpiryFrom = &t
	}
	if v := c.Query("caducidadHasta"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "caducidadHasta inválida (RFC3339)"})
		}
		filter.ExpiryTo = &t
	}
	out, err := h.uc.List(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListByItem lista los lotes de un ítem en orden FIFO, opcionalmente por estado.
func (h *LotHandler) ListByItem(c *fiber.Ctx) error {
	itemID, err := paramUUID(c, "elementoId")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.ListByItem(c.Context(), itemID, c.Query("estado"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID obtiene un lote por ID.
func (h *LotHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update aplica un patch al lote (fechas, estado, notas; nunca cantidades).
func (h *LotHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateLotRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Update(c.Context(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete elimina un lote: si el libro lo referencia más allá de su asiento de
// creación pasa a Bloqueado; si no, se revierte el disponible restante y se
// borra físicamente.
func (h *LotHandler) Delete(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.uc.Delete(c.Context(), GetUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
