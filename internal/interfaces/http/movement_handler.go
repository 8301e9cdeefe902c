package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cerveceria-ancestral/inventario-api/internal/application/dto"
	"github.com/cerveceria-ancestral/inventario-api/internal/application/inventory"
	"github.com/cerveceria-ancestral/inventario-api/internal/application/usecase"
)

// MovementHandler maneja el libro de movimientos: el registro (única vía de
// escritura de stock) y las consultas.
type MovementHandler struct {
	register *inventory.RegisterMovementUseCase
	queries  *usecase.MovementQueryUseCase
	metrics  *Metrics
}

// NewMovementHandler construye el handler.
func NewMovementHandler(register *inventory.RegisterMovementUseCase, queries *usecase.MovementQueryUseCase, metrics *Metrics) *MovementHandler {
	return &MovementHandler{register: register, queries: queries, metrics: metrics}
}

// Register registra un movimiento. El usuario actuante sale del token.
// Una Salida sin lote dispara la asignación FIFO y puede producir varios
// asientos (uno por lote consumido).
func (h *MovementHandler) Register(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movements, err := h.register.RegisterMovementFromRequest(c.Context(), userID, in)
	if err != nil {
		return respondError(c, err)
	}
	if h.metrics != nil {
		h.metrics.MovementRegistered(in.MovementType)
	}
	ids := make([]string, len(movements))
	for i, m := range movements {
		ids[i] = m.ID
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "movimiento registrado",
		"movimientos": ids,
	})
}

// List devuelve una página del libro con filtros opcionales.
func (h *MovementHandler) List(c *fiber.Ctx) error {
	in, err := parseMovementFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	out, err := h.queries.List(c.Context(), *in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID obtiene un asiento por ID.
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.queries.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListByElement devuelve los movimientos de un elemento concreto.
func (h *MovementHandler) ListByElement(c *fiber.Ctx) error {
	in, err := parseMovementFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	elementID, err := paramUUID(c, "elementoId")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.queries.ListByElementType(c.Context(), c.Params("tipoElemento"), elementID, *in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Detailed devuelve los movimientos enriquecidos con nombres y códigos.
func (h *MovementHandler) Detailed(c *fiber.Ctx) error {
	in, err := parseMovementFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	out, err := h.queries.Detailed(c.Context(), *in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Report devuelve el resumen agregado del libro bajo el filtro.
func (h *MovementHandler) Report(c *fiber.Ctx) error {
	in, err := parseMovementFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	out, err := h.queries.Report(c.Context(), *in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Export descarga el listado detallado como XLSX.
func (h *MovementHandler) Export(c *fiber.Ctx) error {
	in, err := parseMovementFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	data, err := h.queries.ExportDetailed(c.Context(), *in)
	if err != nil {
		return respondError(c, err)
	}
	filename := fmt.Sprintf("movimientos_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Send(data)
}

// parseMovementFilter arma el filtro desde los query params; las fechas van en RFC3339.
func parseMovementFilter(c *fiber.Ctx) (*dto.MovementFilterRequest, error) {
	in := dto.MovementFilterRequest{
		MovementType:      c.Query("tipoMovimiento"),
		ElementType:       c.Query("tipoElemento"),
		ElementID:         c.Query("elementoId"),
		LotID:             c.Query("loteId"),
		UserID:            c.Query("usuarioId"),
		DocumentReference: c.Query("documentoReferencia"),
	}
	in.Page = c.QueryInt("page")
	in.Limit = c.QueryInt("limit")
	if v := c.Query("fechaDesde"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("fechaDesde inválida (RFC3339)")
		}
		in.DateFrom = &t
	}
	if v := c.Query("fechaHasta"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("fechaHasta inválida (RFC3339)")
		}
		in.DateTo = &t
	}
	return &in, nil
}
