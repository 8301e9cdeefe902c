package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventario/movimientos.
// El usuario actuante sale del token, nunca del body.
type RegisterMovementRequest struct {
	MovementType      string          `json:"tipoMovimiento"`
	ElementType       string          `json:"tipoElemento"`
	ElementID         string          `json:"elementoId"`
	LotID             *string         `json:"loteId,omitempty"`
	Quantity          decimal.Decimal `json:"cantidad"`
	DocumentReference *string         `json:"documentoReferencia,omitempty"`
	ReferenceID       *string         `json:"referenciaId,omitempty"`
	Reason            *string         `json:"motivo,omitempty"`
	Notes             *string         `json:"notas,omitempty"`
	IdempotencyKey    *string         `json:"claveIdempotencia,omitempty"`
}

// MovementResponse asiento del libro de movimientos.
type MovementResponse struct {
	ID                string          `json:"id"`
	MovementType      string          `json:"tipoMovimiento"`
	ElementType       string          `json:"tipoElemento"`
	ElementID         string          `json:"elementoId"`
	LotID             *string         `json:"loteId,omitempty"`
	Quantity          decimal.Decimal `json:"cantidad"`
	UnitMeasure       string          `json:"unidadMedida"`
	DocumentReference *string         `json:"documentoReferencia,omitempty"`
	ReferenceID       *string         `json:"referenciaId,omitempty"`
	Reason            *string         `json:"motivo,omitempty"`
	UserID            string          `json:"usuarioId"`
	Notes             *string         `json:"notas,omitempty"`
	Date              time.Time       `json:"fecha"`
}

// MovementListResponse página de movimientos.
type MovementListResponse struct {
	Data       []MovementResponse `json:"data"`
	Pagination Pagination         `json:"pagination"`
}

// MovementFilterRequest filtros de consulta del libro.
type MovementFilterRequest struct {
	DateFrom          *time.Time `query:"fechaDesde"`
	DateTo            *time.Time `query:"fechaHasta"`
	MovementType      string     `query:"tipoMovimiento"`
	ElementType       string     `query:"tipoElemento"`
	ElementID         string     `query:"elementoId"`
	LotID             string     `query:"loteId"`
	UserID            string     `query:"usuarioId"`
	DocumentReference string     `query:"documentoReferencia"`
	PageRequest
}

// MovementCountDTO conteo agrupado para el reporte.
type MovementCountDTO struct {
	Key   string `json:"clave"`
	Count int64  `json:"cantidad"`
}

// MovementReportResponse resumen agregado del libro.
type MovementReportResponse struct {
	TotalEntries        int64              `json:"totalEntradas"`
	TotalExits          int64              `json:"totalSalidas"`
	TotalPositiveAdjust int64              `json:"totalAjustesPositivos"`
	TotalNegativeAdjust int64              `json:"totalAjustesNegativos"`
	ByElementType       []MovementCountDTO `json:"movimientosPorTipoElemento"`
	ByUser              []MovementCountDTO `json:"movimientosPorUsuario"`
	ByDate              []MovementCountDTO `json:"movimientosPorFecha"`
}

// DetailedMovementResponse movimiento enriquecido con nombres y códigos.
type DetailedMovementResponse struct {
	MovementResponse
	ElementName string `json:"nombreElemento,omitempty"`
	ElementCode string `json:"codigoElemento,omitempty"`
	LotCode     string `json:"codigoLote,omitempty"`
	UserName    string `json:"nombreUsuario,omitempty"`
}

// DetailedMovementListResponse página de movimientos detallados.
type DetailedMovementListResponse struct {
	Data       []DetailedMovementResponse `json:"data"`
	Pagination Pagination                 `json:"pagination"`
}

// VerifyStockResponse resultado de la verificación de consistencia de un ítem.
type VerifyStockResponse struct {
	ElementType  string          `json:"tipoElemento"`
	ElementID    string          `json:"elementoId"`
	CurrentStock decimal.Decimal `json:"stockActual"`
	SumAvailable decimal.Decimal `json:"sumaDisponible"`
	Difference   decimal.Decimal `json:"diferencia"`
	Consistent   bool            `json:"consistente"`
}
