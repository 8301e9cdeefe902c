package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateLotRequest body para crear un lote. La creación del lote es una Entrada:
// registra el lote, suma el stock del ítem y deja su asiento en el libro.
// Si cantidadDisponible no viene, se asume igual a cantidad.
type CreateLotRequest struct {
	ItemID            string           `json:"elementoId"`
	LotCode           string           `json:"codigoLote"`
	ReceivedDate      time.Time        `json:"fechaRecepcion"`
	ProductionDate    *time.Time       `json:"fechaProduccion,omitempty"`
	ExpiryDate        *time.Time       `json:"fechaCaducidad,omitempty"`
	Quantity          decimal.Decimal  `json:"cantidad"`
	QuantityAvailable *decimal.Decimal `json:"cantidadDisponible,omitempty"`
	DocumentReference *string          `json:"documentoReferencia,omitempty"`
	ReferenceID       *string          `json:"referenciaId,omitempty"`
	Notes             string           `json:"notas,omitempty"`
}

// UpdateLotRequest patch de lote. Las cantidades no son editables aquí:
// solo cambian vía movimientos de inventario.
type UpdateLotRequest struct {
	ProductionDate *time.Time `json:"fechaProduccion,omitempty"`
	ExpiryDate     *time.Time `json:"fechaCaducidad,omitempty"`
	Status         *string    `json:"estado,omitempty"`
	Notes          *string    `json:"notas,omitempty"`
}

// LotResponse representación de un lote en respuestas.
type LotResponse struct {
	ID                string          `json:"id"`
	ItemID            string          `json:"elementoId"`
	LotCode           string          `json:"codigoLote"`
	ReceivedDate      time.Time       `json:"fechaRecepcion"`
	ProductionDate    *time.Time      `json:"fechaProduccion,omitempty"`
	ExpiryDate        *time.Time      `json:"fechaCaducidad,omitempty"`
	Quantity          decimal.Decimal `json:"cantidad"`
	QuantityAvailable decimal.Decimal `json:"cantidadDisponible"`
	Status            string          `json:"estado"`
	Notes             string          `json:"notas,omitempty"`
	CreatedAt         time.Time       `json:"fechaCreacion"`
}

// NearExpiryLotResponse lote próximo a caducar junto con su ítem.
type NearExpiryLotResponse struct {
	LotResponse
	ItemCode     string `json:"codigoElemento"`
	ItemName     string `json:"nombreElemento"`
	UnitMeasure  string `json:"unidadMedida"`
	DaysToExpiry int    `json:"diasParaCaducar"`
}
