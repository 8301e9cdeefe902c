package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest body para crear una materia prima o producto terminado.
// No acepta stock inicial: el stock agregado siempre inicia en 0 y solo cambia
// vía movimientos.
type CreateItemRequest struct {
	Code        string          `json:"codigo"`
	Name        string          `json:"nombre"`
	UnitMeasure string          `json:"unidadMedida"`
	MinStock    decimal.Decimal `json:"stockMinimo"`
	Location    string          `json:"ubicacionFisica,omitempty"`
	Notes       string          `json:"notas,omitempty"`
}

// UpdateItemRequest patch de ítem. No incluye codigo ni stockActual:
// esos campos no son editables externamente.
type UpdateItemRequest struct {
	Name        *string          `json:"nombre,omitempty"`
	UnitMeasure *string          `json:"unidadMedida,omitempty"`
	MinStock    *decimal.Decimal `json:"stockMinimo,omitempty"`
	Location    *string          `json:"ubicacionFisica,omitempty"`
	Status      *string          `json:"estado,omitempty"`
	Notes       *string          `json:"notas,omitempty"`
}

// ItemResponse representación de un ítem en respuestas.
type ItemResponse struct {
	ID           string          `json:"id"`
	Code         string          `json:"codigo"`
	Name         string          `json:"nombre"`
	UnitMeasure  string          `json:"unidadMedida"`
	MinStock     decimal.Decimal `json:"stockMinimo"`
	CurrentStock decimal.Decimal `json:"stockActual"`
	Location     string          `json:"ubicacionFisica,omitempty"`
	Status       string          `json:"estado"`
	Notes        string          `json:"notas,omitempty"`
	CreatedAt    time.Time       `json:"fechaCreacion"`
	UpdatedAt    time.Time       `json:"fechaModificacion"`
}

// ItemFilterRequest filtros de listado de ítems.
type ItemFilterRequest struct {
	Code     string `query:"codigo"`
	Name     string `query:"nombre"`
	Status   string `query:"estado"`
	LowStock bool   `query:"stockBajo"`
}
