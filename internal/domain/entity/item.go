package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de elemento de inventario. Son los valores persistidos en la tabla
// polimórfica de movimientos y en las rutas de la API.
const (
	ElementRawMaterial  = "MateriaPrima"
	ElementFinishedGood = "ProductoTerminado"
)

// Estados de un ítem de inventario.
const (
	ItemStatusActive   = "Activo"
	ItemStatusInactive = "Inactivo"
	ItemStatusDepleted = "Agotado"
)

// Item representa una materia prima o un producto terminado.
// CurrentStock es un valor derivado: siempre debe ser igual a la suma de
// CantidadDisponible de sus lotes no bloqueados, y solo cambia vía movimientos.
type Item struct {
	ID           string
	Code         string // código único, inmutable tras la creación
	Name         string
	UnitMeasure  string
	MinStock     decimal.Decimal
	CurrentStock decimal.Decimal
	Location     string
	Status       string
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidElementType verifica que el tipo de elemento sea uno de los soportados.
func ValidElementType(t string) bool {
	return t == ElementRawMaterial || t == ElementFinishedGood
}
