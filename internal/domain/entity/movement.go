package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario. Cantidad siempre es una magnitud positiva;
// la dirección la determina el tipo.
const (
	MovementTypeEntry       = "Entrada"
	MovementTypeExit        = "Salida"
	MovementTypePositiveAdj = "Ajuste Positivo"
	MovementTypeNegativeAdj = "Ajuste Negativo"
)

// Movement es un registro inmutable del libro de movimientos: una vez insertado
// nunca se actualiza ni se elimina. Fecha la asigna el servidor.
type Movement struct {
	ID                string
	MovementType      string
	ElementType       string // MateriaPrima | ProductoTerminado
	ElementID         string
	LotID             *string
	Quantity          decimal.Decimal // > 0
	UnitMeasure       string
	DocumentReference *string
	ReferenceID       *string
	Reason            *string
	UserID            string
	Notes             *string
	IdempotencyKey    *string // clave opcional del caller; única si está presente
	Date              time.Time
	CreatedAt         time.Time
}

// ValidMovementType verifica que el tipo de movimiento sea uno de los soportados.
func ValidMovementType(t string) bool {
	switch t {
	case MovementTypeEntry, MovementTypeExit, MovementTypePositiveAdj, MovementTypeNegativeAdj:
		return true
	}
	return false
}

// IsOutbound indica si el movimiento resta stock (Salida o Ajuste Negativo).
func IsOutbound(t string) bool {
	return t == MovementTypeExit || t == MovementTypeNegativeAdj
}

// IsInbound indica si el movimiento suma stock (Entrada o Ajuste Positivo).
func IsInbound(t string) bool {
	return t == MovementTypeEntry || t == MovementTypePositiveAdj
}
