package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un lote.
const (
	LotStatusAvailable = "Disponible"
	LotStatusDepleted  = "Agotado"
	LotStatusExpired   = "Caducado"
	LotStatusReserved  = "Reservado"
	LotStatusBlocked   = "Bloqueado"
)

// Lot representa un lote trazable de una materia prima o producto terminado.
// Quantity es la cantidad total recibida y es inmutable tras la creación;
// QuantityAvailable solo cambia vía movimientos de inventario y cumple
// 0 <= QuantityAvailable <= Quantity.
type Lot struct {
	ID                string
	ItemID            string // ítem dueño, inmutable
	LotCode           string // único por ítem
	ReceivedDate      time.Time
	ProductionDate    *time.Time
	ExpiryDate        *time.Time
	Quantity          decimal.Decimal
	QuantityAvailable decimal.Decimal
	Status            string
	Notes             string
	CreatedAt         time.Time
}

// Expired indica si el lote ya pasó su fecha de caducidad a la fecha dada.
// Un lote caducado queda excluido de la selección FIFO aunque su estado
// almacenado siga siendo Disponible.
func (l *Lot) Expired(now time.Time) bool {
	if l.ExpiryDate == nil {
		return false
	}
	return l.ExpiryDate.Before(now)
}
