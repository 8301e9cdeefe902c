package inventory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/entity"
)

// Draw es la extracción planificada sobre un lote concreto.
type Draw struct {
	Lot      *entity.Lot
	Quantity decimal.Decimal
}

// PlanFIFO planifica una salida de `requested` unidades sobre los lotes dados,
// en orden FIFO por caducidad (nulos al final) y luego por fecha de recepción.
// Excluye lotes caducados, no disponibles o sin cantidad. Es todo-o-nada: si el
// total disponible no alcanza devuelve ErrInsufficientStock sin plan parcial.
// La función es pura; el caller aplica los decrementos dentro de su transacción.
func PlanFIFO(lots []*entity.Lot, requested decimal.Decimal, now time.Time) ([]Draw, error) {
	if !requested.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	eligible := make([]*entity.Lot, 0, len(lots))
	for _, l := range lots {
		if l.Status != entity.LotStatusAvailable {
			continue
		}
		if l.Expired(now) {
			continue
		}
		if !l.QuantityAvailable.GreaterThan(decimal.Zero) {
			continue
		}
		eligible = append(eligible, l)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		switch {
		case a.ExpiryDate == nil && b.ExpiryDate == nil:
			return a.ReceivedDate.Before(b.ReceivedDate)
		case a.ExpiryDate == nil:
			return false // nulos al final
		case b.ExpiryDate == nil:
			return true
		case a.ExpiryDate.Equal(*b.ExpiryDate):
			return a.ReceivedDate.Before(b.ReceivedDate)
		default:
			return a.ExpiryDate.Before(*b.ExpiryDate)
		}
	})

	// Pre-chequeo de disponibilidad total antes de planificar extracción alguna.
	total := decimal.Zero
	for _, l := range eligible {
		total = total.Add(l.QuantityAvailable)
	}
	if total.LessThan(requested) {
		return nil, domain.ErrInsufficientStock
	}

	var plan []Draw
	remaining := requested
	for _, l := range eligible {
		if !remaining.GreaterThan(decimal.Zero) {
			break
		}
		take := decimal.Min(l.QuantityAvailable, remaining)
		plan = append(plan, Draw{Lot: l, Quantity: take})
		remaining = remaining.Sub(take)
	}
	return plan, nil
}
