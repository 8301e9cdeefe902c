package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/entity"
)

// LotFilter filtros de listado de lotes.
type LotFilter struct {
	ItemID     string
	LotCode    string
	Status     string
	ExpiryFrom *time.Time
	ExpiryTo   *time.Time
}

// NearExpiryLot lote próximo a caducar, enriquecido con datos del ítem dueño.
type NearExpiryLot struct {
	Lot          entity.Lot
	ItemCode     string
	ItemName     string
	UnitMeasure  string
	DaysToExpiry int
}

// LotRepository define el puerto de persistencia para lotes (una instancia por
// tipo de elemento). El orden de ListAvailableForUpdate es el contrato FIFO que
// consume el motor de asignación.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	// GetForUpdate bloquea la fila del lote (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Lot, error)
	// ListAvailableForUpdate devuelve los lotes Disponibles no caducados del ítem
	// con cantidad_disponible > 0, ordenados por fecha_caducidad ASC NULLS LAST y
	// fecha_recepcion ASC, todos bloqueados FOR UPDATE.
	ListAvailableForUpdate(ctx context.Context, itemID string) ([]*entity.Lot, error)
	List(ctx context.Context, filter LotFilter) ([]*entity.Lot, error)
	ListByItem(ctx context.Context, itemID, status string) ([]*entity.Lot, error)
	// Update solo modifica fechas, estado y notas; cantidades solo cambian vía movimientos.
	Update(ctx context.Context, lot *entity.Lot) error
	// SetAvailable fija cantidad_disponible y estado; lo invoca el libro de movimientos.
	SetAvailable(ctx context.Context, id string, available decimal.Decimal, status string) error
	SetStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	CountByItem(ctx context.Context, itemID string) (int64, error)
	// SumAvailableByItem suma cantidad_disponible sobre lotes no bloqueados del ítem.
	SumAvailableByItem(ctx context.Context, itemID string) (decimal.Decimal, error)
	// ListNearExpiry devuelve lotes con caducidad en [hoy, hoy+days], disponibles y
	// con cantidad, ordenados por caducidad ascendente, junto con su ítem.
	ListNearExpiry(ctx context.Context, days int) ([]*NearExpiryLot, error)
}
