package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/entity"
)

// ItemFilter filtros de listado de ítems.
type ItemFilter struct {
	Code     string
	Name     string
	Status   string
	LowStock bool
}

// ItemRepository define el puerto de persistencia para materias primas o
// productos terminados (una instancia por tipo de elemento, misma forma).
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	GetByCode(ctx context.Context, code string) (*entity.Item, error)
	// GetForUpdate bloquea la fila del ítem (SELECT FOR UPDATE); usar dentro de transacciones.
	GetForUpdate(ctx context.Context, id string) (*entity.Item, error)
	// Update no modifica Code ni CurrentStock; esos campos no son editables externamente.
	Update(ctx context.Context, item *entity.Item) error
	// SetStock fija el stock agregado; solo el libro de movimientos lo invoca.
	SetStock(ctx context.Context, id string, stock decimal.Decimal) error
	SetStatus(ctx context.Context, id, status string) error
	List(ctx context.Context, filter ItemFilter) ([]*entity.Item, error)
	// ListLowStock devuelve ítems activos con stock_actual <= stock_minimo,
	// ordenados por déficit (stock_minimo - stock_actual) descendente.
	ListLowStock(ctx context.Context) ([]*entity.Item, error)
	Delete(ctx context.Context, id string) error
}
