package repository

import (
	"context"
	"time"

	"github.com/cerveceria-ancestral/inventario-api/internal/domain/entity"
)

// MovementFilter filtros de consulta del libro de movimientos.
type MovementFilter struct {
	DateFrom          *time.Time
	DateTo            *time.Time
	MovementType      string
	ElementType       string
	ElementID         string
	LotID             string
	UserID            string
	DocumentReference string
	Page              int
	Limit             int
}

// MovementCount conteo agrupado para reportes.
type MovementCount struct {
	Key   string
	Count int64
}

// MovementReport resumen agregado del libro de movimientos.
type MovementReport struct {
	TotalEntries        int64
	TotalExits          int64
	TotalPositiveAdjust int64
	TotalNegativeAdjust int64
	ByElementType       []MovementCount
	ByUser              []MovementCount
	ByDate              []MovementCount
}

// MovementRepository define el puerto de persistencia del libro de movimientos.
// El libro es append-only: no existen operaciones de actualización ni borrado.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// List devuelve la página solicitada (más recientes primero) y el total de filas.
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, int64, error)
	CountByLot(ctx context.Context, lotID string) (int64, error)
	CountByElement(ctx context.Context, elementType, elementID string) (int64, error)
	Report(ctx context.Context, filter MovementFilter) (*MovementReport, error)
}
