package inventory

import (
	"context"

	"github.com/cerveceria-ancestral/inventario-api/internal/domain"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/entity"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/repository"
)

// TxRepos agrupa los repositorios atados a una misma transacción de BD:
// los dos registros de ítems (por tipo de elemento), sus lotes y el libro
// de movimientos.
type TxRepos struct {
	RawItems      repository.ItemRepository
	FinishedItems repository.ItemRepository
	RawLots       repository.LotRepository
	FinishedLots  repository.LotRepository
	Movements     repository.MovementRepository
}

// ItemsFor devuelve el repositorio de ítems para el tipo de elemento.
func (r TxRepos) ItemsFor(elementType string) (repository.ItemRepository, error) {
	switch elementType {
	case entity.ElementRawMaterial:
		return r.RawItems, nil
	case entity.ElementFinishedGood:
		return r.FinishedItems, nil
	}
	return nil, domain.ErrInvalidInput
}

// LotsFor devuelve el repositorio de lotes para el tipo de elemento.
func (r TxRepos) LotsFor(elementType string) (repository.LotRepository, error) {
	switch elementType {
	case entity.ElementRawMaterial:
		return r.RawLots, nil
	case entity.ElementFinishedGood:
		return r.FinishedLots, nil
	}
	return nil, domain.ErrInvalidInput
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de
// inventario: o confirman todos los cambios (lotes, stock, libro) o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}
