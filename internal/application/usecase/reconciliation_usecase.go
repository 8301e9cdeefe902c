package usecase

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/cerveceria-ancestral/inventario-api/internal/application/dto"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/entity"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/repository"
)

// LowStockItem ítem bajo mínimo con su tipo y déficit.
type LowStockItem struct {
	dto.ItemResponse
	ElementType string          `json:"tipoElemento"`
	Deficit     decimal.Decimal `json:"deficit"`
}

// ReconciliationUseCase consultas de consistencia y alertas de stock:
// stock bajo, lotes por caducar y verificación stock agregado vs lotes.
// Solo lectura; una inconsistencia detectada jamás se corrige en silencio.
type ReconciliationUseCase struct {
	rawItems      repository.ItemRepository
	finishedItems repository.ItemRepository
	rawLots       repository.LotRepository
	finishedLots  repository.LotRepository
}

// NewReconciliationUseCase construye el caso de uso.
func NewReconciliationUseCase(
	rawItems, finishedItems repository.ItemRepository,
	rawLots, finishedLots repository.LotRepository,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		rawItems:      rawItems,
		finishedItems: finishedItems,
		rawLots:       rawLots,
		finishedLots:  finishedLots,
	}
}

// LowStock devuelve los ítems activos con stock_actual <= stock_minimo de
// ambos registros, ordenados por déficit descendente.
func (uc *ReconciliationUseCase) LowStock(ctx context.Context) ([]LowStockItem, error) {
	var out []LowStockItem
	for _, src := range []struct {
		elementType string
		repo        repository.ItemRepository
	}{
		{entity.ElementRawMaterial, uc.rawItems},
		{entity.ElementFinishedGood, uc.finishedItems},
	} {
		items, err := src.repo.ListLowStock(ctx)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			out = append(out, LowStockItem{
				ItemResponse: *toItemResponse(it),
				ElementType:  src.elementType,
				Deficit:      it.MinStock.Sub(it.CurrentStock),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Deficit.GreaterThan(out[j].Deficit)
	})
	return out, nil
}

// NearExpiry devuelve los lotes con caducidad dentro de [hoy, hoy+days] que
// aún tienen cantidad disponible, de ambos registros, por caducidad ascendente.
// Lotes ya caducados quedan excluidos.
func (uc *ReconciliationUseCase) NearExpiry(ctx context.Context, days int) ([]dto.NearExpiryLotResponse, error) {
	if days <= 0 {
		return nil, domain.ErrInvalidInput
	}
	var out []dto.NearExpiryLotResponse
	for _, lots := range []repository.LotRepository{uc.rawLots, uc.finishedLots} {
		rows, err := lots.ListNearExpiry(ctx, days)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			out = append(out, dto.NearExpiryLotResponse{
				LotResponse:  *toLotResponse(&r.Lot),
				ItemCode:     r.ItemCode,
				ItemName:     r.ItemName,
				UnitMeasure:  r.UnitMeasure,
				DaysToExpiry: r.DaysToExpiry,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExpiryDate.Before(*out[j].ExpiryDate)
	})
	return out, nil
}

// Verify recomputa la suma de cantidad_disponible sobre los lotes no
// bloqueados del ítem y la compara con su stock agregado. Una diferencia es un
// defecto de integridad que se reporta al operador; corregirla exige un
// movimiento explícito de reconciliación para que el libro siga siendo la
// historia causal completa.
func (uc *ReconciliationUseCase) Verify(ctx context.Context, elementType, itemID string) (*dto.VerifyStockResponse, error) {
	if !entity.ValidElementType(elementType) {
		return nil, domain.ErrInvalidInput
	}
	items := uc.rawItems
	lots := uc.rawLots
	if elementType == entity.ElementFinishedGood {
		items = uc.finishedItems
		lots = uc.finishedLots
	}
	item, err := items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	sum, err := lots.SumAvailableByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	diff := item.CurrentStock.Sub(sum)
	return &dto.VerifyStockResponse{
		ElementType:  elementType,
		ElementID:    itemID,
		CurrentStock: item.CurrentStock,
		SumAvailable: sum,
		Difference:   diff,
		Consistent:   diff.IsZero(),
	}, nil
}
