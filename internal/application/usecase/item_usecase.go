package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/cerveceria-ancestral/inventario-api/internal/application/dto"
	"github.com/cerveceria-ancestral/inventario-api/internal/application/inventory"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/entity"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/repository"
)

// ItemUseCase casos de uso CRUD para un registro de ítems (materias primas o
// productos terminados según el tipo con que se construya). El stock agregado
// no se toca aquí: solo cambia vía el libro de movimientos.
type ItemUseCase struct {
	elementType string
	repo        repository.ItemRepository
	txRunner    inventory.TxRunner
}

// NewItemUseCase construye el caso de uso para un tipo de elemento.
func NewItemUseCase(elementType string, repo repository.ItemRepository, txRunner inventory.TxRunner) *ItemUseCase {
	return &ItemUseCase{elementType: elementType, repo: repo, txRunner: txRunner}
}

// Create crea un ítem. El código debe ser único; el stock inicia siempre en 0
// sin importar lo que mande el caller.
func (uc *ItemUseCase) Create(ctx context.Context, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if in.Code == "" || in.Name == "" || in.UnitMeasure == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.MinStock.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetByCode(ctx, in.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	item := &entity.Item{
		ID:           uuid.New().String(),
		Code:         in.Code,
		Name:         in.Name,
		UnitMeasure:  in.UnitMeasure,
		MinStock:     in.MinStock,
		CurrentStock: decimal.Zero,
		Location:     in.Location,
		Status:       entity.ItemStatusActive,
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// GetByID obtiene un ítem por ID.
func (uc *ItemUseCase) GetByID(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return toItemResponse(item), nil
}

// GetByCode obtiene un ítem por su código único.
func (uc *ItemUseCase) GetByCode(ctx context.Context, code string) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return toItemResponse(item), nil
}

// List lista ítems con filtros.
func (uc *ItemUseCase) List(ctx context.Context, in dto.ItemFilterRequest) ([]dto.ItemResponse, error) {
	items, err := uc.repo.List(ctx, repository.ItemFilter{
		Code:     in.Code,
		Name:     in.Name,
		Status:   in.Status,
		LowStock: in.LowStock,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, *toItemResponse(it))
	}
	return out, nil
}

// Update aplica un patch al ítem. Código y stock no son editables: el patch
// ni siquiera los transporta.
func (uc *ItemUseCase) Update(ctx context.Context, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		item.Name = *in.Name
	}
	if in.UnitMeasure != nil {
		item.UnitMeasure = *in.UnitMeasure
	}
	if in.MinStock != nil {
		if in.MinStock.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		item.MinStock = *in.MinStock
	}
	if in.Location != nil {
		item.Location = *in.Location
	}
	if in.Status != nil {
		switch *in.Status {
		case entity.ItemStatusActive, entity.ItemStatusInactive, entity.ItemStatusDepleted:
			item.Status = *in.Status
		default:
			return nil, domain.ErrInvalidInput
		}
	}
	if in.Notes != nil {
		item.Notes = *in.Notes
	}
	item.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// Delete elimina un ítem. La decisión se toma dentro de la misma transacción
// para no dejar referencias huérfanas: con lotes o asientos en el libro se
// desactiva (estado Inactivo); sin referencias se elimina de verdad.
func (uc *ItemUseCase) Delete(ctx context.Context, id string) error {
	return uc.txRunner.Run(ctx, func(repos inventory.TxRepos) error {
		items, err := repos.ItemsFor(uc.elementType)
		if err != nil {
			return err
		}
		lots, err := repos.LotsFor(uc.elementType)
		if err != nil {
			return err
		}
		item, err := items.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		lotCount, err := lots.CountByItem(ctx, id)
		if err != nil {
			return err
		}
		movCount, err := repos.Movements.CountByElement(ctx, uc.elementType, id)
		if err != nil {
			return err
		}
		if lotCount > 0 || movCount > 0 {
			return items.SetStatus(ctx, id, entity.ItemStatusInactive)
		}
		return items.Delete(ctx, id)
	})
}

func toItemResponse(it *entity.Item) *dto.ItemResponse {
	return &dto.ItemResponse{
		ID:           it.ID,
		Code:         it.Code,
		Name:         it.Name,
		UnitMeasure:  it.UnitMeasure,
		MinStock:     it.MinStock,
		CurrentStock: it.CurrentStock,
		Location:     it.Location,
		Status:       it.Status,
		Notes:        it.Notes,
		CreatedAt:    it.CreatedAt,
		UpdatedAt:    it.UpdatedAt,
	}
}
