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

// LotUseCase casos de uso para lotes de un tipo de elemento. Crear un lote ES
// una Entrada: lote, stock del ítem y asiento del libro se escriben en la
// misma transacción.
type LotUseCase struct {
	elementType string
	lots        repository.LotRepository
	items       repository.ItemRepository
	txRunner    inventory.TxRunner
}

// NewLotUseCase construye el caso de uso para un tipo de elemento.
func NewLotUseCase(elementType string, lots repository.LotRepository, items repository.ItemRepository, txRunner inventory.TxRunner) *LotUseCase {
	return &LotUseCase{elementType: elementType, lots: lots, items: items, txRunner: txRunner}
}

// Create registra un lote nuevo. Si cantidadDisponible no viene se asume igual
// a cantidad; cero es válido y el lote nace Agotado, sin asiento en el libro.
// El usuario actuante es obligatorio: no hay usuario por defecto.
func (uc *LotUseCase) Create(ctx context.Context, userID string, in dto.CreateLotRequest) (*dto.LotResponse, error) {
	if userID == "" || in.ItemID == "" || in.LotCode == "" {
		return nil, domain.ErrInvalidInput
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	available := in.Quantity
	if in.QuantityAvailable != nil {
		available = *in.QuantityAvailable
		if available.IsNegative() || available.GreaterThan(in.Quantity) {
			return nil, domain.ErrInvalidInput
		}
	}
	received := in.ReceivedDate
	if received.IsZero() {
		received = time.Now()
	}

	now := time.Now()
	lot := &entity.Lot{
		ID:                uuid.New().String(),
		ItemID:            in.ItemID,
		LotCode:           in.LotCode,
		ReceivedDate:      received,
		ProductionDate:    in.ProductionDate,
		ExpiryDate:        in.ExpiryDate,
		Quantity:          in.Quantity,
		QuantityAvailable: available,
		Status:            initialLotStatus(available),
		Notes:             in.Notes,
		CreatedAt:         now,
	}

	err := uc.txRunner.Run(ctx, func(repos inventory.TxRepos) error {
		items, err := repos.ItemsFor(uc.elementType)
		if err != nil {
			return err
		}
		lots, err := repos.LotsFor(uc.elementType)
		if err != nil {
			return err
		}
		item, err := items.GetForUpdate(ctx, in.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if err := lots.Create(ctx, lot); err != nil {
			return err
		}
		if available.IsZero() {
			// Un lote que nace sin disponible no altera el stock ni deja
			// asiento: el libro solo registra movimientos de cantidad positiva.
			return nil
		}
		item.CurrentStock = item.CurrentStock.Add(available)
		if err := items.SetStock(ctx, item.ID, item.CurrentStock); err != nil {
			return err
		}
		reason := "Ingreso de nuevo lote"
		docRef := "RegistroManual"
		if in.DocumentReference != nil {
			docRef = *in.DocumentReference
		}
		mov := &entity.Movement{
			ID:                uuid.New().String(),
			MovementType:      entity.MovementTypeEntry,
			ElementType:       uc.elementType,
			ElementID:         item.ID,
			LotID:             &lot.ID,
			Quantity:          available,
			UnitMeasure:       item.UnitMeasure,
			DocumentReference: &docRef,
			ReferenceID:       in.ReferenceID,
			Reason:            &reason,
			UserID:            userID,
			Date:              now,
			CreatedAt:         now,
		}
		return repos.Movements.Create(ctx, mov)
	})
	if err != nil {
		return nil, err
	}
	return toLotResponse(lot), nil
}

// GetByID obtiene un lote por ID.
func (uc *LotUseCase) GetByID(ctx context.Context, id string) (*dto.LotResponse, error) {
	lot, err := uc.lots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	return toLotResponse(lot), nil
}

// ListByItem lista los lotes de un ítem, opcionalmente por estado. Con estado
// Disponible el orden es el contrato FIFO: caducidad ascendente (nulos al
// final) y luego recepción ascendente.
func (uc *LotUseCase) ListByItem(ctx context.Context, itemID, status string) ([]dto.LotResponse, error) {
	item, err := uc.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	lots, err := uc.lots.ListByItem(ctx, itemID, status)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, *toLotResponse(l))
	}
	return out, nil
}

// List lista lotes con filtros generales.
func (uc *LotUseCase) List(ctx context.Context, filter repository.LotFilter) ([]dto.LotResponse, error) {
	lots, err := uc.lots.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, *toLotResponse(l))
	}
	return out, nil
}

// Update aplica un patch al lote: fechas, estado y notas. Las cantidades son
// inmutables aquí; solo cambian vía movimientos.
func (uc *LotUseCase) Update(ctx context.Context, id string, in dto.UpdateLotRequest) (*dto.LotResponse, error) {
	lot, err := uc.lots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	if in.ProductionDate != nil {
		lot.ProductionDate = in.ProductionDate
	}
	if in.ExpiryDate != nil {
		lot.ExpiryDate = in.ExpiryDate
	}
	if in.Status != nil {
		switch *in.Status {
		case entity.LotStatusAvailable, entity.LotStatusDepleted, entity.LotStatusExpired,
			entity.LotStatusReserved, entity.LotStatusBlocked:
			lot.Status = *in.Status
		default:
			return nil, domain.ErrInvalidInput
		}
	}
	if in.Notes != nil {
		lot.Notes = *in.Notes
	}
	if err := uc.lots.Update(ctx, lot); err != nil {
		return nil, err
	}
	return toLotResponse(lot), nil
}

// Delete elimina un lote. Si el libro tiene más asientos que el de su creación
// el lote se bloquea (estado Bloqueado) para no perder la trazabilidad; si no,
// se revierte el disponible restante con un Ajuste Negativo y se elimina.
func (uc *LotUseCase) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(repos inventory.TxRepos) error {
		items, err := repos.ItemsFor(uc.elementType)
		if err != nil {
			return err
		}
		lots, err := repos.LotsFor(uc.elementType)
		if err != nil {
			return err
		}
		// Lectura sin bloqueo solo para conocer el ítem dueño: los bloqueos se
		// toman siempre en orden ítem -> lote, el mismo del registro de
		// movimientos, para que dos transacciones nunca se esperen en cruz.
		ref, err := lots.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if ref == nil {
			return domain.ErrNotFound
		}
		item, err := items.GetForUpdate(ctx, ref.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		lot, err := lots.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.ErrNotFound
		}
		movCount, err := repos.Movements.CountByLot(ctx, id)
		if err != nil {
			return err
		}
		if movCount > 1 {
			return lots.SetStatus(ctx, id, entity.LotStatusBlocked)
		}
		if lot.QuantityAvailable.GreaterThan(decimal.Zero) {
			newStock := item.CurrentStock.Sub(lot.QuantityAvailable)
			if newStock.IsNegative() {
				return domain.ErrInsufficientStock
			}
			if err := items.SetStock(ctx, item.ID, newStock); err != nil {
				return err
			}
			now := time.Now()
			reason := "Eliminación de lote"
			docRef := "EliminacionLote"
			mov := &entity.Movement{
				ID:                uuid.New().String(),
				MovementType:      entity.MovementTypeNegativeAdj,
				ElementType:       uc.elementType,
				ElementID:         item.ID,
				LotID:             nil, // el lote deja de existir; el asiento no lo referencia
				Quantity:          lot.QuantityAvailable,
				UnitMeasure:       item.UnitMeasure,
				DocumentReference: &docRef,
				Reason:            &reason,
				UserID:            userID,
				Date:              now,
				CreatedAt:         now,
			}
			if err := repos.Movements.Create(ctx, mov); err != nil {
				return err
			}
		}
		return lots.Delete(ctx, id)
	})
}

func initialLotStatus(available decimal.Decimal) string {
	if available.IsZero() {
		return entity.LotStatusDepleted
	}
	return entity.LotStatusAvailable
}

func toLotResponse(l *entity.Lot) *dto.LotResponse {
	return &dto.LotResponse{
		ID:                l.ID,
		ItemID:            l.ItemID,
		LotCode:           l.LotCode,
		ReceivedDate:      l.ReceivedDate,
		ProductionDate:    l.ProductionDate,
		ExpiryDate:        l.ExpiryDate,
		Quantity:          l.Quantity,
		QuantityAvailable: l.QuantityAvailable,
		Status:            l.Status,
		Notes:             l.Notes,
		CreatedAt:         l.CreatedAt,
	}
}
