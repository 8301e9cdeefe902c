package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain"
	domaininv "github.com/cerveceria-ancestral/inventario-api/internal/domain/inventory"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/entity"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/repository"
)

// RegisterMovementUseCase es la única ruta de escritura de stock: registra
// movimientos (Entrada, Salida, Ajuste Positivo, Ajuste Negativo) de forma
// transaccional con bloqueo de fila (SELECT FOR UPDATE) sobre ítem y lotes.
type RegisterMovementUseCase struct {
	txRunner TxRunner
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(txRunner TxRunner) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{txRunner: txRunner}
}

// MovementInput entrada para registrar un movimiento. UserID es obligatorio:
// no existe usuario por defecto. Una Salida o Ajuste Negativo sin LotID se
// asigna por FIFO de caducidad sobre los lotes disponibles del ítem.
type MovementInput struct {
	MovementType      string
	ElementType       string
	ElementID         string
	LotID             *string
	Quantity          decimal.Decimal
	DocumentReference *string
	ReferenceID       *string
	Reason            *string
	Notes             *string
	IdempotencyKey    *string
	UserID            string
}

// RegisterMovement valida la entrada, abre una transacción y aplica el
// movimiento: bloquea el ítem, resuelve el lote (fijado o por FIFO), ajusta
// cantidades y deja el asiento inmutable en el libro. Devuelve los asientos
// creados: uno por lote extraído cuando la asignación FIFO reparte entre
// varios lotes, uno solo en el resto de casos.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInput) ([]*entity.Movement, error) {
	if !entity.ValidMovementType(input.MovementType) {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidElementType(input.ElementType) {
		return nil, domain.ErrInvalidInput
	}
	if input.ElementID == "" || input.UserID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !input.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var created []*entity.Movement

	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		items, err := repos.ItemsFor(input.ElementType)
		if err != nil {
			return err
		}
		lots, err := repos.LotsFor(input.ElementType)
		if err != nil {
			return err
		}

		// Bloquea la fila del ítem para serializar movimientos concurrentes.
		item, err := items.GetForUpdate(ctx, input.ElementID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		switch {
		case input.LotID != nil:
			created, err = uc.applyWithLot(ctx, items, lots, repos.Movements, item, input, now)
		case entity.IsOutbound(input.MovementType):
			created, err = uc.applyFIFO(ctx, items, lots, repos.Movements, item, input, now)
		default:
			created, err = uc.applyItemOnly(ctx, items, repos.Movements, item, input, now)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// applyWithLot aplica un movimiento fijado a un lote concreto.
func (uc *RegisterMovementUseCase) applyWithLot(
	ctx context.Context,
	items repository.ItemRepository,
	lots repository.LotRepository,
	movements repository.MovementRepository,
	item *entity.Item,
	input MovementInput,
	now time.Time,
) ([]*entity.Movement, error) {
	lot, err := lots.GetForUpdate(ctx, *input.LotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	if lot.ItemID != input.ElementID {
		// El lote no pertenece al elemento referido.
		return nil, domain.ErrInvalidInput
	}
	if lot.Status == entity.LotStatusBlocked {
		// Un lote Bloqueado está fuera de circulación y no cuenta en la suma
		// de disponibles; moverlo rompería stock_actual == Σ disponible.
		return nil, domain.ErrConflict
	}

	if entity.IsOutbound(input.MovementType) {
		if lot.QuantityAvailable.LessThan(input.Quantity) {
			return nil, domain.ErrInsufficientStock
		}
		newAvail := lot.QuantityAvailable.Sub(input.Quantity)
		status := lot.Status
		if newAvail.IsZero() {
			status = entity.LotStatusDepleted
		}
		if err := lots.SetAvailable(ctx, lot.ID, newAvail, status); err != nil {
			return nil, err
		}
		if err := uc.adjustItemStock(ctx, items, item, input.Quantity.Neg(), now); err != nil {
			return nil, err
		}
	} else {
		// La cantidad disponible nunca puede superar la cantidad recibida del lote.
		newAvail := lot.QuantityAvailable.Add(input.Quantity)
		if newAvail.GreaterThan(lot.Quantity) {
			return nil, domain.ErrInvalidInput
		}
		status := lot.Status
		if status == entity.LotStatusDepleted && newAvail.GreaterThan(decimal.Zero) {
			status = entity.LotStatusAvailable
		}
		if err := lots.SetAvailable(ctx, lot.ID, newAvail, status); err != nil {
			return nil, err
		}
		if err := uc.adjustItemStock(ctx, items, item, input.Quantity, now); err != nil {
			return nil, err
		}
	}

	mov := uc.buildMovement(item, input, input.Quantity, &lot.ID, input.IdempotencyKey, now)
	if err := movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return []*entity.Movement{mov}, nil
}

// applyFIFO asigna una salida sin lote fijado repartiéndola por FIFO de
// caducidad: cada lote extraído genera su propio asiento en el libro y la suma
// de los asientos es la cantidad solicitada. Todo-o-nada: si el disponible
// total no alcanza, no se muta nada.
func (uc *RegisterMovementUseCase) applyFIFO(
	ctx context.Context,
	items repository.ItemRepository,
	lots repository.LotRepository,
	movements repository.MovementRepository,
	item *entity.Item,
	input MovementInput,
	now time.Time,
) ([]*entity.Movement, error) {
	if item.CurrentStock.LessThan(input.Quantity) {
		return nil, domain.ErrInsufficientStock
	}

	available, err := lots.ListAvailableForUpdate(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	plan, err := domaininv.PlanFIFO(available, input.Quantity, now)
	if err != nil {
		return nil, err
	}

	var created []*entity.Movement
	for i, draw := range plan {
		newAvail := draw.Lot.QuantityAvailable.Sub(draw.Quantity)
		status := draw.Lot.Status
		if newAvail.IsZero() {
			status = entity.LotStatusDepleted
		}
		if err := lots.SetAvailable(ctx, draw.Lot.ID, newAvail, status); err != nil {
			return nil, err
		}
		// La clave de idempotencia es única: solo va en el primer asiento del reparto.
		var key *string
		if i == 0 {
			key = input.IdempotencyKey
		}
		mov := uc.buildMovement(item, input, draw.Quantity, &draw.Lot.ID, key, now)
		if err := movements.Create(ctx, mov); err != nil {
			return nil, err
		}
		created = append(created, mov)
	}

	if err := uc.adjustItemStock(ctx, items, item, input.Quantity.Neg(), now); err != nil {
		return nil, err
	}
	return created, nil
}

// applyItemOnly aplica una Entrada o Ajuste Positivo sin lote: solo suma el
// stock agregado del ítem.
func (uc *RegisterMovementUseCase) applyItemOnly(
	ctx context.Context,
	items repository.ItemRepository,
	movements repository.MovementRepository,
	item *entity.Item,
	input MovementInput,
	now time.Time,
) ([]*entity.Movement, error) {
	if err := uc.adjustItemStock(ctx, items, item, input.Quantity, now); err != nil {
		return nil, err
	}
	mov := uc.buildMovement(item, input, input.Quantity, nil, input.IdempotencyKey, now)
	if err := movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return []*entity.Movement{mov}, nil
}

// adjustItemStock aplica el delta al stock agregado. Un resultado negativo se
// rechaza para ambos tipos de elemento: política uniforme, sin recorte a cero.
func (uc *RegisterMovementUseCase) adjustItemStock(
	ctx context.Context,
	items repository.ItemRepository,
	item *entity.Item,
	delta decimal.Decimal,
	now time.Time,
) error {
	newStock := item.CurrentStock.Add(delta)
	if newStock.IsNegative() {
		return domain.ErrInsufficientStock
	}
	item.CurrentStock = newStock
	item.UpdatedAt = now
	return items.SetStock(ctx, item.ID, newStock)
}

func (uc *RegisterMovementUseCase) buildMovement(
	item *entity.Item,
	input MovementInput,
	quantity decimal.Decimal,
	lotID *string,
	idempotencyKey *string,
	now time.Time,
) *entity.Movement {
	return &entity.Movement{
		ID:                uuid.New().String(),
		MovementType:      input.MovementType,
		ElementType:       input.ElementType,
		ElementID:         item.ID,
		LotID:             lotID,
		Quantity:          quantity,
		UnitMeasure:       item.UnitMeasure,
		DocumentReference: input.DocumentReference,
		ReferenceID:       input.ReferenceID,
		Reason:            input.Reason,
		UserID:            input.UserID,
		Notes:             input.Notes,
		IdempotencyKey:    idempotencyKey,
		Date:              now,
		CreatedAt:         now,
	}
}
