package inventory

import (
	"context"

	"github.com/cerveceria-ancestral/inventario-api/internal/application/dto"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/entity"
)

// RegisterMovementFromRequest adapta el request HTTP al caso de uso
// RegisterMovement. El usuario actuante viene del token, nunca del body.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, userID string, in dto.RegisterMovementRequest) ([]*entity.Movement, error) {
	input := MovementInput{
		MovementType:      in.MovementType,
		ElementType:       in.ElementType,
		ElementID:         in.ElementID,
		LotID:             in.LotID,
		Quantity:          in.Quantity,
		DocumentReference: in.DocumentReference,
		ReferenceID:       in.ReferenceID,
		Reason:            in.Reason,
		Notes:             in.Notes,
		IdempotencyKey:    in.IdempotencyKey,
		UserID:            userID,
	}
	return uc.RegisterMovement(ctx, input)
}
