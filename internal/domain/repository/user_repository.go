package repository

import (
	"context"

	"github.com/cerveceria-ancestral/inventario-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para usuarios y sus permisos.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetPermissions devuelve los nombres de permisos concedidos al usuario.
	GetPermissions(ctx context.Context, userID string) ([]string, error)
}
