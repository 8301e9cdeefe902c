package entity

import "time"

// Roles de usuario.
const (
	RoleAdmin     = "Administrador"
	RoleWarehouse = "Bodeguero"
	RoleOperator  = "Operario"
)

// User representa un usuario del sistema (colaborador de autenticación,
// fuera del núcleo del libro de inventario).
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string
	Status       string // active | inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
