package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cerveceria-ancestral/inventario-api/internal/application/apptest"
	"github.com/cerveceria-ancestral/inventario-api/internal/application/auth"
	"github.com/cerveceria-ancestral/inventario-api/internal/application/dto"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/entity"
	"github.com/cerveceria-ancestral/inventario-api/pkg/jwt"
)

var testJWTCfg = auth.JWTConfig{
	Secret:     "secreto-de-prueba",
	ExpMinutes: 30,
	Issuer:     "inventario-api",
}

func newAuthUC(t *testing.T, users ...entity.User) *auth.AuthUseCase {
	t.Helper()
	store := apptest.NewStore()
	for _, u := range users {
		store.AddUser(u)
	}
	return auth.NewAuthUseCase(&apptest.UserRepo{S: store}, testJWTCfg)
}

func usuario(t *testing.T, email, password, role, status string) entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return entity.User{
		ID:           "user-" + email,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    "Ana",
		LastName:     "Bodega",
		Role:         role,
		Status:       status,
	}
}

func TestLogin_Exitoso(t *testing.T) {
	uc := newAuthUC(t, usuario(t, "ana@cerveceria.co", "clave123", entity.RoleWarehouse, "active"))

	resp, err := uc.Login(context.Background(), dto.LoginRequest{
		Email:    "ana@cerveceria.co",
		Password: "clave123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "ana@cerveceria.co", resp.User.Email)

	userID, role, err := jwt.Parse(testJWTCfg.Secret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, userID)
	assert.Equal(t, entity.RoleWarehouse, role)
}

func TestLogin_PasswordIncorrecta(t *testing.T) {
	uc := newAuthUC(t, usuario(t, "ana@cerveceria.co", "clave123", entity.RoleWarehouse, "active"))

	_, err := uc.Login(context.Background(), dto.LoginRequest{
		Email:    "ana@cerveceria.co",
		Password: "otra-clave",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UsuarioNoExiste(t *testing.T) {
	uc := newAuthUC(t)

	_, err := uc.Login(context.Background(), dto.LoginRequest{
		Email:    "nadie@cerveceria.co",
		Password: "clave123",
	})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	uc := newAuthUC(t, usuario(t, "ana@cerveceria.co", "clave123", entity.RoleWarehouse, "inactive"))

	_, err := uc.Login(context.Background(), dto.LoginRequest{
		Email:    "ana@cerveceria.co",
		Password: "clave123",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLogin_CamposVacios(t *testing.T) {
	uc := newAuthUC(t)
	ctx := context.Background()

	_, err := uc.Login(ctx, dto.LoginRequest{Password: "clave123"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ana@cerveceria.co"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
