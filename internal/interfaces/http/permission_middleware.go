package http

import (
	"context"
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/cerveceria-ancestral/inventario-api/internal/application/dto"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/entity"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/repository"
)

// PermissionCache memoriza los permisos por usuario para no consultar la DB en
// cada request. El alcance es la instancia, no un mapa global de paquete, y la
// invalidación es explícita.
type PermissionCache struct {
	mu    sync.RWMutex
	users repository.UserRepository
	cache map[string]map[string]bool
}

// NewPermissionCache construye la cache sobre el repositorio de usuarios.
func NewPermissionCache(users repository.UserRepository) *PermissionCache {
	return &PermissionCache{
		users: users,
		cache: make(map[string]map[string]bool),
	}
}

// Has consulta si el usuario tiene el permiso, cargando de DB la primera vez.
func (p *PermissionCache) Has(ctx context.Context, userID, permission string) (bool, error) {
	p.mu.RLock()
	perms, ok := p.cache[userID]
	p.mu.RUnlock()
	if !ok {
		names, err := p.users.GetPermissions(ctx, userID)
		if err != nil {
			return false, err
		}
		perms = make(map[string]bool, len(names))
		for _, n := range names {
			perms[n] = true
		}
		p.mu.Lock()
		p.cache[userID] = perms
		p.mu.Unlock()
	}
	return perms[permission], nil
}

// Invalidate descarta los permisos cacheados de un usuario (o de todos si
// userID es vacío). Llamar tras modificar usuario_permisos.
func (p *PermissionCache) Invalidate(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if userID == "" {
		p.cache = make(map[string]map[string]bool)
		return
	}
	delete(p.cache, userID)
}

// RequirePermission exige el permiso dado. El rol Administrador pasa sin
// consulta. Usar después de AuthMiddleware.
func RequirePermission(cache *PermissionCache, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetRole(c) == entity.RoleAdmin {
			return c.Next()
		}
		userID := GetUserID(c)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
		}
		ok, err := cache.Has(c.Context(), userID, permission)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "permiso insuficiente"})
		}
		return c.Next()
	}
}

// RequireRole exige uno de los roles dados. Administrador siempre pasa.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "token sin rol"})
		}
		if role == entity.RoleAdmin {
			return c.Next()
		}
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol insuficiente"})
	}
}
