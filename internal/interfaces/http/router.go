package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cerveceria-ancestral/inventario-api/internal/application/auth"
	"github.com/cerveceria-ancestral/inventario-api/internal/application/inventory"
	"github.com/cerveceria-ancestral/inventario-api/internal/application/usecase"
)

// Permisos de la API.
const (
	PermInventoryRead   = "inventario:leer"
	PermInventoryWrite  = "inventario:escribir"
	PermInventoryDelete = "inventario:eliminar"
	PermReportsRead     = "reportes:leer"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RawItemUC        *usecase.ItemUseCase
	FinishedItemUC   *usecase.ItemUseCase
	RawLotUC         *usecase.LotUseCase
	FinishedLotUC    *usecase.LotUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	MovementQueries  *usecase.MovementQueryUseCase
	ReconciliationUC *usecase.ReconciliationUseCase
	AuthUC           *auth.AuthUseCase
	Permissions      *PermissionCache
	Metrics          *Metrics
	JWTSecret        string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)

	// Todo lo demás requiere Bearer Token
	inv := api.Group("/inventario", AuthMiddleware(deps.JWTSecret))

	canRead := RequirePermission(deps.Permissions, PermInventoryRead)
	canWrite := RequirePermission(deps.Permissions, PermInventoryWrite)
	canDelete := RequirePermission(deps.Permissions, PermInventoryDelete)
	canReport := RequirePermission(deps.Permissions, PermReportsRead)

	// Los lotes se registran antes que los ítems para que /lotes no caiga en /:id.
	registerLotRoutes(inv.Group("/materias-primas/lotes"), NewLotHandler(deps.RawLotUC), canRead, canWrite, canDelete)
	registerLotRoutes(inv.Group("/productos-terminados/lotes"), NewLotHandler(deps.FinishedLotUC), canRead, canWrite, canDelete)

	registerItemRoutes(inv.Group("/materias-primas"), NewItemHandler(deps.RawItemUC), canRead, canWrite, canDelete)
	registerItemRoutes(inv.Group("/productos-terminados"), NewItemHandler(deps.FinishedItemUC), canRead, canWrite, canDelete)

	// Libro de movimientos
	movements := inv.Group("/movimientos")
	movementHandler := NewMovementHandler(deps.RegisterMovement, deps.MovementQueries, deps.Metrics)
	movements.Post("/", canWrite, movementHandler.Register)
	movements.Get("/", canRead, movementHandler.List)
	movements.Get("/detallados", canRead, movementHandler.Detailed)
	movements.Get("/reporte", canReport, movementHandler.Report)
	movements.Get("/reporte/export", canReport, movementHandler.Export)
	movements.Get("/elemento/:tipoElemento/:elementoId", canRead, movementHandler.ListByElement)
	movements.Get("/:id", canRead, movementHandler.GetByID)

	// Alertas y consistencia
	reconciliationHandler := NewReconciliationHandler(deps.ReconciliationUC)
	inv.Get("/stock-bajo", canRead, reconciliationHandler.LowStock)
	inv.Get("/por-caducar", canRead, reconciliationHandler.NearExpiry)
	inv.Get("/verificar/:tipoElemento/:elementoId", canRead, reconciliationHandler.Verify)
}

func registerItemRoutes(g fiber.Router, h *ItemHandler, canRead, canWrite, canDelete fiber.Handler) {
	g.Post("/", canWrite, h.Create)
	g.Get("/", canRead, h.List)
	g.Get("/codigo/:codigo", canRead, h.GetByCode)
	g.Get("/:id", canRead, h.GetByID)
	g.Put("/:id", canWrite, h.Update)
	g.Delete("/:id", canDelete, h.Delete)
}

func registerLotRoutes(g fiber.Router, h *LotHandler, canRead, canWrite, canDelete fiber.Handler) {
	g.Post("/", canWrite, h.Create)
	g.Get("/", canRead, h.List)
	g.Get("/elemento/:elementoId", canRead, h.ListByItem)
	g.Get("/:id", canRead, h.GetByID)
	g.Put("/:id", canWrite, h.Update)
	g.Delete("/:id", canDelete, h.Delete)
}
