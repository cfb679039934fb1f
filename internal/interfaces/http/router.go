package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodega-sync/internal/application/inventory"
	appsync "github.com/jhoicas/bodega-sync/internal/application/sync"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine      *appsync.ReconciliationEngine
	Coordinator *appsync.BatchSyncCoordinator
	InventoryUC *inventory.UseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Todo el núcleo va protegido: la falta de
// token es un 401 antes de llegar al motor.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Escaneo y sincronización (bodegueros y admins)
	scanHandler := NewScanHandler(deps.Engine, deps.Coordinator)
	scanGroup := protected.Group("/scan", RequireRole("admin", "bodeguero"))
	scanGroup.Post("/", scanHandler.Scan)
	scanGroup.Post("/sync", scanHandler.Sync)

	// Inventario: ajustes de mesa solo admin; consultas para ambos roles
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	invGroup := protected.Group("/inventory")
	invGroup.Post("/adjustments", RequireRole("admin"), inventoryHandler.Adjust)
	invGroup.Get("/stock/:warehouseID", RequireRole("admin", "bodeguero"), inventoryHandler.ListStock)
	invGroup.Get("/ledger", RequireRole("admin", "bodeguero"), inventoryHandler.ListLedger)
}
