package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alcafoods/magazzino-api/internal/application/ledger"
	"github.com/alcafoods/magazzino-api/internal/application/lots"
	"github.com/alcafoods/magazzino-api/internal/application/orders"
	"github.com/alcafoods/magazzino-api/internal/application/reconcile"
	"github.com/alcafoods/magazzino-api/internal/application/stock"
	"github.com/alcafoods/magazzino-api/internal/application/transfer"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC    *ledger.UseCase
	LotUC       *lots.UseCase
	TransferUC  *transfer.UseCase
	OrderUC     *orders.UseCase
	ReconcileUC *reconcile.UseCase
	StockUC     *stock.UseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Todo el core está protegido; los roles
// restringen las operaciones de ufficio (ordini, inventario) frente a las de
// piazzale (prelievi, trasferimenti).
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	backoffice := []string{RoleAdmin, RoleMagazziniere}

	// Ledger de movimientos
	movementHandler := NewMovementHandler(deps.LedgerUC)
	movements := protected.Group("/movements")
	movements.Post("/", RequireRole(backoffice...), movementHandler.Create)
	movements.Get("/", movementHandler.List)
	protected.Post("/withdrawals", movementHandler.Withdraw)

	// Lotes e identidad BATCH_ID
	lotHandler := NewLotHandler(deps.LotUC)
	lotGroup := protected.Group("/lots")
	lotGroup.Post("/", RequireRole(backoffice...), lotHandler.Create)
	lotGroup.Get("/", lotHandler.ListByArticle)
	lotGroup.Get("/:id", lotHandler.Resolve)

	// Trasferimenti
	transferHandler := NewTransferHandler(deps.TransferUC)
	transfers := protected.Group("/transfers")
	transfers.Post("/", transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.Get)

	// Ordini a fornitore y ricevimenti
	orderHandler := NewOrderHandler(deps.OrderUC)
	orderGroup := protected.Group("/orders")
	orderGroup.Post("/", RequireRole(backoffice...), orderHandler.Create)
	orderGroup.Get("/:id", orderHandler.Get)
	orderGroup.Get("/:id/residuals", orderHandler.Residuals)
	orderGroup.Post("/:id/receipts", RequireRole(backoffice...), orderHandler.FulfillReceipt)

	// Sesiones de inventario
	inventoryHandler := NewInventoryHandler(deps.ReconcileUC)
	inventories := protected.Group("/inventories")
	inventories.Post("/", RequireRole(backoffice...), inventoryHandler.Open)
	inventories.Get("/", inventoryHandler.List)
	inventories.Get("/:id", inventoryHandler.Get)
	inventories.Put("/:id/lines/:lineId", inventoryHandler.RecordCount)
	inventories.Post("/:id/submit", RequireRole(backoffice...), inventoryHandler.Submit)

	// Proyecciones de lectura
	balanceHandler := NewBalanceHandler(deps.StockUC)
	protected.Get("/balances", balanceHandler.List)
	protected.Get("/articles/:article/status", balanceHandler.Status)
}
