package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-control/internal/application/auth"
	"github.com/jhoicas/stock-control/internal/application/inventory"
	"github.com/jhoicas/stock-control/internal/application/scan"
	"github.com/jhoicas/stock-control/internal/application/usecase"
	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	ScanUC      *scan.UseCase
	ProductUC   *usecase.ProductUseCase
	LocationUC  *usecase.LocationUseCase
	QualityUC   *usecase.QualityUseCase
	Modules     *usecase.ModuleService
	Ledger      *inventory.LedgerUseCase
	LowStock    *inventory.LowStockUseCase
	Expiry      *inventory.ExpiryUseCase
	Orders      *inventory.PurchaseOrderUseCase
	Readers     inventory.Readers
	Labels      LabelGenerator
	ServiceName string
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName, "modules": deps.Modules.Modules()})
	})

	api := app.Group("/api")
	manager := RequireRole(entity.RoleInventoryManager)

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	barcodeHandler := NewBarcodeHandler(deps.ScanUC)
	protected.Get("/barcodes/parse", barcodeHandler.Parse)
	protected.Get("/barcodes/resolve", barcodeHandler.Resolve)

	// Products: lectura para todos, altas y cambios solo inventory_manager
	productHandler := NewProductHandler(deps.ProductUC)
	products := protected.Group("/products")
	products.Get("/", productHandler.List)
	products.Post("/", manager, productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", manager, productHandler.Update)
	products.Get("/:id/lots", productHandler.ListLots)

	// Inventory: retiros y registros para cualquier rol autenticado
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.LowStock, deps.Expiry, deps.ScanUC, deps.Readers, deps.Labels)
	inv := protected.Group("/inventory")
	inv.Post("/withdrawals", inventoryHandler.Withdraw)
	inv.Get("/withdrawals", inventoryHandler.Withdrawals)
	inv.Post("/registrations", inventoryHandler.Register)
	inv.Get("/low-stock", inventoryHandler.LowStock)
	inv.Get("/expiring", manager, inventoryHandler.Expiring)
	inv.Post("/lots", manager, inventoryHandler.CreateLot)
	inv.Put("/lots/:id", manager, inventoryHandler.UpdateLot)
	inv.Get("/lots/:id/entries", inventoryHandler.Entries)
	inv.Get("/lots/:id/label", inventoryHandler.Label)
	inv.Delete("/lots/:id", manager, inventoryHandler.DiscardLot)

	// Locations (módulo location_tracking)
	locationHandler := NewLocationHandler(deps.LocationUC, deps.Ledger)
	locations := protected.Group("/locations", RequireModule(domain.ModuleLocationTracking, deps.Modules))
	locations.Get("/", locationHandler.List)
	locations.Post("/", manager, locationHandler.Create)
	locations.Post("/transfers", manager, locationHandler.Transfer)
	locations.Post("/stock", manager, locationHandler.AddStock)
	locations.Get("/balances", locationHandler.Balances)

	// Purchase orders (módulo purchase_orders)
	poHandler := NewPurchaseOrderHandler(deps.Orders, deps.ScanUC)
	orders := protected.Group("/purchase-orders", RequireModule(domain.ModulePurchaseOrders, deps.Modules))
	orders.Get("/", poHandler.List)
	orders.Post("/", manager, poHandler.Create)
	orders.Post("/complete", manager, poHandler.Complete)
	orders.Post("/:id/deliver", manager, poHandler.Deliver)

	// Quality control (módulo quality_control)
	qcHandler := NewQualityHandler(deps.QualityUC)
	quality := protected.Group("/quality-checks", RequireModule(domain.ModuleQualityControl, deps.Modules))
	quality.Post("/", manager, qcHandler.Create)
	quality.Get("/lot-status", qcHandler.LotStatus)
}
