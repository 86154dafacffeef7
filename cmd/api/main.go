package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/stock-control/internal/application/auth"
	"github.com/jhoicas/stock-control/internal/application/inventory"
	"github.com/jhoicas/stock-control/internal/application/scan"
	"github.com/jhoicas/stock-control/internal/application/usecase"
	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/barcode"
	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/domain/repository"
	"github.com/jhoicas/stock-control/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/stock-control/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-control/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-control/internal/interfaces/http"
	"github.com/jhoicas/stock-control/pkg/config"
	"github.com/jhoicas/stock-control/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// storage repositorios según APP_STORAGE.
type storage struct {
	txRunner inventory.TxRunner
	readers  inventory.Readers
	users    repository.UserRepository
	checks   repository.QualityCheckRepository
	places   repository.LocationRepository
	balances repository.LocationBalanceRepository
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer store.close()

	caps := domain.NewCapabilities(map[domain.Module]bool{
		domain.ModuleLocationTracking: cfg.Modules.LocationTracking,
		domain.ModulePurchaseOrders:   cfg.Modules.PurchaseOrders,
		domain.ModuleQualityControl:   cfg.Modules.QualityControl,
	})
	log.Info().Interface("modules", caps.Flags()).Msg("módulos")

	scanUC := scan.NewUseCase(
		barcode.NewDecoder(cfg.Barcode.VendorPrefix),
		scan.NewResolver(scan.ProductLotStore{Products: store.readers.Products, Lots: store.readers.Lots}),
		log.Component("scan"),
	)
	ledgerUC := inventory.NewLedgerUseCase(store.txRunner, store.readers, caps, inventory.LedgerConfig{
		MaxAttempts:    cfg.Ledger.MaxAttempts,
		RetryBackoff:   inventory.DefaultLedgerConfig().RetryBackoff,
		PlaceholderLot: cfg.Ledger.PlaceholderLot,
	}, log.Component("ledger"))
	ordersUC := inventory.NewPurchaseOrderUseCase(ledgerUC, store.readers, caps, log.Component("purchase_orders"))
	lowStockUC := inventory.NewLowStockUseCase(store.readers.Products, store.readers.Lots)
	expiryUC := inventory.NewExpiryUseCase(store.readers.Products, store.readers.Lots)
	productUC := usecase.NewProductUseCase(store.readers.Products, store.readers.Lots)
	locationUC := usecase.NewLocationUseCase(store.places, caps)
	qualityUC := usecase.NewQualityUseCase(store.checks, store.readers.Lots, store.balances, scanUC, caps)
	moduleSvc := usecase.NewModuleService(caps)
	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	if cfg.Bootstrap.Email != "" {
		u, err := authUC.EnsureUser(ctx, cfg.Bootstrap.Email, cfg.Bootstrap.Password, cfg.Bootstrap.Name, entity.RoleInventoryManager)
		if err != nil {
			log.Fatal().Err(err).Msg("usuario inicial")
		}
		log.Info().Str("email", u.Email).Msg("usuario inventory_manager disponible")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs (requiere `swag init`)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Stock Control API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger deshabilitado: falta el archivo")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		ScanUC:      scanUC,
		ProductUC:   productUC,
		LocationUC:  locationUC,
		QualityUC:   qualityUC,
		Modules:     moduleSvc,
		Ledger:      ledgerUC,
		LowStock:    lowStockUC,
		Expiry:      expiryUC,
		Orders:      ordersUC,
		Readers:     store.readers,
		Labels:      infrapdf.NewMarotoLabelGenerator(),
		ServiceName: cfg.App.Name,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage abre PostgreSQL (con migraciones si DB_AUTO_MIGRATE) o el almacén en memoria.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.App.Storage == "memory" {
		s := memory.NewStore(cfg.Ledger.LockTimeout)
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		return &storage{
			txRunner: s.TxRunner(),
			readers:  s.Readers(),
			users:    s.Users(),
			checks:   s.QualityChecks(),
			places:   s.Locations(),
			balances: s.Balances(),
			close:    func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &storage{
		txRunner: postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout),
		readers:  postgres.Readers(pool),
		users:    postgres.NewUserRepository(pool),
		checks:   postgres.NewQualityCheckRepository(pool),
		places:   postgres.NewLocationRepository(pool),
		balances: postgres.NewLocationBalanceRepository(pool),
		close:    pool.Close,
	}, nil
}
