//go:build wireinject
// +build wireinject

package injector

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/wire"
	"github.com/starixlabs/starix-core/internal/app/deliveries"
	"github.com/starixlabs/starix-core/internal/app/middlewares"
	"github.com/starixlabs/starix-core/internal/app/services"
	"github.com/starixlabs/starix-core/internal/infrastructures"
)

// Application represents the main application container for starix-core
type Application struct {
	HealthHandler       *deliveries.HealthHandler
	GiftCardHandler     *deliveries.GiftCardHandler
	RedemptionHandler   *deliveries.RedemptionHandler
	TreasuryHandler     *deliveries.TreasuryHandler
	RateLimitMiddleware *middlewares.RateLimitMiddleware
}

// RegisterRoutes registers all application routes using a Fiber router
func (app *Application) RegisterRoutes(router fiber.Router) {
	// Apply global rate limit for public API
	router.Use(app.RateLimitMiddleware.LimitByIP(middlewares.PublicAPILimit))

	// Register all handlers
	app.HealthHandler.RegisterRoutes(router)
	app.GiftCardHandler.RegisterRoutes(router)
	app.RedemptionHandler.RegisterRoutes(router)
	app.TreasuryHandler.RegisterRoutes(router)
}

// Infrastructure providers
var infrastructureSet = wire.NewSet(
	infrastructures.NewDatabase,
	infrastructures.NewRedisClient,
	infrastructures.NewValidator,
	infrastructures.NewSideShiftClient,
	infrastructures.NewCoinGeckoClient,
	wire.Value("starix"),
	wire.Bind(new(middlewares.RateLimiter), new(*middlewares.RedisRateLimiter)),
	middlewares.NewRedisRateLimiter,
)

// Service providers
var serviceSet = wire.NewSet(
	services.NewPriceCache,
	services.NewPriceOracleService,
	services.NewChainPoolService,
	services.NewTreasuryService,
	services.NewSideShiftService,
	services.NewGiftCardService,
	services.NewAuditService,
	services.NewNotificationService,
	services.NewRedemptionService,
)

// Middleware providers
var middlewareSet = wire.NewSet(
	middlewares.NewAdminMiddleware,
	middlewares.NewRateLimitMiddleware,
)

// Handler providers
var handlerSet = wire.NewSet(
	deliveries.NewHealthHandler,
	deliveries.NewGiftCardHandler,
	deliveries.NewRedemptionHandler,
	deliveries.NewTreasuryHandler,
	wire.Struct(new(Application), "*"), // This tells Wire to build the Application struct
)

// InitializeApplication initializes the application with all its dependencies
func InitializeApplication() (*Application, error) {
	wire.Build(
		infrastructureSet,
		serviceSet,
		middlewareSet,
		handlerSet,
	)
	return &Application{}, nil // Wire will populate the Application struct based on handlerSet
}
