// Code generated by Wire. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package injector

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/wire"
	"github.com/starixlabs/starix-core/internal/app/deliveries"
	"github.com/starixlabs/starix-core/internal/app/middlewares"
	"github.com/starixlabs/starix-core/internal/app/services"
	"github.com/starixlabs/starix-core/internal/infrastructures"
)

// Injectors from injector.go:

// InitializeApplication initializes the application with all its dependencies
func InitializeApplication() (*Application, error) {
	db := infrastructures.NewDatabase()
	healthHandler := deliveries.NewHealthHandler(db)
	validator := infrastructures.NewValidator()
	giftCardService := services.NewGiftCardService(db, validator)
	adminMiddleware := middlewares.NewAdminMiddleware()
	giftCardHandler := deliveries.NewGiftCardHandler(giftCardService, adminMiddleware)
	chainPoolService := services.NewChainPoolService()
	coinGeckoClient := infrastructures.NewCoinGeckoClient()
	priceCache := services.NewPriceCache()
	priceOracleService := services.NewPriceOracleService(coinGeckoClient, priceCache)
	treasuryService := services.NewTreasuryService(db, validator, chainPoolService, priceOracleService)
	sideShiftClient := infrastructures.NewSideShiftClient()
	sideShiftService := services.NewSideShiftService(sideShiftClient)
	auditService := services.NewAuditService(db)
	notificationService := services.NewNotificationService()
	redemptionService := services.NewRedemptionService(db, validator, giftCardService, treasuryService, sideShiftService, auditService, notificationService)
	client := infrastructures.NewRedisClient()
	string2 := _wireStringValue
	redisRateLimiter := middlewares.NewRedisRateLimiter(client, string2)
	rateLimitMiddleware := middlewares.NewRateLimitMiddleware(redisRateLimiter)
	redemptionHandler := deliveries.NewRedemptionHandler(redemptionService, rateLimitMiddleware, adminMiddleware)
	treasuryHandler := deliveries.NewTreasuryHandler(treasuryService, rateLimitMiddleware, adminMiddleware)
	application := &Application{
		HealthHandler:       healthHandler,
		GiftCardHandler:     giftCardHandler,
		RedemptionHandler:   redemptionHandler,
		TreasuryHandler:     treasuryHandler,
		RateLimitMiddleware: rateLimitMiddleware,
	}
	return application, nil
}

var (
	_wireStringValue = "starix"
)

// injector.go:

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

	router.Use(app.RateLimitMiddleware.LimitByIP(middlewares.PublicAPILimit))

	app.HealthHandler.RegisterRoutes(router)
	app.GiftCardHandler.RegisterRoutes(router)
	app.RedemptionHandler.RegisterRoutes(router)
	app.TreasuryHandler.RegisterRoutes(router)
}

// Infrastructure providers
var infrastructureSet = wire.NewSet(infrastructures.NewDatabase, infrastructures.NewRedisClient, infrastructures.NewValidator, infrastructures.NewSideShiftClient, infrastructures.NewCoinGeckoClient, wire.Value("starix"), wire.Bind(new(middlewares.RateLimiter), new(*middlewares.RedisRateLimiter)), middlewares.NewRedisRateLimiter)

// Service providers
var serviceSet = wire.NewSet(services.NewPriceCache, services.NewPriceOracleService, services.NewChainPoolService, services.NewTreasuryService, services.NewSideShiftService, services.NewGiftCardService, services.NewAuditService, services.NewNotificationService, services.NewRedemptionService)

// Middleware providers
var middlewareSet = wire.NewSet(middlewares.NewAdminMiddleware, middlewares.NewRateLimitMiddleware)

// Handler providers
var handlerSet = wire.NewSet(deliveries.NewHealthHandler, deliveries.NewGiftCardHandler, deliveries.NewRedemptionHandler, deliveries.NewTreasuryHandler, wire.Struct(new(Application), "*"))
