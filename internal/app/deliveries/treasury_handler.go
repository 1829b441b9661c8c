package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/starixlabs/starix-core/internal/app/middlewares"
	"github.com/starixlabs/starix-core/internal/app/models"
	"github.com/starixlabs/starix-core/internal/app/pkg"
	"github.com/starixlabs/starix-core/internal/app/services"
)

type TreasuryHandler struct {
	treasuryService     *services.TreasuryService
	rateLimitMiddleware *middlewares.RateLimitMiddleware
	adminMiddleware     *middlewares.AdminMiddleware
}

func NewTreasuryHandler(treasuryService *services.TreasuryService, rateLimitMiddleware *middlewares.RateLimitMiddleware, adminMiddleware *middlewares.AdminMiddleware) *TreasuryHandler {
	return &TreasuryHandler{
		treasuryService:     treasuryService,
		rateLimitMiddleware: rateLimitMiddleware,
		adminMiddleware:     adminMiddleware,
	}
}

func (h *TreasuryHandler) RegisterRoutes(router fiber.Router) {
	treasuryGroup := router.Group("/treasury", h.rateLimitMiddleware.LimitByIP(middlewares.AdminAPILimit), h.adminMiddleware.RequireAdmin)

	treasuryGroup.Get("/wallets", h.ListWallets)
	treasuryGroup.Post("/wallets", h.CreateWallet)
	treasuryGroup.Post("/wallets/:id/primary", h.SetPrimaryWallet)
	treasuryGroup.Delete("/wallets/:id", h.DeleteWallet)
	treasuryGroup.Get("/balance", h.GetPrimaryBalance)
}

func (h *TreasuryHandler) ListWallets(c *fiber.Ctx) error {
	wallets, err := h.treasuryService.ListWallets()
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, wallets)
}

func (h *TreasuryHandler) CreateWallet(c *fiber.Ctx) error {
	var req models.TreasuryWalletCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	wallet, err := h.treasuryService.CreateWallet(&req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, wallet)
}

func (h *TreasuryHandler) SetPrimaryWallet(c *fiber.Ctx) error {
	wallet, err := h.treasuryService.SetPrimaryWallet(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, wallet)
}

func (h *TreasuryHandler) DeleteWallet(c *fiber.Ctx) error {
	if err := h.treasuryService.DeleteWallet(c.Params("id")); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, map[string]bool{"deleted": true})
}

func (h *TreasuryHandler) GetPrimaryBalance(c *fiber.Ctx) error {
	balance, err := h.treasuryService.GetPrimaryBalance(c.Context())
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, balance)
}
