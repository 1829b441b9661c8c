package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/starixlabs/starix-core/internal/app/middlewares"
	"github.com/starixlabs/starix-core/internal/app/models"
	"github.com/starixlabs/starix-core/internal/app/pkg"
	"github.com/starixlabs/starix-core/internal/app/services"
)

type RedemptionHandler struct {
	redemptionService   *services.RedemptionService
	rateLimitMiddleware *middlewares.RateLimitMiddleware
	adminMiddleware     *middlewares.AdminMiddleware
}

func NewRedemptionHandler(redemptionService *services.RedemptionService, rateLimitMiddleware *middlewares.RateLimitMiddleware, adminMiddleware *middlewares.AdminMiddleware) *RedemptionHandler {
	return &RedemptionHandler{
		redemptionService:   redemptionService,
		rateLimitMiddleware: rateLimitMiddleware,
		adminMiddleware:     adminMiddleware,
	}
}

func (h *RedemptionHandler) RegisterRoutes(router fiber.Router) {
	redemptionGroup := router.Group("/redemptions")

	// Public redemption flow
	redemptionGroup.Post("/redeem", h.rateLimitMiddleware.LimitByIP(middlewares.RedeemLimit), h.Redeem)
	redemptionGroup.Post("/quote", h.rateLimitMiddleware.LimitByIP(middlewares.PublicAPILimit), h.Quote)
	redemptionGroup.Get("/:id", h.GetRedemption)

	// Admin operations
	redemptionGroup.Get("/", h.adminMiddleware.RequireAdmin, h.ListRedemptions)
	redemptionGroup.Post("/manual", h.adminMiddleware.RequireAdmin, h.CreateManual)
	redemptionGroup.Post("/reconcile", h.adminMiddleware.RequireAdmin, h.ReconcileProcessing)
	redemptionGroup.Post("/:id/reconcile", h.adminMiddleware.RequireAdmin, h.Reconcile)
	redemptionGroup.Post("/:id/cancel", h.adminMiddleware.RequireAdmin, h.Cancel)
}

func (h *RedemptionHandler) Redeem(c *fiber.Ctx) error {
	var req models.RedeemRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	resp, err := h.redemptionService.RedeemCard(c.Context(), &req, middlewares.ClientIP(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, resp)
}

func (h *RedemptionHandler) Quote(c *fiber.Ctx) error {
	var req models.RedeemQuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	quote, err := h.redemptionService.QuotePreview(c.Context(), &req, middlewares.ClientIP(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, quote)
}

func (h *RedemptionHandler) GetRedemption(c *fiber.Ctx) error {
	redemption, err := h.redemptionService.GetRedemption(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, redemption)
}

func (h *RedemptionHandler) ListRedemptions(c *fiber.Ctx) error {
	pagination := &models.PaginationRequest{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", 10),
	}

	var status *models.RedemptionStatus
	if statusStr := c.Query("status"); statusStr != "" {
		s := models.RedemptionStatus(statusStr)
		status = &s
	}

	redemptions, err := h.redemptionService.ListRedemptions(pagination, status)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, redemptions)
}

func (h *RedemptionHandler) CreateManual(c *fiber.Ctx) error {
	var req models.ManualRedemptionRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	redemption, err := h.redemptionService.CreateManualRedemption(&req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, redemption)
}

func (h *RedemptionHandler) Reconcile(c *fiber.Ctx) error {
	redemption, err := h.redemptionService.ReconcileRedemption(c.Context(), c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, redemption)
}

func (h *RedemptionHandler) ReconcileProcessing(c *fiber.Ctx) error {
	updated, err := h.redemptionService.ReconcileProcessing(c.Context())
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, map[string]int{"updated": updated})
}

func (h *RedemptionHandler) Cancel(c *fiber.Ctx) error {
	redemption, err := h.redemptionService.CancelRedemption(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, redemption)
}
