package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/starixlabs/starix-core/internal/app/middlewares"
	"github.com/starixlabs/starix-core/internal/app/models"
	"github.com/starixlabs/starix-core/internal/app/pkg"
	"github.com/starixlabs/starix-core/internal/app/services"
)

type GiftCardHandler struct {
	giftCardService *services.GiftCardService
	adminMiddleware *middlewares.AdminMiddleware
}

func NewGiftCardHandler(giftCardService *services.GiftCardService, adminMiddleware *middlewares.AdminMiddleware) *GiftCardHandler {
	return &GiftCardHandler{
		giftCardService: giftCardService,
		adminMiddleware: adminMiddleware,
	}
}

func (h *GiftCardHandler) RegisterRoutes(router fiber.Router) {
	cardGroup := router.Group("/giftcards")

	// Public pre-redemption preview
	cardGroup.Get("/check/:code", h.CheckCard)

	// Admin card management
	cardGroup.Post("/", h.adminMiddleware.RequireAdmin, h.CreateGiftCard)
	cardGroup.Get("/", h.adminMiddleware.RequireAdmin, h.ListGiftCards)
	cardGroup.Get("/:id", h.adminMiddleware.RequireAdmin, h.GetGiftCard)
	cardGroup.Post("/:id/activate", h.adminMiddleware.RequireAdmin, h.ActivateGiftCard)
	cardGroup.Post("/:id/cancel", h.adminMiddleware.RequireAdmin, h.CancelGiftCard)
	cardGroup.Post("/expire-due", h.adminMiddleware.RequireAdmin, h.ExpireDue)
}

func (h *GiftCardHandler) CheckCard(c *fiber.Ctx) error {
	check, err := h.giftCardService.CheckCard(c.Params("code"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, check)
}

func (h *GiftCardHandler) CreateGiftCard(c *fiber.Ctx) error {
	var req models.GiftCardCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	card, err := h.giftCardService.CreateGiftCard(&req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, card)
}

func (h *GiftCardHandler) GetGiftCard(c *fiber.Ctx) error {
	card, err := h.giftCardService.GetGiftCard(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, card)
}

func (h *GiftCardHandler) ListGiftCards(c *fiber.Ctx) error {
	pagination := &models.PaginationRequest{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", 10),
	}

	var status *models.GiftCardStatus
	if statusStr := c.Query("status"); statusStr != "" {
		s := models.GiftCardStatus(statusStr)
		status = &s
	}

	cards, err := h.giftCardService.ListGiftCards(pagination, status)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, cards)
}

func (h *GiftCardHandler) ActivateGiftCard(c *fiber.Ctx) error {
	card, err := h.giftCardService.ActivateCard(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, card)
}

func (h *GiftCardHandler) CancelGiftCard(c *fiber.Ctx) error {
	card, err := h.giftCardService.CancelCard(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, card)
}

func (h *GiftCardHandler) ExpireDue(c *fiber.Ctx) error {
	expired, err := h.giftCardService.ExpireDue()
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, map[string]int64{"expired": expired})
}
