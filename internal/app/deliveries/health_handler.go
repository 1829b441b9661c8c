package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/starixlabs/starix-core/internal/app/pkg"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{
		db: db,
	}
}

func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	status := map[string]string{
		"status":   "ok",
		"database": "ok",
	}

	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		status["database"] = "unreachable"
	}

	return pkg.SuccessResponse(c, status)
}
