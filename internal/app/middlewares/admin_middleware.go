package middlewares

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/starixlabs/starix-core/internal/app/errors"
	"github.com/starixlabs/starix-core/internal/app/pkg"
	"github.com/starixlabs/starix-core/internal/infrastructures"
)

// AdminMiddleware guards admin routes with a static API key from config.
// Full user authentication is handled by an upstream service; this key only
// fences the operational endpoints.
type AdminMiddleware struct {
	apiKey string
}

func NewAdminMiddleware() *AdminMiddleware {
	var key string
	if infrastructures.Config != nil {
		key = infrastructures.Config.ADMIN_API_KEY
	}
	return &AdminMiddleware{apiKey: key}
}

// RequireAdmin rejects requests without the admin API key.
func (m *AdminMiddleware) RequireAdmin(c *fiber.Ctx) error {
	if m.apiKey == "" {
		return pkg.ErrorResponse(c, errors.NewServiceUnavailableError("Admin API is not configured"))
	}

	supplied := c.Get("X-Admin-Key")
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(m.apiKey)) != 1 {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError("Invalid admin key"))
	}

	return c.Next()
}
