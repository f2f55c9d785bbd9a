package middleware

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/owner"
)

// AdminRequired admits callers listed in ADMIN_EMAILS or whose stored role
// is admin. It must run after JWTProtected.
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := owner.GetOwnerID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		// Check config-based admin list
		if cfg.IsAdminEmail(owner.Email(c)) {
			return c.Next()
		}

		// Check DB-based role
		var user models.User
		if err := db.WithContext(c.UserContext()).First(&user, "id = ?", userID).Error; err == nil {
			if user.Role == models.RoleAdmin {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}
