package middleware

import (
	"innerspark/database"
	"innerspark/models"

	"github.com/gofiber/fiber/v2"
)

// RequireRoles returns a middleware that lets through active users holding one of roles.
// The role is read from the database, not the token, so demotions take effect immediately.
func RequireRoles(roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *fiber.Ctx) error {
		userID, ok := CurrentUserID(c)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
		}

		var user models.User
		if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
		}
		if !user.IsActive {
			return JsonResponse(c, fiber.StatusForbidden, false, "Your account is inactive!", nil)
		}
		if !allowed[user.Role] {
			return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		}

		c.Locals("role", user.Role)
		c.Locals("user", &user)
		return c.Next()
	}
}
