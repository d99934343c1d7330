package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/oceanwatch/marinewatch/internal/dto"
	"github.com/oceanwatch/marinewatch/internal/models"
	"gorm.io/gorm"
)

// ReviewerRequired gates moderation endpoints. The role claim in the token is
// checked first; when absent or stale the users table is the authority.
func ReviewerRequired(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid claims",
			})
		}

		if role, _ := claims["role"].(string); role == models.RoleReviewer {
			c.Locals(roleKey, models.RoleReviewer)
			return c.Next()
		}

		// A stale token may predate a role change; the users table is the
		// authority. Record the resolved role so downstream reads agree.
		if sub, _ := claims["sub"].(string); sub != "" {
			if userID, err := uuid.Parse(sub); err == nil {
				var user models.User
				if err := db.First(&user, "id = ?", userID).Error; err == nil && user.IsReviewer() {
					c.Locals(roleKey, models.RoleReviewer)
					return c.Next()
				}
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Access denied. Reviewer role required.",
		})
	}
}
