package middleware

import (
	"errors"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/oceanwatch/marinewatch/internal/config"
	"github.com/oceanwatch/marinewatch/internal/dto"
)

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}

// GetUserID extracts the user UUID from JWT claims in context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	claims, err := getClaims(c)
	if err != nil {
		return uuid.Nil, err
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}
	return uuid.Parse(sub)
}

// roleKey is the fiber locals key for the resolved role. ReviewerRequired
// writes it after consulting the users table, so it wins over a stale claim.
const roleKey = "resolvedRole"

// GetRole returns the caller's effective role: the one resolved by
// ReviewerRequired when present, otherwise the token's role claim.
func GetRole(c *fiber.Ctx) string {
	if role, ok := c.Locals(roleKey).(string); ok && role != "" {
		return role
	}
	claims, err := getClaims(c)
	if err != nil {
		return ""
	}
	role, _ := claims["role"].(string)
	return role
}

// BearerToken returns the raw token presented by the caller so downstream
// calls (the classifier) can forward it unchanged.
func BearerToken(c *fiber.Ctx) string {
	if token, ok := c.Locals("user").(*jwt.Token); ok && token != nil {
		return token.Raw
	}
	return ""
}

func getClaims(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, errors.New("invalid token in context")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}
