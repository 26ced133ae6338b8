package middleware

import (
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"shop/internal/models"
	"shop/internal/services"
)

// Context keys for the authenticated identity set by Authenticate.
const (
	LocalUserID = "user_id"
	LocalEmail  = "email"
	LocalRole   = "role"
)

type publicRoute struct {
	method string
	path   string
}

var publicRoutes = []publicRoute{
	{fiber.MethodGet, "/"},
	{fiber.MethodPost, "/auth/signup"},
	{fiber.MethodPost, "/auth/login"},
}

func isPublic(c *fiber.Ctx) bool {
	if c.Method() == fiber.MethodOptions {
		return true
	}
	if strings.HasPrefix(c.Path(), "/ui") {
		return true
	}
	for _, route := range publicRoutes {
		if c.Method() == route.method && c.Path() == route.path {
			return true
		}
	}
	return false
}

// Authenticate is a Fiber middleware guarding every route outside the
// public allowlist. On success the decoded claims (subject id, email,
// role) are stored in the request Locals for downstream handlers.
func Authenticate(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isPublic(c) {
			return c.Next()
		}

		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing Authorization Header",
			})
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing Bearer. wrong format",
			})
		}

		if !authService.SecretConfigured() {
			log.Println("JWT secret is not set")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Server misconfiguration",
			})
		}

		// Some clients send the token wrapped in quotes; strip them
		// before checking for emptiness or embedded whitespace.
		token := strings.TrimSpace(authHeader[len("Bearer "):])
		token = strings.TrimSuffix(strings.TrimPrefix(token, `"`), `"`)
		if token == "" || strings.Contains(token, " ") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing or empty token",
			})
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": fmt.Sprintf("token is invalid: %v", err),
			})
		}

		if sub, ok := claims["sub"].(float64); ok {
			c.Locals(LocalUserID, uint(sub))
		}
		if email, ok := claims["email"].(string); ok {
			c.Locals(LocalEmail, email)
		}
		if role, ok := claims["role"].(string); ok {
			c.Locals(LocalRole, models.Role(role))
		}

		return c.Next()
	}
}

// RequireRoles rejects with 401 when no authenticated identity is present
// and with 403 when the identity's role is not in the allowed set. Unknown
// or empty roles never match.
func RequireRoles(allowedRoles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		role, hasRole := c.Locals(LocalRole).(models.Role)
		if _, hasID := c.Locals(LocalUserID).(uint); !hasID || !hasRole || role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		if _, ok := allowed[role]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: insufficient role",
			})
		}
		return c.Next()
	}
}
