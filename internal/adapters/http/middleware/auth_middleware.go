package middleware

import (
	"errors"
	"strings"

	"loyalwallet/internal/config"
	"loyalwallet/internal/core/domain"
	"loyalwallet/internal/pkg/jwt"
	"loyalwallet/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthMiddleware
const (
	LocalAccountID = "accountID"
	LocalCompanyID = "companyID"
	LocalEmail     = "email"
	LocalRole      = "role"
)

// AuthMiddleware creates authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Cookie first, then Authorization header
		accessToken := bearerToken(c)
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 2. Validate token
		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 3. Set principal in context
		c.Locals(LocalAccountID, claims.AccountID)
		c.Locals(LocalCompanyID, claims.CompanyID)
		c.Locals(LocalEmail, claims.Email)
		c.Locals(LocalRole, claims.Role)

		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if role == string(allowedRole) {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only the Admin role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin)
}

// UserOrAdmin middleware allows company owners and admins
func UserOrAdmin() fiber.Handler {
	return RoleMiddleware(domain.RoleUser, domain.RoleAdmin)
}

// CompanyScope restricts a route to the caller's own company. The company id
// is read from the named path parameter; admins may act on any company.
func CompanyScope(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := c.ParamsInt(param)
		if err != nil || companyID < 1 {
			return response.BadRequest(c, "Invalid company ID")
		}

		if role, _ := c.Locals(LocalRole).(string); role == string(domain.RoleAdmin) {
			return c.Next()
		}

		own, ok := c.Locals(LocalCompanyID).(uint)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if own != uint(companyID) {
			return response.Forbidden(c, "You can only access your own company")
		}
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	if token := c.Cookies("access_token"); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
