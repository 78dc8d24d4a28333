package authapi

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/pressroom-io/pressroom/pkg/asyncx"
	"github.com/pressroom-io/pressroom/pkg/iam/activity"
	"github.com/pressroom-io/pressroom/pkg/iam/token"
	"github.com/pressroom-io/pressroom/pkg/kernel"
)

// TokenMiddleware guards routes behind access-token verification and feeds
// the session activity monitor.
type TokenMiddleware struct {
	tokens  *token.Service
	monitor *activity.Monitor
}

// NewTokenMiddleware crea un nuevo middleware de autenticación.
func NewTokenMiddleware(tokens *token.Service, monitor *activity.Monitor) *TokenMiddleware {
	return &TokenMiddleware{tokens: tokens, monitor: monitor}
}

// Authenticate validates the bearer token (or access_token cookie) and
// injects the AuthContext. After verification succeeds the activity monitor
// observes the request; it is advisory and never blocks.
func (m *TokenMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearerToken(c)
		if tok == "" {
			tok = c.Cookies("access_token")
		}
		if tok == "" {
			return token.ErrInvalid().WithDetail("reason", "missing credentials")
		}

		p, err := m.tokens.VerifyAccess(c.UserContext(), tok)
		if err != nil {
			return err
		}

		c.Locals(string(kernel.AuthContextKey), &kernel.AuthContext{
			UserID: p.ID,
			Email:  p.Email,
			Name:   p.Name,
			Role:   p.Role,
		})

		if m.monitor != nil {
			// Copies first: fiber reuses the request buffers once the
			// handler returns.
			userID := p.ID
			ip := utils.CopyString(c.IP())
			userAgent := utils.CopyString(c.Get(fiber.HeaderUserAgent))
			asyncx.Do(func() {
				m.monitor.Observe(context.Background(), userID, ip, userAgent)
			})
		}

		return c.Next()
	}
}

// RequireRole restricts a route to the given roles. Must run after
// Authenticate.
func (m *TokenMiddleware) RequireRole(roles ...kernel.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ac, ok := c.Locals(string(kernel.AuthContextKey)).(*kernel.AuthContext)
		if !ok || !ac.IsValid() {
			return token.ErrInvalid().WithDetail("reason", "not authenticated")
		}
		if !ac.HasAnyRole(roles...) {
			return ErrAccessDenied().WithDetail("required", roles)
		}
		return c.Next()
	}
}

// RequireAdmin restricts a route to administrators.
func (m *TokenMiddleware) RequireAdmin() fiber.Handler {
	return m.RequireRole(kernel.RoleAdmin)
}
