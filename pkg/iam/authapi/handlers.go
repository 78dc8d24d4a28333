package authapi

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pressroom-io/pressroom/pkg/errx"
	"github.com/pressroom-io/pressroom/pkg/iam/login"
	"github.com/pressroom-io/pressroom/pkg/iam/otp/otpsrv"
	"github.com/pressroom-io/pressroom/pkg/iam/token"
	"github.com/pressroom-io/pressroom/pkg/logx"
)

// CookieConfig controls the refresh-token cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandlers owns the authentication endpoints.
type AuthHandlers struct {
	login  *login.Service
	otps   *otpsrv.Service
	tokens *token.Service
	cookie CookieConfig
}

// NewAuthHandlers wires the handlers.
func NewAuthHandlers(loginSvc *login.Service, otps *otpsrv.Service, tokens *token.Service, cookie CookieConfig) *AuthHandlers {
	if cookie.Name == "" {
		cookie.Name = "refresh_token"
	}
	return &AuthHandlers{
		login:  loginSvc,
		otps:   otps,
		tokens: tokens,
		cookie: cookie,
	}
}

// RegisterRoutes mounts the auth endpoints. loginGuard and resendGuard are
// the rate-limit middlewares for their respective endpoints; either may be
// nil.
func (h *AuthHandlers) RegisterRoutes(app fiber.Router, loginGuard, resendGuard fiber.Handler) {
	grp := app.Group("/auth")

	grp.Post("/login", wrap(loginGuard), h.handleLogin)
	grp.Post("/verify-otp", h.handleVerifyOTP)
	grp.Post("/resend-otp", wrap(resendGuard), h.handleResendOTP)
	grp.Post("/refresh-token", h.handleRefreshToken)
	grp.Post("/logout", h.handleLogout)
}

func wrap(guard fiber.Handler) fiber.Handler {
	if guard != nil {
		return guard
	}
	return func(c *fiber.Ctx) error { return c.Next() }
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandlers) handleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.New("Malformed request body", errx.TypeValidation)
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return errx.New("Email and password are required", errx.TypeValidation)
	}

	p, err := h.login.ValidateLogin(c.UserContext(), req.Email, req.Password, c.IP())
	if err != nil {
		// Advisory slow-down for hammering clients; independent of the hard
		// lockout and applied only on failures.
		if delay := h.login.RetryDelay(c.UserContext(), req.Email, c.IP()); delay > 0 {
			time.Sleep(delay)
		}
		return err
	}

	res, err := h.otps.Issue(c.UserContext(), p)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

type verifyOTPRequest struct {
	OTPToken string `json:"otp_token"`
	OTP      string `json:"otp"`
}

func (h *AuthHandlers) handleVerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.New("Malformed request body", errx.TypeValidation)
	}
	if req.OTPToken == "" || req.OTP == "" {
		return errx.New("otp_token and otp are required", errx.TypeValidation)
	}

	res, err := h.otps.Verify(c.UserContext(), req.OTPToken, req.OTP)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, res.Tokens.RefreshToken)
	return c.JSON(fiber.Map{
		"user":         res.Principal.Public(),
		"access_token": res.Tokens.AccessToken,
	})
}

type resendOTPRequest struct {
	OTPToken string `json:"otp_token"`
}

func (h *AuthHandlers) handleResendOTP(c *fiber.Ctx) error {
	var req resendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.New("Malformed request body", errx.TypeValidation)
	}
	if req.OTPToken == "" {
		return errx.New("otp_token is required", errx.TypeValidation)
	}

	res, err := h.otps.Resend(c.UserContext(), req.OTPToken)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *AuthHandlers) handleRefreshToken(c *fiber.Ctx) error {
	refresh := c.Cookies(h.cookie.Name)
	if refresh == "" {
		return token.ErrInvalid().WithDetail("reason", "missing refresh cookie")
	}

	pair, err := h.tokens.Refresh(c.UserContext(), refresh)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	return c.JSON(fiber.Map{"access_token": pair.AccessToken})
}

// handleLogout blacklists the presented access token and drops the refresh
// cookie. Calling it without a token, or twice, is a harmless no-op.
func (h *AuthHandlers) handleLogout(c *fiber.Ctx) error {
	if bearer := bearerToken(c); bearer != "" {
		if err := h.tokens.Revoke(c.UserContext(), bearer); err != nil {
			logx.WithError(err).Debug("authapi: revoke on logout failed")
		}
	}

	h.clearRefreshCookie(c)
	return c.JSON(fiber.Map{"message": "logged out"})
}

func (h *AuthHandlers) setRefreshCookie(c *fiber.Ctx, value string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(h.tokens.RefreshTTL() / time.Second),
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func (h *AuthHandlers) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
