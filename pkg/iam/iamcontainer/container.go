package iamcontainer

import (
	"github.com/jmoiron/sqlx"
	"github.com/pressroom-io/pressroom/pkg/config"
	"github.com/pressroom-io/pressroom/pkg/iam/activity"
	"github.com/pressroom-io/pressroom/pkg/iam/authapi"
	"github.com/pressroom-io/pressroom/pkg/iam/lockout"
	"github.com/pressroom-io/pressroom/pkg/iam/login"
	"github.com/pressroom-io/pressroom/pkg/iam/otp"
	"github.com/pressroom-io/pressroom/pkg/iam/otp/otpsrv"
	"github.com/pressroom-io/pressroom/pkg/iam/principal"
	"github.com/pressroom-io/pressroom/pkg/iam/principal/principalinfra"
	"github.com/pressroom-io/pressroom/pkg/iam/token"
	"github.com/pressroom-io/pressroom/pkg/kernel"
	"github.com/pressroom-io/pressroom/pkg/logx"
)

// ---------------------------------------------------------------------------
// Deps: explicit external dependencies this bounded context requires.
// No hidden globals, no ambient state — everything comes through here.
// ---------------------------------------------------------------------------

type Deps struct {
	DB    *sqlx.DB
	Store kernel.TTLStore
	Cfg   *config.Config

	// OTPNotifier is injected as an interface so the IAM module has zero
	// knowledge of the concrete notification implementation.
	OTPNotifier otp.Notifier
}

// ---------------------------------------------------------------------------
// Container: the public surface of the IAM module.
// Only expose what other modules or cmd/ actually need.
// ---------------------------------------------------------------------------

type Container struct {
	// Services — available for cross-module consumption
	LoginService *login.Service
	OTPService   *otpsrv.Service
	TokenService *token.Service
	Activity     *activity.Monitor
	Directory    principal.Directory

	// Handlers — needed by cmd/ to register routes
	AuthHandlers *authapi.AuthHandlers

	// Middleware — needed by cmd/ to protect route groups
	AuthMiddleware *authapi.TokenMiddleware
}

// New constructs the IAM dependency graph. Order matters: infra → domain
// services → handlers → middleware.
func New(deps Deps) *Container {
	logx.Info("Initializing IAM container...")

	c := &Container{}

	c.Directory = principalinfra.NewPostgresDirectory(deps.DB)

	lockouts := lockout.NewTracker(deps.Store, lockout.Config{
		MaxFailures:  deps.Cfg.Lockout.MaxFailures,
		Window:       deps.Cfg.Lockout.Window,
		LockDuration: deps.Cfg.Lockout.LockDuration,
		DelayBase:    deps.Cfg.Lockout.DelayBase,
		DelayCap:     deps.Cfg.Lockout.DelayCap,
	})

	c.LoginService = login.NewService(c.Directory, lockouts)

	c.TokenService = token.NewService(token.Config{
		AccessSecret:  deps.Cfg.Auth.AccessSecret,
		RefreshSecret: deps.Cfg.Auth.RefreshSecret,
		AccessTTL:     deps.Cfg.Auth.AccessTokenTTL,
		RefreshTTL:    deps.Cfg.Auth.RefreshTokenTTL,
		Issuer:        deps.Cfg.Auth.Issuer,
	}, deps.Store, c.Directory)

	c.OTPService = otpsrv.NewService(deps.Store, deps.OTPNotifier, c.Directory, c.TokenService, otpsrv.Config{
		TTL:         deps.Cfg.OTP.TTL,
		CodeLength:  deps.Cfg.OTP.CodeLength,
		MaxAttempts: deps.Cfg.OTP.MaxAttempts,
		MaxResends:  deps.Cfg.OTP.MaxResends,
	})

	c.Activity = activity.NewMonitor(deps.Store)

	c.AuthHandlers = authapi.NewAuthHandlers(c.LoginService, c.OTPService, c.TokenService, authapi.CookieConfig{
		Name:   deps.Cfg.Auth.RefreshCookieName,
		Secure: deps.Cfg.Auth.CookieSecure,
	})

	c.AuthMiddleware = authapi.NewTokenMiddleware(c.TokenService, c.Activity)

	logx.Info("IAM container initialized")
	return c
}
