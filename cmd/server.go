package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/pressroom-io/pressroom/pkg/config"
	"github.com/pressroom-io/pressroom/pkg/errx"
	"github.com/pressroom-io/pressroom/pkg/kernel"
	"github.com/pressroom-io/pressroom/pkg/logx"
	"github.com/pressroom-io/pressroom/pkg/ratelimit"
)

func main() {
	logx.Info("Starting Pressroom API server...")

	cfg := config.Load()

	container := NewContainer(cfg)
	defer container.Cleanup()

	app := fiber.New(fiber.Config{
		AppName:               "Pressroom API",
		DisableStartupMessage: true,
		ErrorHandler:          errx.FiberErrorHandler(),
		BodyLimit:             cfg.Server.BodyLimit,
	})

	// Global middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return uuid.NewString()
		},
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:  "GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS",
		ExposeHeaders: "X-Request-ID, Retry-After",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${reqHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	// Outermost abuse guards: a high burst ceiling to absorb DoS-like
	// spikes, then the general role-differentiated cap.
	app.Use(ratelimit.Burst(container.Limiter, ratelimit.IPKey("burst"),
		cfg.RateLimit.BurstMax, cfg.RateLimit.BurstWindow))
	app.Use(ratelimit.RoleCap(container.Limiter, ratelimit.PrincipalKey("general"),
		map[kernel.Role]int{
			kernel.RoleAnonymous: cfg.RateLimit.GeneralMax,
			kernel.RoleReader:    cfg.RateLimit.GeneralMax * 2,
			kernel.RoleEditor:    cfg.RateLimit.GeneralMax * 5,
			kernel.RoleAdmin:     cfg.RateLimit.GeneralMax * 10,
		}, cfg.RateLimit.GeneralWindow))

	// Health check
	app.Get("/health", healthCheckHandler(container))

	// Authentication routes, with their endpoint-class guards
	loginGuard := ratelimit.Cap(container.Limiter, ratelimit.IPKey("login"),
		cfg.RateLimit.LoginMax, cfg.RateLimit.LoginWindow)
	resendGuard := ratelimit.Cap(container.Limiter, ratelimit.IPKey("otp_resend"),
		cfg.RateLimit.LoginMax, cfg.RateLimit.LoginWindow)

	container.IAM.AuthHandlers.RegisterRoutes(app, loginGuard, resendGuard)
	logx.Info("Auth routes registered")

	// Authenticated surface
	authed := app.Group("/api/v1", container.IAM.AuthMiddleware.Authenticate())
	authed.Get("/me", meHandler)

	// 404 handler
	app.Use(notFoundHandler)

	startServer(app, cfg)
}

// ============================================================================
// Handlers
// ============================================================================

func healthCheckHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := fiber.Map{
			"status":  "healthy",
			"service": "pressroom-api",
		}
		status := fiber.StatusOK

		if err := container.DB.Ping(); err != nil {
			health["db"] = "unhealthy"
			health["status"] = "degraded"
			status = fiber.StatusServiceUnavailable
		} else {
			health["db"] = "healthy"
		}

		if err := container.Redis.Ping(c.Context()).Err(); err != nil {
			health["redis"] = "unhealthy"
			health["status"] = "degraded"
			status = fiber.StatusServiceUnavailable
		} else {
			health["redis"] = "healthy"
		}

		return c.Status(status).JSON(health)
	}
}

func meHandler(c *fiber.Ctx) error {
	ac, ok := c.Locals(string(kernel.AuthContextKey)).(*kernel.AuthContext)
	if !ok {
		return fiber.ErrUnauthorized
	}
	return c.JSON(ac)
}

func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"code":       "NOT_FOUND",
		"message":    "The requested endpoint does not exist",
		"path":       c.Path(),
		"request_id": c.Get("X-Request-ID"),
	})
}

// ============================================================================
// Lifecycle
// ============================================================================

func startServer(app *fiber.App, cfg *config.Config) {
	addr := listenAddr(cfg)

	go func() {
		if err := app.Listen(addr); err != nil {
			logx.Fatalf("Server failed: %v", err)
		}
	}()
	logx.Infof("Listening on %s", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logx.Info("Shutting down...")
	if err := app.Shutdown(); err != nil {
		logx.Errorf("Shutdown error: %v", err)
	}
}

func listenAddr(cfg *config.Config) string {
	return fmt.Sprintf(":%d", cfg.Server.Port)
}
