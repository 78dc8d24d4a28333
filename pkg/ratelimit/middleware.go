package ratelimit

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pressroom-io/pressroom/pkg/kernel"
	"github.com/pressroom-io/pressroom/pkg/logx"
)

// KeyFunc derives the rate-limit key for a request.
type KeyFunc func(c *fiber.Ctx) string

// IPKey keys by endpoint class and client IP.
func IPKey(class string) KeyFunc {
	return func(c *fiber.Ctx) string {
		return fmt.Sprintf("%s:%s", class, c.IP())
	}
}

// PrincipalKey keys by endpoint class and authenticated user, falling back
// to the client IP for anonymous callers.
func PrincipalKey(class string) KeyFunc {
	return func(c *fiber.Ctx) string {
		if ac, ok := c.Locals(string(kernel.AuthContextKey)).(*kernel.AuthContext); ok && ac.IsValid() {
			return fmt.Sprintf("%s:user:%s", class, ac.UserID)
		}
		return fmt.Sprintf("%s:%s", class, c.IP())
	}
}

func callerRole(c *fiber.Ctx) kernel.Role {
	if ac, ok := c.Locals(string(kernel.AuthContextKey)).(*kernel.AuthContext); ok && ac.IsValid() {
		return ac.Role
	}
	return kernel.RoleAnonymous
}

// failOpen logs a store failure and lets the request through. Abuse guards
// are advisory availability-wise: a broken store must not reject legitimate
// traffic.
func failOpen(c *fiber.Ctx, guard string, err error) error {
	logx.WithError(err).WithField("guard", guard).
		Warn("ratelimit: store unavailable, failing open")
	return c.Next()
}

// Cap is the flat fixed-window guard with progressive penalty. Rejections
// are 429s with Retry-After.
func Cap(l *Limiter, keyFn KeyFunc, max int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := l.AllowWithPenalty(c.UserContext(), keyFn(c), max, window)
		if err != nil {
			return failOpen(c, "cap", err)
		}
		if !res.Allowed {
			return ErrLimitExceeded(res.RetryAfter)
		}
		return c.Next()
	}
}

// RoleCap applies a threshold chosen by caller role; roles missing from the
// table fall back to the anonymous limit.
func RoleCap(l *Limiter, keyFn KeyFunc, limits map[kernel.Role]int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		max, ok := limits[callerRole(c)]
		if !ok {
			max = limits[kernel.RoleAnonymous]
		}

		res, err := l.AllowWithPenalty(c.UserContext(), keyFn(c), max, window)
		if err != nil {
			return failOpen(c, "role_cap", err)
		}
		if !res.Allowed {
			return ErrLimitExceeded(res.RetryAfter)
		}
		return c.Next()
	}
}

// SpeedDown slows callers past a grace count instead of rejecting them.
// Used where full blocking would be disruptive, e.g. search.
func SpeedDown(l *Limiter, keyFn KeyFunc, grace int, window, step, maxDelay time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		delay, err := l.Delay(c.UserContext(), keyFn(c), grace, window, step, maxDelay)
		if err != nil {
			return failOpen(c, "speed_down", err)
		}
		if delay > 0 {
			time.Sleep(delay)
		}
		return c.Next()
	}
}

// Burst is a flat cap with a high ceiling meant to catch DoS-like bursts.
// Violations are logged loudly before rejecting; no penalty escalation, the
// ceiling itself is the restriction.
func Burst(l *Limiter, keyFn KeyFunc, max int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := keyFn(c)
		res, err := l.Allow(c.UserContext(), key, max, window)
		if err != nil {
			return failOpen(c, "burst", err)
		}
		if !res.Allowed {
			logx.WithFields(logx.Fields{
				"key":   key,
				"count": res.Count,
				"ip":    c.IP(),
				"path":  c.Path(),
			}).Warn("ratelimit: burst ceiling hit")
			return ErrLimitExceeded(res.RetryAfter)
		}
		return c.Next()
	}
}
