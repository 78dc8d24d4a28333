package errx

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RetryAfterDetail is the detail key carrying a retry hint for rate-limit
// errors. The fiber handler surfaces it as a Retry-After header.
const RetryAfterDetail = "retry_after"

// WithRetryAfter attaches a retry hint, rounded up to whole seconds.
func (e *Error) WithRetryAfter(d time.Duration) *Error {
	secs := int64(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return e.WithDetail(RetryAfterDetail, secs)
}

// FiberErrorHandler builds the app-wide fiber error handler. Typed errors
// are rendered with their registered status and code; everything else is a
// generic 500 with no internal detail.
func FiberErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		requestID := c.Get("X-Request-ID")

		if e, ok := err.(*fiber.Error); ok {
			return c.Status(e.Code).JSON(fiber.Map{
				"code":       "HTTP_ERROR",
				"message":    e.Message,
				"request_id": requestID,
			})
		}

		var typed *Error
		if As(err, &typed) {
			if retry, ok := typed.Details[RetryAfterDetail]; ok {
				c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%v", retry))
			}

			body := fiber.Map{
				"code":       typed.Code,
				"message":    typed.Message,
				"type":       string(typed.Type),
				"request_id": requestID,
			}
			if len(typed.Details) > 0 {
				body["details"] = typed.Details
			}
			return c.Status(typed.HTTPStatus).JSON(body)
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"code":       string(TypeInternal),
			"message":    "Unexpected error",
			"request_id": requestID,
		})
	}
}
