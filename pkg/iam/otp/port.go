package otp

import "context"

// Notifier delivers a one-time code to its destination. Delivery is
// fire-and-forget with respect to challenge persistence: a failed send
// leaves the stored challenge intact and the user falls back to resend.
type Notifier interface {
	SendCode(ctx context.Context, destination, displayName, code string) error
}
