package otp

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/pressroom-io/pressroom/pkg/kernel"
)

// Challenge is the server-side state behind one opaque OTP token. Exactly
// one live challenge exists per token; a successful verify consumes it.
type Challenge struct {
	UserID      kernel.UserID `json:"user_id"`
	Email       string        `json:"email"`
	Name        string        `json:"name"`
	Code        string        `json:"code"`
	Attempts    int           `json:"attempts"`
	ResendCount int           `json:"resend_count"`
	CreatedAt   time.Time     `json:"created_at"`
}

// GenerateToken returns a 256-bit random opaque token, hex-encoded. The
// token carries no meaning; it only keys the server-side challenge.
func GenerateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// GenerateCode generates a cryptographically secure numeric code of the
// given length, zero-padded.
func GenerateCode(length int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(fmt.Sprintf("%%0%dd", length), n), nil
}

// MaskEmail hides most of the local part: "editor@example.com" becomes
// "ed****@example.com". Degenerate inputs are masked entirely.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "****"
	}

	local, domain := email[:at], email[at:]
	visible := 2
	if len(local) < 3 {
		visible = 1
	}
	return local[:visible] + strings.Repeat("*", len(local)-visible) + domain
}
