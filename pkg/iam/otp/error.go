package otp

import (
	"net/http"

	"github.com/pressroom-io/pressroom/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("OTP")

var (
	CodeSessionNotFound   = ErrRegistry.Register("SESSION_NOT_FOUND", errx.TypeValidation, http.StatusBadRequest, "Verification session not found or expired")
	CodeMismatch          = ErrRegistry.Register("CODE_MISMATCH", errx.TypeValidation, http.StatusBadRequest, "Incorrect verification code")
	CodeAttemptsExhausted = ErrRegistry.Register("ATTEMPTS_EXHAUSTED", errx.TypeBusiness, http.StatusBadRequest, "Too many incorrect codes; start over")
	CodeResendExhausted   = ErrRegistry.Register("RESEND_EXHAUSTED", errx.TypeBusiness, http.StatusBadRequest, "Resend limit reached; start over")
	CodeStoreFailure      = ErrRegistry.Register("STORE_FAILURE", errx.TypeExternal, http.StatusInternalServerError, "Verification backend unavailable")
)

func ErrSessionNotFound() *errx.Error {
	return ErrRegistry.New(CodeSessionNotFound)
}

// ErrMismatch carries how many attempts remain before the challenge burns.
func ErrMismatch(remaining int) *errx.Error {
	return ErrRegistry.New(CodeMismatch).WithDetail("remaining_attempts", remaining)
}

func ErrAttemptsExhausted() *errx.Error {
	return ErrRegistry.New(CodeAttemptsExhausted)
}

func ErrResendExhausted() *errx.Error {
	return ErrRegistry.New(CodeResendExhausted)
}

func ErrStoreFailure(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeStoreFailure, cause)
}
