package login

import (
	"net/http"

	"github.com/pressroom-io/pressroom/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("AUTH")

var (
	CodeInvalidCredentials = ErrRegistry.Register("INVALID_CREDENTIALS", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid email or password")
	CodeAccountLocked      = ErrRegistry.Register("ACCOUNT_LOCKED", errx.TypeAuthorization, http.StatusUnauthorized, "Account temporarily locked after too many failed attempts")
	CodeAccountInactive    = ErrRegistry.Register("ACCOUNT_INACTIVE", errx.TypeAuthorization, http.StatusUnauthorized, "Account is deactivated")
	CodeDependencyFailure  = ErrRegistry.Register("DEPENDENCY_UNAVAILABLE", errx.TypeExternal, http.StatusInternalServerError, "Authentication backend unavailable")
)

func ErrInvalidCredentials() *errx.Error {
	return ErrRegistry.New(CodeInvalidCredentials)
}

func ErrAccountLocked() *errx.Error {
	return ErrRegistry.New(CodeAccountLocked)
}

func ErrAccountInactive() *errx.Error {
	return ErrRegistry.New(CodeAccountInactive)
}

func ErrDependencyFailure(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeDependencyFailure, cause)
}
