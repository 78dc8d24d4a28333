package token

import (
	"net/http"

	"github.com/pressroom-io/pressroom/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("TOKEN")

var (
	CodeInvalid          = ErrRegistry.Register("INVALID", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid token")
	CodeExpired          = ErrRegistry.Register("EXPIRED", errx.TypeAuthorization, http.StatusUnauthorized, "Token expired")
	CodeRevoked          = ErrRegistry.Register("REVOKED", errx.TypeAuthorization, http.StatusUnauthorized, "Token revoked")
	CodeWrongType        = ErrRegistry.Register("WRONG_TYPE", errx.TypeAuthorization, http.StatusUnauthorized, "Wrong token type")
	CodeUserInactive     = ErrRegistry.Register("USER_INACTIVE", errx.TypeAuthorization, http.StatusUnauthorized, "Account is deactivated")
	CodeGenerationFailed = ErrRegistry.Register("GENERATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Token generation failed")
	CodeStoreFailure     = ErrRegistry.Register("STORE_FAILURE", errx.TypeExternal, http.StatusInternalServerError, "Token backend unavailable")
)

func ErrInvalid() *errx.Error      { return ErrRegistry.New(CodeInvalid) }
func ErrExpired() *errx.Error      { return ErrRegistry.New(CodeExpired) }
func ErrRevoked() *errx.Error      { return ErrRegistry.New(CodeRevoked) }
func ErrWrongType() *errx.Error    { return ErrRegistry.New(CodeWrongType) }
func ErrUserInactive() *errx.Error { return ErrRegistry.New(CodeUserInactive) }

func ErrGenerationFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeGenerationFailed, cause)
}

func ErrStoreFailure(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeStoreFailure, cause)
}
