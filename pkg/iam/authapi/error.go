package authapi

import (
	"net/http"

	"github.com/pressroom-io/pressroom/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("AUTHZ")

var (
	CodeAccessDenied = ErrRegistry.Register("ACCESS_DENIED", errx.TypeForbidden, http.StatusForbidden, "Access denied")
)

func ErrAccessDenied() *errx.Error {
	return ErrRegistry.New(CodeAccessDenied)
}
