package principal

import (
	"net/http"

	"github.com/pressroom-io/pressroom/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("PRINCIPAL")

var (
	CodeLookupFailed = ErrRegistry.Register("LOOKUP_FAILED", errx.TypeExternal, http.StatusInternalServerError, "Directory lookup failed")
)

func ErrLookupFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeLookupFailed, cause)
}
