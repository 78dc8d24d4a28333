package kvredis

import (
	"net/http"

	"github.com/pressroom-io/pressroom/pkg/errx"
)

var kvErrors = errx.NewRegistry("KV")

var (
	ErrGet       = kvErrors.Register("GET_FAILED", errx.TypeExternal, http.StatusInternalServerError, "Failed to read from store")
	ErrSet       = kvErrors.Register("SET_FAILED", errx.TypeExternal, http.StatusInternalServerError, "Failed to write to store")
	ErrDel       = kvErrors.Register("DEL_FAILED", errx.TypeExternal, http.StatusInternalServerError, "Failed to delete from store")
	ErrIncrement = kvErrors.Register("INCR_FAILED", errx.TypeExternal, http.StatusInternalServerError, "Failed to increment counter")
)
