package restapi

import (
	"fmt"
	"net/http"

	"github.com/laiyunwu/casestudy12/internal/logging"
)

// RecoverPanics turns a panicking handler into a 500 response instead of a
// dropped connection, logging the panic value with a stack trace.
func (api *RestAPI) RecoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				// Tell the server to close this connection after the
				// response is sent.
				w.Header().Set("Connection", "close")
				logging.LogErrorWithStack(api.Logger, "panic recovered",
					fmt.Errorf("%v", rec))
				api.sendEnvelope(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
