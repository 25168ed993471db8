package middleware

import (
	"net/http"
	"runtime/debug"

	reqctx "infinite-experiment/flighttracker/internal/context"
	"infinite-experiment/flighttracker/internal/logging"
)

// Recoverer turns a handler panic into a logged 500 instead of a dropped connection
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logging.WithRequest(reqctx.GetRequestID(r.Context()), r.URL.Path).Errorw("Handler panicked",
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
