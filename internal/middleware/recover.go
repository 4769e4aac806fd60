package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/umar/usergroups/internal/apierror"
)

func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				slog.Error("panic serving request", "panic", v, "path", r.URL.Path, "stack", string(debug.Stack()))
				apierror.Write(w, apierror.Internal())
			}
		}()
		next.ServeHTTP(w, r)
	})
}
