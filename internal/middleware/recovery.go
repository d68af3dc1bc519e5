package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"caseguard/internal/respond"
)

func Recovery(responder *respond.Responder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					if recovered == http.ErrAbortHandler {
						panic(recovered)
					}
					slog.Error("panic recovered", "error", fmt.Sprintf("%v", recovered), "stack", string(debug.Stack()))
					responder.Error(w, r, fmt.Errorf("panic: %v", recovered))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
