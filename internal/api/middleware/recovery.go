package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
	"github.com/stencilproject/stencil/internal/api/problem"
)

// Recovery converts handler panics into 500 problem responses so one bad
// request cannot take the process down.
func Recovery(env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					zerolog.Ctx(r.Context()).Error().
						Interface("panic", rec).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Str("stack", string(debug.Stack())).
						Msg("handler panic")
					problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Internal server error", nil, env)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
