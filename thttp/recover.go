package thttp

import (
	"net/http"
	"runtime/debug"

	"github.com/ridge/parallel"
)

// Recover is a middleware that turns a panic in a handler into a 500
// response and stops the server running the handler with the panic
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
			panics, ok := r.Context().Value(panicKey).(chan error)
			if !ok {
				return
			}
			select {
			case panics <- parallel.ErrPanic{Value: p, Stack: debug.Stack()}:
			default:
			}
		}()
		next.ServeHTTP(w, r)
	})
}
