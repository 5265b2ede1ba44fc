package http

import (
	"context"
	"net"
	"net/http"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/utils"
)

// withRemoteAddr records the caller's network address in the request context.
// The rate limiters key their counters by this value, so it must be set
// before any rate-limited handler runs.
func (h *Handler) withRemoteAddr(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr := r.RemoteAddr
		if host, _, err := net.SplitHostPort(addr); err == nil {
			addr = host
		}

		ctx := context.WithValue(r.Context(), utils.RemoteAddrCtxKey, addr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
