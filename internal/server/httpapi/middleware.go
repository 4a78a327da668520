package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/netx"
)

type ctxKey string

const accessTokenKey ctxKey = "accessToken"

// bearerAuth rejects requests without a bearer Authorization header and
// stores the token in the request context.
func bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := netx.BearerToken(r.Header.Get(common.AuthorizationHeaderName))
		if !ok {
			respondWithError(w, common.ErrMissingCredentials)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), accessTokenKey, token)))
	})
}

func accessTokenFromContext(ctx context.Context) string {
	v, _ := ctx.Value(accessTokenKey).(string)
	return v
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Debug(r.Context(), "http request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}
