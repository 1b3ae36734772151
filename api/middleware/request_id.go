package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/chirpy-dev/chirpy-backend/pkg/logger"
)

const (
	requestIDHeader    = "X-Request-Id"
	maxRequestIDLength = 128
)

// Inbound ids end up verbatim in log lines.
var requestIDRe = regexp.MustCompile(`^[A-Za-z0-9._:\-]+$`)

// RequestID propagates a well-formed inbound X-Request-Id or mints one, and
// tags the log context with it.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if len(reqID) > maxRequestIDLength || !requestIDRe.MatchString(reqID) {
				reqID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
