package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/yourusername/trade-journal/internal/metrics"
	"github.com/yourusername/trade-journal/internal/models"
)

// UserIDHeader attributes a request to a journal user
const UserIDHeader = "x-user-id"

type userIDKey struct{}

// UserIDFromContext returns the attributed user of the request
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey{}).(string)
	return userID
}

func userIDFromRequest(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(UserIDHeader))
}

// requireUser rejects requests without a user attribution
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromRequest(r)
		if userID == "" {
			s.respondError(w, r, models.ErrMissingUser)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey{}, userID)))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// instrument logs every request and records route metrics. The route label
// is the matched mux pattern so path parameters do not explode cardinality.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(route, r.Method, rec.status, duration.Seconds())
		s.requests.LogRequest(r.Method, r.URL.Path, rec.status, duration, userIDFromRequest(r))
	})
}
