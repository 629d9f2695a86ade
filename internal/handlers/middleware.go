package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Teknovat/farm-tracker-sub001/internal/permissions"
	"github.com/Teknovat/farm-tracker-sub001/internal/security"
	"github.com/Teknovat/farm-tracker-sub001/internal/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	ClaimsContextKey    ContextKey = "claims"
	RequestIDContextKey ContextKey = "request_id"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	sessions *session.Manager
	checker  *permissions.Checker
	limiter  *security.RateLimiter
	logger   *zap.Logger
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(sessions *session.Manager, checker *permissions.Checker, limiter *security.RateLimiter, logger *zap.Logger) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{
		sessions: sessions,
		checker:  checker,
		limiter:  limiter,
		logger:   logger,
	}
}

// RequestID tags every request with an identifier for log correlation.
func (m *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), RequestIDContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// Logging logs every request with method, path, status and duration.
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		requestID, _ := r.Context().Value(RequestIDContextKey).(string)
		m.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", requestID),
		)
	})
}

// WithSession verifies the session cookie, slides its expiry forward
// and stores the claims in the context. Requests without a valid
// session pass through unauthenticated.
func (m *Middleware) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := m.sessions.Refresh(w, r)
		if claims != nil {
			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects unauthenticated requests.
func (m *Middleware) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if GetClaims(r.Context()) == nil {
			respondError(w, http.StatusUnauthorized, CodeUnauthenticated, "authentication required")
			return
		}
		next(w, r)
	}
}

// RequireFarmAccess rejects requests whose user may not perform the
// action on the farm named in the path. The membership row is checked
// on every request, so role changes apply immediately.
func (m *Middleware) RequireFarmAccess(action permissions.Action, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaims(r.Context())
		if claims == nil {
			respondError(w, http.StatusUnauthorized, CodeUnauthenticated, "authentication required")
			return
		}

		farmID, err := parseIDParam(r, "farmID")
		if err != nil {
			respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
			return
		}

		if !m.checker.CheckFarmAccess(claims.UserID, farmID, action) {
			respondError(w, http.StatusForbidden, CodeForbidden, "insufficient permissions")
			return
		}

		next(w, r)
	}
}

// RateLimit rejects clients exceeding the request budget. Applied to
// credential and invitation endpoints.
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.limiter.Allow(security.GetClientIP(r)) {
			respondError(w, http.StatusTooManyRequests, CodeRateLimited, "too many requests")
			return
		}
		next(w, r)
	}
}

// GetClaims retrieves the session claims from the request context.
func GetClaims(ctx context.Context) *session.Claims {
	claims, ok := ctx.Value(ClaimsContextKey).(*session.Claims)
	if !ok {
		return nil
	}
	return claims
}
