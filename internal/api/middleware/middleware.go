// Package middleware provides HTTP middleware functions for the scangate API server.
// This package implements request IDs, logging, metrics, authentication, rate
// limiting, and other cross-cutting concerns for API requests.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/anstrom/scangate/internal/auth"
	"github.com/anstrom/scangate/internal/logging"
	"github.com/anstrom/scangate/internal/metrics"
)

// HTTP method constants
const (
	methodPOST    = "POST"
	methodPUT     = "PUT"
	methodOPTIONS = "OPTIONS"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLength = 64

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestID assigns every request an ID. A well-formed incoming X-Request-ID
// is kept; otherwise a UUID is generated. The ID is echoed in the response.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if !validRequestID(requestID) {
				requestID = uuid.New().String()
			}

			ctx := logging.ContextWithRequestID(r.Context(), requestID)
			ctx = context.WithValue(ctx, requestIDKey, requestID)
			w.Header().Set(RequestIDHeader, requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, c := range id {
		if !(c == '-' || c == '_' || c == '.' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}

// GetRequestID extracts the request ID from context.
func GetRequestID(r *http.Request) string {
	if requestID, ok := r.Context().Value(requestIDKey).(string); ok {
		return requestID
	}
	return "unknown"
}

// Logging creates a logging middleware that logs HTTP requests and responses.
func Logging(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrap(w)

			next.ServeHTTP(wrapped, r)

			logger.WithContext(r.Context()).Info("HTTP request completed",
				"method", r.Method,
				"path", routePath(r),
				"status_code", wrapped.statusCode,
				"response_size", wrapped.size,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", ClientIP(r),
				"user_agent", r.UserAgent())
		})
	}
}

// Metrics creates a metrics middleware that collects HTTP request metrics.
// Paths are reported as route templates to keep label cardinality bounded.
func Metrics(recorder metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrap(w)

			next.ServeHTTP(wrapped, r)

			path := routePath(r)
			recorder.IncrementHTTPRequests(r.Method, path, strconv.Itoa(wrapped.statusCode))
			recorder.RecordHTTPDuration(r.Method, path, time.Since(start))
		})
	}
}

// Recovery creates a recovery middleware that catches panics. The client only
// sees an error ID that can be matched against the log entry.
func Recovery(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					errorID := uuid.New().String()

					logger.WithContext(r.Context()).Error("HTTP request panic recovered",
						"error_id", errorID,
						"method", r.Method,
						"path", r.URL.Path,
						"panic", err,
						"stack", string(debug.Stack()),
						"remote_addr", ClientIP(r))

					writeJSONError(w, r, http.StatusInternalServerError, map[string]interface{}{
						"error":    "Internal server error",
						"message":  "An unexpected error occurred",
						"error_id": errorID,
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Authentication creates an authentication middleware that checks API keys
// against the keyring. Paths in public are served without a key; entries
// ending in a slash match every path below them.
func Authentication(keyring *auth.Keyring, public []string, logger *logging.Logger) func(http.Handler) http.Handler {
	publicSet := make(map[string]bool, len(public))
	var publicPrefixes []string
	for _, p := range public {
		if len(p) > 1 && strings.HasSuffix(p, "/") {
			publicPrefixes = append(publicPrefixes, p)
			continue
		}
		publicSet[p] = true
	}
	isPublic := func(path string) bool {
		if publicSet[path] {
			return true
		}
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.Path) || r.Method == methodOPTIONS {
				next.ServeHTTP(w, r)
				return
			}

			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
					apiKey = strings.TrimPrefix(authz, "Bearer ")
				}
			}

			if apiKey == "" {
				logger.WithContext(r.Context()).Warn("API request without authentication",
					"path", r.URL.Path,
					"remote_addr", ClientIP(r))
				writeJSONError(w, r, http.StatusUnauthorized, map[string]interface{}{
					"error":   "Authentication required",
					"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
				})
				return
			}

			if !keyring.Verify(apiKey) {
				logger.WithContext(r.Context()).WarnSecurity("API request with invalid key",
					"path", r.URL.Path,
					"key_prefix", auth.CreateDisplayPrefix(apiKey),
					"remote_addr", ClientIP(r))
				writeJSONError(w, r, http.StatusUnauthorized, map[string]interface{}{
					"error": "Authentication failed: Invalid API key",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit creates a rate limiting middleware keyed by client IP. name labels
// the limiter in logs and metrics.
func RateLimit(limiter *RateLimiter, name string, logger *logging.Logger, recorder metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := ClientIP(r)

			allowed, hit := limiter.Allow(clientIP)
			if !allowed {
				recorder.IncrementRateLimited(name)
				logger.WithContext(r.Context()).Warn("Rate limit exceeded",
					"limiter", name,
					"client_ip", clientIP,
					"path", r.URL.Path,
					"limit", hit.String())

				w.Header().Set("Retry-After", strconv.Itoa(int(hit.Window.Seconds()+0.5)))
				w.Header().Set("X-RateLimit-Limit", hit.String())
				writeJSONError(w, r, http.StatusTooManyRequests, map[string]interface{}{
					"error":       "Rate limit exceeded",
					"message":     fmt.Sprintf("Maximum %d requests per %s", hit.Requests, hit.Window),
					"retry_after": hit.Window.Seconds(),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ContentType rejects POST and PUT bodies that are neither JSON nor a form.
func ContentType() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != methodPOST && r.Method != methodPUT {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType != "" &&
				!strings.HasPrefix(contentType, "application/json") &&
				!strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
				writeJSONError(w, r, http.StatusUnsupportedMediaType, map[string]interface{}{
					"error":    "Unsupported media type",
					"message":  "Content-Type must be application/json",
					"expected": "application/json",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// MaxBodySize caps request bodies at limit bytes.
func MaxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && limit > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders adds common security headers to every response.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-XSS-Protection", "1; mode=block")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			// Swagger UI needs inline scripts and styles
			if strings.HasPrefix(r.URL.Path, "/swagger/") {
				h.Set("Content-Security-Policy",
					"default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			} else {
				h.Set("Content-Security-Policy", "default-src 'self'")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the peer address of the request. Forwarding headers are
// ignored; they are client controlled and would let callers pick their own
// rate limit bucket.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if r.RemoteAddr == "" {
			return "unknown"
		}
		return r.RemoteAddr
	}
	return host
}

// routePath returns the matched mux route template, or the raw path.
func routePath(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

func writeJSONError(w http.ResponseWriter, r *http.Request, status int, body map[string]interface{}) {
	body["request_id"] = GetRequestID(r)
	body["timestamp"] = time.Now().UTC()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// responseWriter wraps http.ResponseWriter to capture response information.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int
	wroteHeader bool
}

func wrap(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// WriteHeader captures the status code.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

// Write captures the response size.
func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
