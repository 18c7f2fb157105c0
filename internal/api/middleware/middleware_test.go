package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/anstrom/scangate/internal/auth"
	"github.com/anstrom/scangate/internal/logging"
	"github.com/anstrom/scangate/internal/metrics/mocks"
)

func createTestLogger(buf *bytes.Buffer) *logging.Logger {
	return logging.NewWithWriter(logging.Config{Level: logging.LevelDebug, Format: logging.FormatJSON}, buf)
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
})

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		limits   []Limit
		requests []string
		expected []bool
	}{
		{
			name:     "under limit",
			limits:   []Limit{{5, time.Minute}},
			requests: []string{"1.1.1.1", "1.1.1.1", "1.1.1.1"},
			expected: []bool{true, true, true},
		},
		{
			name:     "over limit",
			limits:   []Limit{{2, time.Minute}},
			requests: []string{"1.1.1.1", "1.1.1.1", "1.1.1.1"},
			expected: []bool{true, true, false},
		},
		{
			name:     "different IPs",
			limits:   []Limit{{1, time.Minute}},
			requests: []string{"1.1.1.1", "2.2.2.2", "1.1.1.1"},
			expected: []bool{true, true, false},
		},
		{
			name:     "tightest of several limits wins",
			limits:   []Limit{{50, time.Hour}, {1, time.Second}},
			requests: []string{"1.1.1.1", "1.1.1.1"},
			expected: []bool{true, false},
		},
		{
			name:     "no limits",
			limits:   nil,
			requests: []string{"1.1.1.1", "1.1.1.1"},
			expected: []bool{true, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := NewRateLimiter(tt.limits...)
			for i, ip := range tt.requests {
				allowed, _ := limiter.Allow(ip)
				assert.Equal(t, tt.expected[i], allowed, "Request %d for IP %s", i+1, ip)
			}
		})
	}
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(Limit{Requests: 50, Window: time.Hour}, Limit{Requests: 1, Window: time.Second})
	limiter.now = func() time.Time { return now }

	allowed, _ := limiter.Allow("10.0.0.1")
	assert.True(t, allowed)

	allowed, hit := limiter.Allow("10.0.0.1")
	assert.False(t, allowed)
	assert.Equal(t, Limit{Requests: 1, Window: time.Second}, hit)

	// Denied requests are not recorded, so the hourly budget only counts 49 more.
	for i := 0; i < 49; i++ {
		now = now.Add(2 * time.Second)
		allowed, _ = limiter.Allow("10.0.0.1")
		require.True(t, allowed, "request %d", i)
	}

	now = now.Add(2 * time.Second)
	allowed, hit = limiter.Allow("10.0.0.1")
	assert.False(t, allowed)
	assert.Equal(t, time.Hour, hit.Window)

	now = now.Add(time.Hour)
	allowed, _ = limiter.Allow("10.0.0.1")
	assert.True(t, allowed)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Now()
	limiter := NewRateLimiter(Limit{Requests: 10, Window: time.Minute})
	limiter.now = func() time.Time { return now }

	limiter.Allow("1.1.1.1")
	limiter.Allow("2.2.2.2")
	assert.Equal(t, 2, limiter.Tracked())

	now = now.Add(2 * time.Minute)
	limiter.Allow("2.2.2.2")
	limiter.Cleanup()
	assert.Equal(t, 1, limiter.Tracked())
}

func TestRateLimiter_Concurrent(t *testing.T) {
	limiter := NewRateLimiter(Limit{Requests: 100, Window: time.Minute})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := limiter.Allow("1.1.1.1"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowed)
}

func TestRateLimitMiddleware(t *testing.T) {
	ctrl := gomock.NewController(t)
	recorder := mocks.NewMockRecorder(ctrl)
	recorder.EXPECT().IncrementRateLimited("scan").Times(1)

	var logs bytes.Buffer
	limiter := NewRateLimiter(Limit{Requests: 1, Window: time.Minute})
	handler := RequestID()(RateLimit(limiter, "scan", createTestLogger(&logs), recorder)(okHandler))

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	handler.ServeHTTP(first, req)
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/scans", nil)
	req.RemoteAddr = "192.0.2.10:6666"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	handler.ServeHTTP(second, req)

	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
	body := decodeBody(t, second)
	assert.Equal(t, "Rate limit exceeded", body["error"])
	assert.NotEmpty(t, body["request_id"])
	assert.Contains(t, logs.String(), "Rate limit exceeded")
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Len(t, seen, 36)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})

	t.Run("propagated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "upstream-123")
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "upstream-123", seen)
	})

	t.Run("malformed header replaced", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "bad id\nInjected: yes")
		handler.ServeHTTP(rec, req)
		assert.NotContains(t, seen, "Injected")
		assert.Len(t, seen, 36)
	})

	t.Run("missing", func(t *testing.T) {
		assert.Equal(t, "unknown", GetRequestID(httptest.NewRequest(http.MethodGet, "/", nil)))
	})
}

func TestLogging(t *testing.T) {
	var logs bytes.Buffer
	handler := RequestID()(Logging(createTestLogger(&logs))(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, "HTTP request completed", entry["msg"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, float64(200), entry["status_code"])
	assert.Equal(t, float64(2), entry["response_size"])
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	ctrl := gomock.NewController(t)
	recorder := mocks.NewMockRecorder(ctrl)
	recorder.EXPECT().IncrementHTTPRequests("GET", "/download/{format}", "200")
	recorder.EXPECT().RecordHTTPDuration("GET", "/download/{format}", gomock.Any())

	router := mux.NewRouter()
	router.Use(Metrics(recorder))
	router.Handle("/download/{format}", okHandler)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/download/csv", nil))
}

func TestRecovery(t *testing.T) {
	var logs bytes.Buffer
	handler := RequestID()(Recovery(createTestLogger(&logs))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("secret internal detail")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Internal server error", body["error"])
	assert.NotEmpty(t, body["error_id"])
	assert.NotContains(t, rec.Body.String(), "secret internal detail")
	assert.Contains(t, logs.String(), body["error_id"].(string))
	assert.Contains(t, logs.String(), "secret internal detail")
}

func TestAuthentication(t *testing.T) {
	key, err := auth.GenerateAPIKey("test")
	require.NoError(t, err)

	var logs bytes.Buffer
	keyring := auth.NewKeyring([]string{key.Hash})
	handler := Authentication(keyring, []string{"/api/v1/health", "/swagger/"}, createTestLogger(&logs))(okHandler)

	tests := []struct {
		name   string
		path   string
		method string
		header map[string]string
		status int
	}{
		{"public path", "/api/v1/health", http.MethodGet, nil, http.StatusOK},
		{"public prefix", "/swagger/index.html", http.MethodGet, nil, http.StatusOK},
		{"prefix is not exact", "/swagger", http.MethodGet, nil, http.StatusUnauthorized},
		{"preflight", "/api/v1/scans", http.MethodOptions, nil, http.StatusOK},
		{"missing key", "/api/v1/scans", http.MethodPost, nil, http.StatusUnauthorized},
		{"x-api-key", "/api/v1/scans", http.MethodPost, map[string]string{"X-API-Key": key.Key}, http.StatusOK},
		{"bearer", "/api/v1/scans", http.MethodPost, map[string]string{"Authorization": "Bearer " + key.Key}, http.StatusOK},
		{"wrong key", "/api/v1/scans", http.MethodPost,
			map[string]string{"X-API-Key": "sg_abcdefghijklmnopqrstuvwxyz234567"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	assert.Contains(t, logs.String(), `"security":true`)
	assert.NotContains(t, logs.String(), key.Key)
}

func TestContentType(t *testing.T) {
	handler := ContentType()(okHandler)

	tests := []struct {
		method      string
		contentType string
		status      int
	}{
		{http.MethodGet, "text/plain", http.StatusOK},
		{http.MethodPost, "", http.StatusOK},
		{http.MethodPost, "application/json; charset=utf-8", http.StatusOK},
		{http.MethodPost, "application/x-www-form-urlencoded", http.StatusOK},
		{http.MethodPost, "text/xml", http.StatusUnsupportedMediaType},
		{http.MethodPut, "multipart/form-data", http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, "/", strings.NewReader("{}"))
		if tt.contentType != "" {
			req.Header.Set("Content-Type", tt.contentType)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, tt.status, rec.Code, "%s %q", tt.method, tt.contentType)
	}
}

func TestMaxBodySize(t *testing.T) {
	var readErr error
	handler := MaxBodySize(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = r.Body.Read(make([]byte, 64))
	}))

	handler.ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64))))
	assert.Error(t, readErr)
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders()(okHandler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", rec.Header().Get("X-XSS-Protection"))
	assert.Equal(t, "max-age=31536000; includeSubDomains", rec.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, "default-src 'self'", rec.Header().Get("Content-Security-Policy"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "'unsafe-inline'")
}

func TestClientIP(t *testing.T) {
	tests := map[string]string{
		"192.0.2.1:1234":   "192.0.2.1",
		"[2001:db8::1]:80": "2001:db8::1",
		"pipe":             "pipe",
		"":                 "unknown",
	}
	for remote, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		assert.Equal(t, want, ClientIP(req), "remote %q", remote)
	}
}
