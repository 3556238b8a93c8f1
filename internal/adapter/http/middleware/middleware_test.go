package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	t.Run("generates new request ID when not provided", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			requestID := c.GetString(RequestIDKey)
			c.String(http.StatusOK, requestID)
		})

		req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Body.String())
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("uses provided request ID", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			requestID := c.GetString(RequestIDKey)
			c.String(http.StatusOK, requestID)
		})

		req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.Header.Set("X-Request-ID", "custom-request-id-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "custom-request-id-123", w.Body.String())
		assert.Equal(t, "custom-request-id-123", w.Header().Get("X-Request-ID"))
	})
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		expectedLevel zapcore.Level
		expectedMsg   string
	}{
		{name: "logs successful request", status: http.StatusOK, expectedLevel: zapcore.InfoLevel, expectedMsg: "request completed"},
		{name: "logs 4xx request as warning", status: http.StatusBadRequest, expectedLevel: zapcore.WarnLevel, expectedMsg: "request rejected"},
		{name: "logs 5xx request as error", status: http.StatusInternalServerError, expectedLevel: zapcore.ErrorLevel, expectedMsg: "request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)

			router := gin.New()
			router.Use(RequestID())
			router.Use(Logger(zap.New(core)))
			router.GET("/test", func(c *gin.Context) {
				c.String(tt.status, "body")
			})

			req, _ := http.NewRequest(http.MethodGet, "/test?q=1", http.NoBody)
			req.Header.Set(RequestIDHeader, "log-id")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.expectedLevel, entry.Level)
			assert.Equal(t, tt.expectedMsg, entry.Message)

			fields := entry.ContextMap()
			assert.Equal(t, "log-id", fields["request_id"])
			assert.Equal(t, "/test", fields["path"])
			assert.Equal(t, "q=1", fields["query"])
			assert.Equal(t, int64(tt.status), fields["status"])
		})
	}
}

func TestRecovery(t *testing.T) {
	logger := zap.NewNop()

	t.Run("recovers from panic", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)

		router := gin.New()
		router.Use(RequestID())
		router.Use(Recovery(zap.New(core)))
		router.GET("/test", func(c *gin.Context) {
			panic("test panic")
		})

		req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
		assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	})

	t.Run("passes through when no panic", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.Use(Recovery(logger))
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCORS(t *testing.T) {
	t.Run("sets allow origin on simple requests", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS())
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.Header.Set("Origin", "https://shop.example")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), http.CanonicalHeaderKey(RequestIDHeader))
	})

	t.Run("handles OPTIONS preflight", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS())
		router.POST("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		req, _ := http.NewRequest(http.MethodOptions, "/test", http.NoBody)
		req.Header.Set("Origin", "https://shop.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "GET")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
	})
}

func TestRateLimiter(t *testing.T) {
	newRouter := func(l *RateLimiter) *gin.Engine {
		router := gin.New()
		router.Use(RequestID())
		router.POST("/scan", l.Middleware(), func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})
		return router
	}
	hit := func(router *gin.Engine, ip string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest(http.MethodPost, "/scan", http.NoBody)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("allows the burst then rejects", func(t *testing.T) {
		limiter := NewRateLimiter(60, 2)
		now := time.Date(2026, 1, 18, 12, 0, 0, 0, time.UTC)
		limiter.now = func() time.Time { return now }
		router := newRouter(limiter)

		assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)
		assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)

		w := hit(router, "10.0.0.1")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "1", w.Header().Get("Retry-After"))

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "RATE_LIMITED", body["error"].(map[string]interface{})["code"])
	})

	t.Run("clients are limited separately", func(t *testing.T) {
		limiter := NewRateLimiter(60, 1)
		now := time.Date(2026, 1, 18, 12, 0, 0, 0, time.UTC)
		limiter.now = func() time.Time { return now }
		router := newRouter(limiter)

		assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)
		assert.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.1").Code)
		assert.Equal(t, http.StatusOK, hit(router, "10.0.0.2").Code)
	})

	t.Run("tokens refill over time", func(t *testing.T) {
		limiter := NewRateLimiter(60, 1)
		now := time.Date(2026, 1, 18, 12, 0, 0, 0, time.UTC)
		limiter.now = func() time.Time { return now }
		router := newRouter(limiter)

		assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)
		assert.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.1").Code)

		now = now.Add(time.Second)
		assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)
	})

	t.Run("idle clients are forgotten", func(t *testing.T) {
		limiter := NewRateLimiter(60, 1)
		now := time.Date(2026, 1, 18, 12, 0, 0, 0, time.UTC)
		limiter.now = func() time.Time { return now }

		ok, _ := limiter.allow("10.0.0.1")
		assert.True(t, ok)

		now = now.Add(2 * limiterIdleTTL)
		_, _ = limiter.allow("10.0.0.2")

		assert.NotContains(t, limiter.clients, "10.0.0.1")
		assert.Contains(t, limiter.clients, "10.0.0.2")
	})
}
