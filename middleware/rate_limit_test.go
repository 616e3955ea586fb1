package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID())
	router.Use(RateLimit(5, time.Minute))
	router.POST("/api/analyses", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "COMPLETED"})
	})

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("POST", "/api/analyses", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("request %d: expected status 200, got %d", i+1, w.Code)
		}
	}

	req := httptest.NewRequest("POST", "/api/analyses", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on 429 response")
	}
}

func TestRateLimitIsPerClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RateLimit(2, time.Minute))
	router.POST("/api/analyses", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "COMPLETED"})
	})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/api/analyses", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0.1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}

	// A client that has not hit the limit is unaffected.
	req := httptest.NewRequest("POST", "/api/analyses", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.2")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("different IP should not be rate limited, got %d", w.Code)
	}
}

func TestRateLimiterAllow(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)

	for i := 0; i < 2; i++ {
		if ok, _ := limiter.Allow("10.0.0.1"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	ok, retryAfter := limiter.Allow("10.0.0.1")
	if ok {
		t.Fatal("third request should be blocked")
	}
	if retryAfter <= 0 || retryAfter > time.Minute {
		t.Errorf("expected retry-after within the window, got %v", retryAfter)
	}
}
