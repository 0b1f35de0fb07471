package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetIP_XForwardedFor_SingleIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-For", "192.168.1.1")

	ip := getIP(req)
	if ip != "192.168.1.1" {
		t.Errorf("getIP() = %q, want %q", ip, "192.168.1.1")
	}
}

func TestGetIP_XForwardedFor_MultipleIPs(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	// Only the first entry is the originating client; the rest are proxies.
	req.Header.Set("X-Forwarded-For", "192.168.1.1, 10.0.0.1, 172.16.0.1")

	ip := getIP(req)
	if ip != "192.168.1.1" {
		t.Errorf("getIP() = %q, want %q (first IP only)", ip, "192.168.1.1")
	}
}

func TestGetIP_XForwardedFor_WithSpaces(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-For", "  192.168.1.1  ,  10.0.0.1  ")

	ip := getIP(req)
	if ip != "192.168.1.1" {
		t.Errorf("getIP() = %q, want %q (trimmed)", ip, "192.168.1.1")
	}
}

func TestGetIP_FallbackToRemoteAddr(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "127.0.0.1:12345"

	ip := getIP(req)
	if ip != "127.0.0.1" {
		t.Errorf("getIP() = %q, want %q", ip, "127.0.0.1")
	}
}

func TestRateLimiter_AllowsBurst(t *testing.T) {
	limiter := NewRateLimiter(1, 3) // 1 req/sec, burst of 3

	handler := limiter.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("Request %d: got status %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	limiter := NewRateLimiter(0.1, 2) // Very slow rate, burst of 2

	handler := limiter.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Got status %d, want %d (rate limited)", rec.Code, http.StatusTooManyRequests)
	}
}

func TestRateLimiter_DifferentIPs(t *testing.T) {
	limiter := NewRateLimiter(0.1, 1) // Very slow rate, burst of 1

	handler := limiter.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req1 := httptest.NewRequest("GET", "/", nil)
	req1.RemoteAddr = "192.168.1.1:12345"
	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, req1)

	if rec1.Code != http.StatusOK {
		t.Errorf("First IP first request: got %d, want %d", rec1.Code, http.StatusOK)
	}

	// A second IP gets its own limiter.
	req2 := httptest.NewRequest("GET", "/", nil)
	req2.RemoteAddr = "192.168.1.2:12345"
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)

	if rec2.Code != http.StatusOK {
		t.Errorf("Second IP first request: got %d, want %d", rec2.Code, http.StatusOK)
	}
}

func TestLimitAuth_Creates(t *testing.T) {
	handler := LimitAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/api/login", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("LimitAuth: got status %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestLimitAssistant_Creates(t *testing.T) {
	handler := LimitAssistant(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/api/assistant/chat", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("LimitAssistant: got status %d, want %d", rec.Code, http.StatusOK)
	}
}
