package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/minsu/bakehouse/internal/authstate"
	"github.com/minsu/bakehouse/internal/model"
)

func testRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(1),
		GeneralBurst:    2,
		EmailRate:       rate.Limit(1),
		EmailBurst:      1,
		CleanupInterval: time.Hour,
	}
}

func authedRequest(uid string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	return req.WithContext(ContextWithResolution(req.Context(), &authstate.Resolution{
		User:   &model.User{UID: uid},
		Source: authstate.SourceSession,
	}))
}

func TestGeneralMiddlewareAllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, authedRequest("naver_123"))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, w.Code)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest("naver_123"))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("burst exceeded: status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header must be set")
	}
}

func TestGeneralMiddlewareIsolatesUsers(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 한 이용자가 버스트를 소진해도 다른 이용자는 영향받지 않는다.
	for i := 0; i < 3; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), authedRequest("naver_123"))
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest("kakao_987"))
	if w.Code != http.StatusOK {
		t.Errorf("other user affected: status = %d, want 200", w.Code)
	}
	if rl.GeneralLimiterCount() != 2 {
		t.Errorf("limiter count = %d, want 2", rl.GeneralLimiterCount())
	}
}

func TestEmailMiddlewareIndependentBucket(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	general := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	email := rl.EmailMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 메일 버킷(버스트 1)을 소진한다.
	email.ServeHTTP(httptest.NewRecorder(), authedRequest("naver_123"))
	w := httptest.NewRecorder()
	email.ServeHTTP(w, authedRequest("naver_123"))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("email bucket: status = %d, want 429", w.Code)
	}

	// 일반 버킷은 별도로 동작한다.
	w = httptest.NewRecorder()
	general.ServeHTTP(w, authedRequest("naver_123"))
	if w.Code != http.StatusOK {
		t.Errorf("general bucket affected: status = %d, want 200", w.Code)
	}
}

func TestAnonymousRequestsKeyedByRemoteAddr(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.RemoteAddr = "203.0.113.1:50000"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if rl.GeneralLimiterCount() != 1 {
		t.Errorf("limiter count = %d, want 1", rl.GeneralLimiterCount())
	}
}

func TestCleanupRemovesStaleEntries(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), authedRequest("naver_123"))

	// 마지막 접근을 과거로 되돌려 정리 대상으로 만든다.
	rl.generalMu.Lock()
	for _, ul := range rl.generalLimiters {
		ul.lastAccess = time.Now().Add(-3 * time.Hour)
	}
	rl.generalMu.Unlock()

	rl.cleanup()

	if rl.GeneralLimiterCount() != 0 {
		t.Errorf("limiter count after cleanup = %d, want 0", rl.GeneralLimiterCount())
	}
}
