package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/minsu/bakehouse/internal/model"
)

// RateLimiterConfig 는 레이트 리밋 설정을 보관한다.
type RateLimiterConfig struct {
	GeneralRate     rate.Limit    // API 전반의 레이트(req/sec). 120/60 = 2 req/sec
	GeneralBurst    int           // API 전반의 버스트 크기
	EmailRate       rate.Limit    // 메일 발송의 레이트(req/sec). 5/60
	EmailBurst      int           // 메일 발송의 버스트 크기
	CleanupInterval time.Duration // 만료 엔트리의 정리 간격
}

// DefaultRateLimiterConfig 는 기본 레이트 리밋 설정을 반환한다.
// API 전반 120 req/min/user, 메일 발송 5 req/min/user.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(120.0 / 60.0), // 2 req/sec
		GeneralBurst:    120,
		EmailRate:       rate.Limit(5.0 / 60.0),
		EmailBurst:      5,
		CleanupInterval: 5 * time.Minute,
	}
}

// userLimiter 는 이용자별 리미터와 마지막 접근 시각을 보관한다.
type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter 는 이용자별 레이트 리밋을 관리한다.
// API 전반용과 메일 발송용 두 종류의 버킷을 제공한다.
type RateLimiter struct {
	config RateLimiterConfig

	generalMu       sync.RWMutex
	generalLimiters map[string]*userLimiter

	emailMu       sync.RWMutex
	emailLimiters map[string]*userLimiter

	stopCh chan struct{}
}

// NewRateLimiter 는 새 RateLimiter를 생성한다.
// 백그라운드에서 만료 엔트리의 정리를 시작한다.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:          config,
		generalLimiters: make(map[string]*userLimiter),
		emailLimiters:   make(map[string]*userLimiter),
		stopCh:          make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop 은 정리용 백그라운드 고루틴을 멈춘다.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// GeneralMiddleware 는 API 전반의 레이트 리밋 미들웨어를 반환한다.
// 인증된 요청은 uid, 미인증 요청은 원격 주소를 키로 쓴다.
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiterKey(r)
			limiter := rl.getOrCreate(&rl.generalMu, rl.generalLimiters, key, rl.config.GeneralRate, rl.config.GeneralBurst)

			if !limiter.Allow() {
				writeRateLimitResponse(w, rl.config.GeneralRate)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// EmailMiddleware 는 메일 발송 전용의 레이트 리밋 미들웨어를 반환한다.
// API 전반의 버킷과 독립적으로 동작한다.
func (rl *RateLimiter) EmailMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiterKey(r)
			limiter := rl.getOrCreate(&rl.emailMu, rl.emailLimiters, key, rl.config.EmailRate, rl.config.EmailBurst)

			if !limiter.Allow() {
				writeRateLimitResponse(w, rl.config.EmailRate)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GeneralLimiterCount 는 현재 관리 중인 API 전반 리미터 수를 반환한다. 테스트용.
func (rl *RateLimiter) GeneralLimiterCount() int {
	rl.generalMu.RLock()
	defer rl.generalMu.RUnlock()
	return len(rl.generalLimiters)
}

// EmailLimiterCount 는 현재 관리 중인 메일 발송 리미터 수를 반환한다. 테스트용.
func (rl *RateLimiter) EmailLimiterCount() int {
	rl.emailMu.RLock()
	defer rl.emailMu.RUnlock()
	return len(rl.emailLimiters)
}

// limiterKey 는 요청의 레이트 리밋 키를 결정한다.
func limiterKey(r *http.Request) string {
	if user, err := UserFromContext(r.Context()); err == nil {
		return user.UID
	}
	return r.RemoteAddr
}

// getOrCreate 는 키의 리미터를 조회하거나 생성한다.
func (rl *RateLimiter) getOrCreate(mu *sync.RWMutex, limiters map[string]*userLimiter, key string, r rate.Limit, burst int) *rate.Limiter {
	mu.RLock()
	ul, exists := limiters[key]
	mu.RUnlock()

	if exists {
		mu.Lock()
		ul.lastAccess = time.Now()
		mu.Unlock()
		return ul.limiter
	}

	mu.Lock()
	defer mu.Unlock()

	// 더블 체크
	if ul, exists := limiters[key]; exists {
		ul.lastAccess = time.Now()
		return ul.limiter
	}

	limiter := rate.NewLimiter(r, burst)
	limiters[key] = &userLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

// cleanupLoop 은 백그라운드에서 만료 엔트리를 주기적으로 정리한다.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup 은 마지막 접근이 CleanupInterval의 2배를 넘은 엔트리를 삭제한다.
func (rl *RateLimiter) cleanup() {
	ttl := rl.config.CleanupInterval * 2

	now := time.Now()

	rl.generalMu.Lock()
	for key, ul := range rl.generalLimiters {
		if now.Sub(ul.lastAccess) > ttl {
			delete(rl.generalLimiters, key)
		}
	}
	rl.generalMu.Unlock()

	rl.emailMu.Lock()
	for key, ul := range rl.emailLimiters {
		if now.Sub(ul.lastAccess) > ttl {
			delete(rl.emailLimiters, key)
		}
	}
	rl.emailMu.Unlock()
}

// writeRateLimitResponse 는 429 Too Many Requests 응답을 쓴다.
// Retry-After 헤더에는 토큰 1개가 보충되기까지의 추정 초를 설정한다.
func writeRateLimitResponse(w http.ResponseWriter, r rate.Limit) {
	retryAfterSec := int(math.Ceil(1.0 / float64(r)))
	if retryAfterSec < 1 {
		retryAfterSec = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
	WriteErrorResponse(w, http.StatusTooManyRequests, &model.APIError{
		Code:     "RATE_LIMIT_EXCEEDED",
		Message:  "요청이 너무 많습니다.",
		Category: "system",
		Action:   "잠시 후 다시 시도해 주세요.",
	})
}
