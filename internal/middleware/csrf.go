package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
)

const (
	// csrfCookieName 은 CSRF 토큰을 담는 쿠키 이름.
	// 프런트엔드가 JavaScript로 읽을 수 있도록 HttpOnly가 아니다.
	csrfCookieName = "csrf_token"

	// csrfHeaderName 은 요청 헤더에서 CSRF 토큰을 읽는 헤더 이름.
	csrfHeaderName = "X-CSRF-Token"
)

// CSRFConfig 는 CSRF 미들웨어 설정.
type CSRFConfig struct {
	CookieSecure bool
	CookieDomain string
}

// NewCSRFMiddleware 는 CSRF 토큰 생성/검증 미들웨어를 반환한다.
// 안전한 메서드(GET, HEAD, OPTIONS)는 검증을 건너뛰고 토큰 쿠키를 설정하며,
// 상태 변경 메서드(POST, PUT, PATCH, DELETE)는 토큰 검증을 필수로 한다.
func NewCSRFMiddleware(config CSRFConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				ensureCSRFCookie(w, r, config)
				next.ServeHTTP(w, r)
				return
			}

			cookieToken, err := r.Cookie(csrfCookieName)
			if err != nil || cookieToken.Value == "" {
				rejectCSRF(w, r, "missing cookie token")
				return
			}

			headerToken := r.Header.Get(csrfHeaderName)
			if headerToken == "" {
				rejectCSRF(w, r, "missing header token")
				return
			}

			if cookieToken.Value != headerToken {
				rejectCSRF(w, r, "token mismatch")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rejectCSRF(w http.ResponseWriter, r *http.Request, reason string) {
	slog.Warn("CSRF validation failed: "+reason,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
	http.Error(w, "CSRF token validation failed", http.StatusForbidden)
}

// NewCSRFTokenHandler 는 CSRF 토큰 발급 엔드포인트의 핸들러를 반환한다.
// GET /api/csrf-token
// 기존 토큰 쿠키가 있으면 그것을, 없으면 새로 생성해 돌려준다.
func NewCSRFTokenHandler(config CSRFConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var tokenValue string
		if cookie, err := r.Cookie(csrfCookieName); err == nil && cookie.Value != "" {
			tokenValue = cookie.Value
		} else {
			tokenValue = generateCSRFToken()
			setCSRFCookie(w, tokenValue, config)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"csrfToken": tokenValue})
	})
}

// isSafeMethod 는 상태를 변경하지 않는 메서드인지 판정한다.
func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// ensureCSRFCookie 는 토큰 쿠키가 없으면 새로 설정한다.
func ensureCSRFCookie(w http.ResponseWriter, r *http.Request, config CSRFConfig) {
	if cookie, err := r.Cookie(csrfCookieName); err == nil && cookie.Value != "" {
		return
	}
	setCSRFCookie(w, generateCSRFToken(), config)
}

func setCSRFCookie(w http.ResponseWriter, value string, config CSRFConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    value,
		Path:     "/",
		Domain:   config.CookieDomain,
		Secure:   config.CookieSecure,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
}

// generateCSRFToken 은 암호학적으로 안전한 토큰을 생성한다.
func generateCSRFToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand 실패는 정상 동작이 불가능한 상태다.
		panic("failed to generate CSRF token: " + err.Error())
	}
	return hex.EncodeToString(b)
}
