// Package middleware 는 HTTP 미들웨어를 제공한다.
package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/minsu/bakehouse/internal/authstate"
	"github.com/minsu/bakehouse/internal/model"
	"github.com/minsu/bakehouse/internal/token"
)

const (
	// SessionCookieName 은 세션 ID를 담는 HTTP Only 쿠키 이름.
	SessionCookieName = "session_id"

	// shadowSessionHeader 는 클라이언트가 복원한 로그인 상태를 싣는 헤더.
	// base64로 인코딩된 JSON이며 내용은 신뢰하지 않는다.
	shadowSessionHeader = "X-Shadow-Session"
)

// contextKey 는 컨텍스트에 값을 담기 위한 타입 안전 키.
type contextKey string

var authContextKey = contextKey("auth")

// CredentialResolver 는 요청 자격 해석 인터페이스.
// authstate.Resolver의 부분집합으로 정의한다.
type CredentialResolver interface {
	Resolve(ctx context.Context, creds authstate.Credentials) (*authstate.Resolution, error)
}

// UserFinder 는 관리자 검증을 위한 이용자 조회 인터페이스.
type UserFinder interface {
	FindByUID(ctx context.Context, uid string) (*model.User, error)
}

// extractCredentials 는 요청에서 세션 쿠키, Bearer 토큰, 섀도 세션을 추출한다.
func extractCredentials(r *http.Request) authstate.Credentials {
	creds := authstate.Credentials{}

	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		creds.SessionID = cookie.Value
	}

	if auth := r.Header.Get("Authorization"); auth != "" {
		if raw, ok := strings.CutPrefix(auth, "Bearer "); ok {
			creds.BearerToken = strings.TrimSpace(raw)
		}
	}

	if encoded := r.Header.Get(shadowSessionHeader); encoded != "" {
		if decoded, err := base64.StdEncoding.DecodeString(encoded); err == nil {
			shadow := &authstate.ShadowSession{}
			if err := json.Unmarshal(decoded, shadow); err == nil {
				creds.Shadow = shadow
			}
		}
	}

	return creds
}

// NewAuthMiddleware 는 요청 자격을 해석해 컨텍스트에 주입하는 미들웨어를 반환한다.
//
// 자격이 전혀 없거나 어느 것도 인정되지 않으면 미인증 상태로 통과시킨다.
// 공개 라우트와 보호 라우트가 같은 체인을 공유하기 위함이며, 보호는
// RequireAuth / NewAdminMiddleware가 담당한다. 단, 위조되었거나 운영 모드에
// 제시된 dev-token 같은 명시적으로 무효한 토큰은 즉시 401로 거부한다.
func NewAuthMiddleware(resolver CredentialResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			creds := extractCredentials(r)

			resolution, err := resolver.Resolve(r.Context(), creds)
			if err != nil {
				if errors.Is(err, authstate.ErrUnauthenticated) {
					next.ServeHTTP(w, r)
					return
				}
				if errors.Is(err, token.ErrMockRejected) {
					WriteErrorResponse(w, http.StatusUnauthorized, model.NewMockTokenRejectedError())
					return
				}
				if errors.Is(err, token.ErrInvalid) {
					WriteErrorResponse(w, http.StatusUnauthorized, model.NewInvalidTokenError())
					return
				}
				slog.Error("failed to resolve credentials",
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}

			ctx := context.WithValue(r.Context(), authContextKey, resolution)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth 는 인증된 요청만 통과시키는 미들웨어를 반환한다.
// NewAuthMiddleware 뒤에 배치되어야 한다.
func RequireAuth() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := UserFromContext(r.Context()); err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewAdminMiddleware 는 관리자 요청만 통과시키는 미들웨어를 반환한다.
//
// 컨텍스트의 isAdmin을 그대로 믿지 않고 이용자 문서를 다시 읽어
// 검증한다. 토큰/섀도 경로로 들어온 자격이 관리자 권한을 주장해도
// 저장소의 문서가 최종 판정이다.
func NewAdminMiddleware(users UserFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := UserFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			stored, err := users.FindByUID(r.Context(), user.UID)
			if err != nil {
				slog.Error("failed to verify admin",
					slog.String("uid", user.UID),
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}
			if stored == nil || !stored.IsAdmin {
				slog.Warn("admin access denied",
					slog.String("uid", user.UID),
					slog.String("path", r.URL.Path),
				)
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext 는 요청 컨텍스트에서 인증된 이용자를 꺼낸다.
// NewAuthMiddleware를 통과한 요청에서만 유효하다.
func UserFromContext(ctx context.Context) (*model.User, error) {
	resolution, ok := ctx.Value(authContextKey).(*authstate.Resolution)
	if !ok || resolution == nil || resolution.User == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return resolution.User, nil
}

// SourceFromContext 는 인증에 사용된 자격의 종류를 반환한다.
func SourceFromContext(ctx context.Context) (authstate.Source, error) {
	resolution, ok := ctx.Value(authContextKey).(*authstate.Resolution)
	if !ok || resolution == nil {
		return "", fmt.Errorf("auth resolution not found in context")
	}
	return resolution.Source, nil
}

// ContextWithResolution 은 컨텍스트에 인증 결과를 주입한다.
// 테스트나 미들웨어 외의 컨텍스트 생성에서 사용한다.
func ContextWithResolution(ctx context.Context, resolution *authstate.Resolution) context.Context {
	return context.WithValue(ctx, authContextKey, resolution)
}
