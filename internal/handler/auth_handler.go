package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/minsu/bakehouse/internal/auth"
	"github.com/minsu/bakehouse/internal/middleware"
	"github.com/minsu/bakehouse/internal/model"
	"github.com/minsu/bakehouse/internal/token"
)

const oauthStateCookie = "oauth_state"

// AuthServiceInterface 는 인증 핸들러가 필요로 하는 서비스 인터페이스.
type AuthServiceInterface interface {
	LoginURL(provider model.Provider, state string) (string, error)
	HandleCallback(ctx context.Context, provider model.Provider, code string) (*auth.CallbackResult, error)
	MintCustomToken(ctx context.Context, provider model.Provider, req auth.MintRequest) (*token.Minted, error)
	RedeemCustomToken(ctx context.Context, raw string) (*model.Session, error)
	Logout(ctx context.Context, sessionID string) error
	GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error)
}

// AuthHandlerConfig 는 인증 핸들러 설정.
type AuthHandlerConfig struct {
	BaseURL       string
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // 세션 쿠키 유효기간(초)
}

// AuthHandler 는 소셜 로그인 관련 HTTP 핸들러.
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler 는 AuthHandler를 생성한다.
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// Login 은 지정 제공자의 OAuth 플로를 시작한다.
// GET /auth/{provider}/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	provider := model.Provider(chi.URLParam(r, "provider"))
	if !provider.Valid() {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewUnknownProviderError(string(provider)))
		return
	}

	state, err := generateState()
	if err != nil {
		slog.Error("failed to generate oauth state", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	// state를 쿠키에 보관 (CSRF 대책)
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10분
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	url, err := h.service.LoginURL(provider, state)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// Callback 은 OAuth 콜백을 처리한다.
// GET /auth/{provider}/callback?code=xxx&state=yyy
//
// 네이티브 제공자(google)는 세션 쿠키를 설정하고 프런트엔드로
// 리다이렉트한다. 브리지 제공자(naver, kakao)는 커스텀 토큰을 URL
// 프래그먼트에 실어 넘긴다. 프래그먼트는 서버로 전송되지 않으므로
// 접근 로그에 토큰이 남지 않는다.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider := model.Provider(chi.URLParam(r, "provider"))
	if !provider.Valid() {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewUnknownProviderError(string(provider)))
		return
	}

	// 이용자가 로그인 창에서 동의를 거부한 경우
	if errCode := r.URL.Query().Get("error"); errCode != "" {
		slog.Info("oauth denied by user",
			slog.String("provider", string(provider)),
			slog.String("error", errCode),
		)
		http.Redirect(w, r, h.config.BaseURL+"/login?error=denied", http.StatusTemporaryRedirect)
		return
	}

	// state 검증 (CSRF 대책)
	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || stateCookie.Value != state {
		slog.Warn("oauth state mismatch", slog.String("provider", string(provider)))
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("state 값이 일치하지 않습니다"))
		return
	}
	clearCookie(w, oauthStateCookie, h.config)

	code := r.URL.Query().Get("code")
	if code == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("인가 코드가 없습니다"))
		return
	}

	result, err := h.service.HandleCallback(r.Context(), provider, code)
	if err != nil {
		slog.Error("oauth callback failed",
			slog.String("provider", string(provider)),
			slog.String("error", err.Error()),
		)
		handleServiceError(w, providerAPIError(provider, err))
		return
	}

	if result.Session != nil {
		h.setSessionCookie(w, result.Session.ID)
		http.Redirect(w, r, h.config.BaseURL, http.StatusTemporaryRedirect)
		return
	}

	// 브리지 경로: 커스텀 토큰 핸드오프
	redirect := h.config.BaseURL + "/login/callback#token=" + result.CustomToken.Value
	if result.CustomToken.Mock {
		redirect += "&mock=true"
	}
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}

// customTokenRequest 는 커스텀 토큰 발급 요청의 본문.
type customTokenRequest struct {
	ProviderUserID string `json:"providerUserId"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	ProfileImage   string `json:"profileImage"`
}

// customTokenResponse 는 커스텀 토큰 발급 응답.
// Mock 플래그로 호출 측이 개발용 토큰을 반드시 구분할 수 있다.
type customTokenResponse struct {
	Token     string    `json:"token"`
	Mock      bool      `json:"mock"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CustomToken 은 브리지 제공자의 커스텀 토큰을 발급한다.
// POST /auth/{provider}/custom-token
func (h *AuthHandler) CustomToken(w http.ResponseWriter, r *http.Request) {
	provider := model.Provider(chi.URLParam(r, "provider"))

	var req customTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	minted, err := h.service.MintCustomToken(r.Context(), provider, auth.MintRequest{
		ProviderUserID: req.ProviderUserID,
		Email:          req.Email,
		Name:           req.Name,
		ProfileImage:   req.ProfileImage,
	})
	if err != nil {
		handleServiceError(w, providerAPIError(provider, err))
		return
	}

	writeJSON(w, http.StatusOK, customTokenResponse{
		Token:     minted.Value,
		Mock:      minted.Mock,
		ExpiresAt: minted.ExpiresAt,
	})
}

// sessionRequest 는 커스텀 토큰을 세션으로 교환하는 요청의 본문.
type sessionRequest struct {
	Token string `json:"token"`
}

// Session 은 커스텀 토큰을 검증하고 세션 쿠키를 발급한다.
// POST /auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Token == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("token이 비어 있습니다"))
		return
	}

	session, err := h.service.RedeemCustomToken(r.Context(), req.Token)
	if err != nil {
		handleRedeemError(w, err)
		return
	}

	h.setSessionCookie(w, session.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"uid":      session.UID,
		"provider": session.Provider,
	})
}

// Logout 은 세션을 파기하고 쿠키를 제거한다.
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil && cookie.Value != "" {
		// 세션 삭제 실패에도 쿠키는 제거한다
		if logoutErr := h.service.Logout(r.Context(), cookie.Value); logoutErr != nil {
			slog.Error("failed to logout", slog.String("error", logoutErr.Error()))
		}
	}

	clearCookie(w, middleware.SessionCookieName, h.config)
	w.WriteHeader(http.StatusNoContent)
}

// Me 는 현재 로그인한 이용자 정보를 반환한다.
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"uid":          user.UID,
		"email":        user.Email,
		"name":         user.Name,
		"provider":     user.Provider,
		"profileImage": user.ProfileImage,
		"isAdmin":      user.IsAdmin,
	})
}

// providerAPIError 는 제공자 에러 분류를 응답 가능한 APIError로 변환한다.
// 분류 밖의 에러는 그대로 반환되어 내부 서버 에러로 취급된다.
func providerAPIError(provider model.Provider, err error) error {
	switch {
	case errors.Is(err, auth.ErrDenied):
		return model.NewProviderDeniedError(string(provider))
	case errors.Is(err, auth.ErrExchange), errors.Is(err, auth.ErrUserInfo), errors.Is(err, auth.ErrEmptySubject):
		return model.NewProviderExchangeError(string(provider))
	case errors.Is(err, auth.ErrUnverifiedEmail):
		return model.NewUnverifiedEmailError(string(provider))
	}
	return err
}

// handleRedeemError 는 토큰 교환 실패를 에러 종류별로 변환한다.
func handleRedeemError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, token.ErrMockRejected):
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewMockTokenRejectedError())
	case errors.Is(err, token.ErrInvalid):
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewInvalidTokenError())
	default:
		handleServiceError(w, err)
	}
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string, config AuthHandlerConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// generateState 는 CSRF 대책용 무작위 state 값을 생성한다.
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
