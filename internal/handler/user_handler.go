package handler

import (
	"context"
	"net/http"

	"github.com/minsu/bakehouse/internal/middleware"
	"github.com/minsu/bakehouse/internal/model"
)

// WithdrawServiceInterface 는 탈퇴 핸들러가 필요로 하는 서비스 인터페이스.
type WithdrawServiceInterface interface {
	Withdraw(ctx context.Context, uid string) error
}

// UserHandler 는 이용자 본인 계정 조작의 HTTP 핸들러. 로그인 필수.
type UserHandler struct {
	withdraw WithdrawServiceInterface
	config   AuthHandlerConfig
}

// NewUserHandler 는 UserHandler를 생성한다.
func NewUserHandler(withdraw WithdrawServiceInterface, config AuthHandlerConfig) *UserHandler {
	return &UserHandler{
		withdraw: withdraw,
		config:   config,
	}
}

// Withdraw 는 자기 계정을 탈퇴 처리한다.
// DELETE /api/users/me
// 세션은 서버 측에서 모두 파기되므로 쿠키도 함께 제거한다.
func (h *UserHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.withdraw.Withdraw(r.Context(), user.UID); err != nil {
		handleServiceError(w, err)
		return
	}

	clearCookie(w, middleware.SessionCookieName, h.config)
	w.WriteHeader(http.StatusNoContent)
}
