package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/minsu/bakehouse/internal/middleware"
	"github.com/minsu/bakehouse/internal/model"
	"github.com/minsu/bakehouse/internal/repository"
)

// AdminUserHandler 는 이용자 관리의 HTTP 핸들러. 관리자 전용.
// isAdmin 변경 같은 특권 조작은 반드시 감사 로그를 남긴다.
type AdminUserHandler struct {
	users     repository.UserRepository
	adminLogs repository.AdminLogRepository
}

// NewAdminUserHandler 는 AdminUserHandler를 생성한다.
func NewAdminUserHandler(users repository.UserRepository, adminLogs repository.AdminLogRepository) *AdminUserHandler {
	return &AdminUserHandler{
		users:     users,
		adminLogs: adminLogs,
	}
}

// List 는 이용자 목록을 반환한다.
// GET /api/admin/users
func (h *AdminUserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context(), 200)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if users == nil {
		users = []*model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// setAdminRequest 는 관리자 권한 변경 요청의 본문.
type setAdminRequest struct {
	IsAdmin bool `json:"isAdmin"`
}

// SetAdmin 은 지정 이용자의 관리자 권한을 변경한다.
// PUT /api/admin/users/{uid}/admin
// 감사 로그를 먼저 기록하고 권한을 변경한다. 로그 기록에 실패하면
// 권한 변경도 수행하지 않는다.
func (h *AdminUserHandler) SetAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}
	targetUID := chi.URLParam(r, "uid")

	var req setAdminRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if admin.UID == targetUID && !req.IsAdmin {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("자기 자신의 관리자 권한은 해제할 수 없습니다"))
		return
	}

	target, err := h.users.FindByUID(r.Context(), targetUID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if target == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewUserNotFoundError())
		return
	}

	entry := &model.AdminLog{
		ID:       uuid.New().String(),
		AdminUID: admin.UID,
		Action:   "set_admin",
		TargetID: targetUID,
		Detail:   fmt.Sprintf("isAdmin=%t", req.IsAdmin),
	}
	if err := h.adminLogs.Insert(r.Context(), entry); err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.users.SetAdmin(r.Context(), targetUID, req.IsAdmin); err != nil {
		handleServiceError(w, err)
		return
	}

	slog.Info("admin flag changed",
		slog.String("admin_uid", admin.UID),
		slog.String("target_uid", targetUID),
		slog.Bool("is_admin", req.IsAdmin))
	w.WriteHeader(http.StatusNoContent)
}

// Logs 는 최근 감사 로그를 반환한다.
// GET /api/admin/logs
func (h *AdminUserHandler) Logs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.adminLogs.ListRecent(r.Context(), 100)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if logs == nil {
		logs = []*model.AdminLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}
