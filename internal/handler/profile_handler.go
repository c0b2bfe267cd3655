package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/minsu/bakehouse/internal/middleware"
	"github.com/minsu/bakehouse/internal/model"
	"github.com/minsu/bakehouse/internal/repository"
)

// ProfileHandler 는 이용자 프로필/배송지의 HTTP 핸들러. 로그인 필수.
type ProfileHandler struct {
	profiles repository.ProfileRepository
}

// NewProfileHandler 는 ProfileHandler를 생성한다.
func NewProfileHandler(profiles repository.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get 은 프로필을 반환한다. 최초 방문 시 지연 생성된다.
// GET /api/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	profile, err := h.profiles.EnsureProfile(r.Context(), user.UID, user.Name, user.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// settingsRequest 는 알림 설정 갱신 요청의 본문.
type settingsRequest struct {
	Notifications bool `json:"notifications"`
	Marketing     bool `json:"marketing"`
	SMS           bool `json:"sms"`
}

// UpdateSettings 는 알림 설정을 갱신한다.
// PUT /api/profile/settings
func (h *ProfileHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req settingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	settings := model.ProfileSettings{
		Notifications: req.Notifications,
		Marketing:     req.Marketing,
		SMS:           req.SMS,
	}
	if err := h.profiles.UpdateSettings(r.Context(), user.UID, settings); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// contactRequest 는 연락처 갱신 요청의 본문.
type contactRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// UpdateContact 는 이름/전화번호를 갱신한다.
// PUT /api/profile/contact
func (h *ProfileHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req contactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("이름이 비어 있습니다"))
		return
	}

	if err := h.profiles.UpdateContact(r.Context(), user.UID, req.Name, req.Phone); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// addressRequest 는 배송지 추가/수정 요청의 본문.
type addressRequest struct {
	Label         string `json:"label"`
	Recipient     string `json:"recipient"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	DetailAddress string `json:"detailAddress"`
	ZipCode       string `json:"zipCode"`
	IsDefault     bool   `json:"isDefault"`
}

func (req *addressRequest) validate() error {
	if strings.TrimSpace(req.Recipient) == "" {
		return model.NewValidationError("수령인이 비어 있습니다")
	}
	if strings.TrimSpace(req.Address) == "" {
		return model.NewValidationError("주소가 비어 있습니다")
	}
	return nil
}

// AddAddress 는 배송지를 추가한다.
// POST /api/profile/addresses
func (h *ProfileHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req addressRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		handleServiceError(w, err)
		return
	}

	addr := model.Address{
		ID:            uuid.New().String(),
		Label:         req.Label,
		Recipient:     req.Recipient,
		Phone:         req.Phone,
		Address:       req.Address,
		DetailAddress: req.DetailAddress,
		ZipCode:       req.ZipCode,
		IsDefault:     req.IsDefault,
	}
	if err := h.profiles.AddAddress(r.Context(), user.UID, addr); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, addr)
}

// UpdateAddress 는 배송지를 수정한다.
// PUT /api/profile/addresses/{id}
func (h *ProfileHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}
	addressID := chi.URLParam(r, "id")

	var req addressRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		handleServiceError(w, err)
		return
	}

	addr := model.Address{
		ID:            addressID,
		Label:         req.Label,
		Recipient:     req.Recipient,
		Phone:         req.Phone,
		Address:       req.Address,
		DetailAddress: req.DetailAddress,
		ZipCode:       req.ZipCode,
		IsDefault:     req.IsDefault,
	}
	if err := h.profiles.UpdateAddress(r.Context(), user.UID, addr); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addr)
}

// RemoveAddress 는 배송지를 제거한다.
// DELETE /api/profile/addresses/{id}
func (h *ProfileHandler) RemoveAddress(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}
	addressID := chi.URLParam(r, "id")

	if err := h.profiles.RemoveAddress(r.Context(), user.UID, addressID); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
