// Package handler 는 HTTP 핸들러를 제공한다.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/minsu/bakehouse/internal/middleware"
	"github.com/minsu/bakehouse/internal/model"
)

// writeJSON 은 JSON 응답을 쓴다.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON 은 요청 본문을 디코드한다. 실패 시 통일 포맷의 400을 쓴다.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "요청 본문을 해석할 수 없습니다.",
			Category: "validation",
			Action:   "올바른 JSON 형식으로 요청해 주세요.",
		})
		return false
	}
	return true
}

// handleServiceError 는 서비스 층의 에러를 HTTP 상태 코드로 변환한다.
// APIError가 아닌 에러는 내부 서버 에러로 취급하고 상세는 로그에만 남긴다.
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus 는 APIError 코드를 HTTP 상태 코드로 매핑한다.
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnknownProvider, model.ErrCodeValidation:
		return http.StatusBadRequest
	case model.ErrCodeProviderDenied:
		return http.StatusConflict
	case model.ErrCodeProviderExchange:
		return http.StatusBadGateway
	case model.ErrCodeInvalidToken, model.ErrCodeMockToken, model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden, model.ErrCodeSSRFBlocked, model.ErrCodeUnverifiedEmail:
		return http.StatusForbidden
	case model.ErrCodeProductNotFound, model.ErrCodeOrderNotFound,
		model.ErrCodeAddressNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeUploadTooLarge:
		return http.StatusRequestEntityTooLarge
	case model.ErrCodeUploadNotImage:
		return http.StatusUnsupportedMediaType
	case model.ErrCodeUploadFailed:
		return http.StatusBadGateway
	case model.ErrCodeMailNotConfigured:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
