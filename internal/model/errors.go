// Package model 은 도메인 모델을 정의한다.
package model

import "fmt"

// APIError 는 통일 에러 포맷을 나타낸다.
// UI에 표시할 원인 카테고리와 대처 방법을 포함한다.
type APIError struct {
	Code     string // 에러 코드
	Message  string // 에러 메시지
	Category string // 카테고리: auth, validation, product, media, system
	Action   string // 이용자 대처 방법
}

// Error 는 error 인터페이스를 구현한다.
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 정의된 에러 코드
const (
	ErrCodeUnknownProvider   = "UNKNOWN_PROVIDER"
	ErrCodeProviderDenied    = "PROVIDER_DENIED"
	ErrCodeProviderExchange  = "PROVIDER_EXCHANGE_FAILED"
	ErrCodeUnverifiedEmail   = "UNVERIFIED_EMAIL"
	ErrCodeInvalidToken      = "INVALID_TOKEN"
	ErrCodeMockToken         = "MOCK_TOKEN_REJECTED"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeValidation        = "VALIDATION_FAILED"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeAddressNotFound   = "ADDRESS_NOT_FOUND"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeUploadTooLarge    = "UPLOAD_TOO_LARGE"
	ErrCodeUploadNotImage    = "UPLOAD_NOT_IMAGE"
	ErrCodeUploadFailed      = "UPLOAD_FAILED"
	ErrCodeSSRFBlocked       = "SSRF_BLOCKED"
	ErrCodeMailNotConfigured = "MAIL_NOT_CONFIGURED"
)

// NewUnknownProviderError 는 지원하지 않는 로그인 제공자 에러를 생성한다.
func NewUnknownProviderError(provider string) *APIError {
	return &APIError{
		Code:     ErrCodeUnknownProvider,
		Message:  fmt.Sprintf("지원하지 않는 로그인 제공자입니다: %s", provider),
		Category: "auth",
		Action:   "Google, Naver, Kakao 중 하나로 로그인해 주세요.",
	}
}

// NewProviderDeniedError 는 이용자가 로그인 창에서 동의를 거부한 경우의 에러를 생성한다.
func NewProviderDeniedError(provider string) *APIError {
	return &APIError{
		Code:     ErrCodeProviderDenied,
		Message:  fmt.Sprintf("%s 로그인이 취소되었습니다.", provider),
		Category: "auth",
		Action:   "다시 로그인을 시도해 주세요.",
	}
}

// NewProviderExchangeError 는 제공자 토큰/사용자정보 API가 실패한 경우의 에러를 생성한다.
func NewProviderExchangeError(provider string) *APIError {
	return &APIError{
		Code:     ErrCodeProviderExchange,
		Message:  fmt.Sprintf("%s 인증 서버와의 통신에 실패했습니다.", provider),
		Category: "auth",
		Action:   "잠시 후 다시 시도해 주세요.",
	}
}

// NewUnverifiedEmailError 는 이메일 미확인 계정의 로그인 시도 에러를 생성한다.
func NewUnverifiedEmailError(provider string) *APIError {
	return &APIError{
		Code:     ErrCodeUnverifiedEmail,
		Message:  fmt.Sprintf("%s 계정의 이메일 인증이 완료되지 않았습니다.", provider),
		Category: "auth",
		Action:   "제공자 계정에서 이메일 인증을 완료한 뒤 다시 로그인해 주세요.",
	}
}

// NewInvalidTokenError 는 커스텀 토큰 검증 실패 에러를 생성한다.
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "유효하지 않은 인증 토큰입니다.",
		Category: "auth",
		Action:   "다시 로그인해 주세요.",
	}
}

// NewMockTokenRejectedError 는 운영 모드에서 dev-token이 제시된 경우의 에러를 생성한다.
func NewMockTokenRejectedError() *APIError {
	return &APIError{
		Code:     ErrCodeMockToken,
		Message:  "개발용 토큰은 운영 환경에서 사용할 수 없습니다.",
		Category: "auth",
		Action:   "다시 로그인해 주세요.",
	}
}

// NewUnauthorizedError 는 미인증 요청 에러를 생성한다.
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "로그인이 필요합니다.",
		Category: "auth",
		Action:   "로그인 후 다시 시도해 주세요.",
	}
}

// NewForbiddenError 는 권한 부족 에러를 생성한다.
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "이 작업을 수행할 권한이 없습니다.",
		Category: "auth",
		Action:   "관리자 계정으로 로그인해 주세요.",
	}
}

// NewValidationError 는 입력 검증 실패 에러를 생성한다.
func NewValidationError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("입력값이 올바르지 않습니다: %s", detail),
		Category: "validation",
		Action:   "입력 내용을 확인한 뒤 다시 시도해 주세요.",
	}
}

// NewProductNotFoundError 는 상품 미존재 에러를 생성한다.
func NewProductNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeProductNotFound,
		Message:  fmt.Sprintf("상품을 찾을 수 없습니다: %s", id),
		Category: "product",
		Action:   "상품 목록을 새로고침해 주세요.",
	}
}

// NewOrderNotFoundError 는 주문 미존재 에러를 생성한다.
func NewOrderNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeOrderNotFound,
		Message:  fmt.Sprintf("주문을 찾을 수 없습니다: %s", id),
		Category: "product",
		Action:   "주문 내역을 확인해 주세요.",
	}
}

// NewAddressNotFoundError 는 배송지 미존재 에러를 생성한다.
func NewAddressNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeAddressNotFound,
		Message:  fmt.Sprintf("배송지를 찾을 수 없습니다: %s", id),
		Category: "validation",
		Action:   "배송지 목록을 확인해 주세요.",
	}
}

// NewUserNotFoundError 는 이용자 미존재 에러를 생성한다.
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "이용자를 찾을 수 없습니다.",
		Category: "auth",
		Action:   "다시 로그인해 주세요.",
	}
}

// NewUploadTooLargeError 는 업로드 용량 초과 에러를 생성한다.
func NewUploadTooLargeError(filename string) *APIError {
	return &APIError{
		Code:     ErrCodeUploadTooLarge,
		Message:  fmt.Sprintf("파일이 10MB를 초과합니다: %s", filename),
		Category: "media",
		Action:   "10MB 이하의 이미지로 다시 업로드해 주세요.",
	}
}

// NewUploadNotImageError 는 이미지가 아닌 파일 업로드 에러를 생성한다.
func NewUploadNotImageError(filename string) *APIError {
	return &APIError{
		Code:     ErrCodeUploadNotImage,
		Message:  fmt.Sprintf("이미지 파일이 아닙니다: %s", filename),
		Category: "media",
		Action:   "JPEG, PNG, WebP 형식의 이미지를 업로드해 주세요.",
	}
}

// NewUploadFailedError 는 CDN 업로드 실패 에러를 생성한다.
func NewUploadFailedError(filename string) *APIError {
	return &APIError{
		Code:     ErrCodeUploadFailed,
		Message:  fmt.Sprintf("이미지 업로드에 실패했습니다: %s", filename),
		Category: "media",
		Action:   "잠시 후 다시 시도해 주세요.",
	}
}

// NewMailNotConfiguredError 는 SMTP 미설정 상태의 발송 요청 에러를 생성한다.
func NewMailNotConfiguredError() *APIError {
	return &APIError{
		Code:     ErrCodeMailNotConfigured,
		Message:  "메일 발송이 설정되어 있지 않습니다.",
		Category: "system",
		Action:   "관리자에게 문의해 주세요.",
	}
}

// NewSSRFBlockedError 는 이미지 URL 가져오기가 보안 정책에 걸린 경우의 에러를 생성한다.
func NewSSRFBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeSSRFBlocked,
		Message:  "보안 정책에 의해 해당 URL에 대한 접근이 차단되었습니다.",
		Category: "validation",
		Action:   "공개된 웹사이트의 이미지 URL을 입력해 주세요.",
	}
}
