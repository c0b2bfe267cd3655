// Package auth 는 소셜 로그인 플로우와 계정 정합(reconciliation)을 제공한다.
package auth

import (
	"context"
	"errors"

	"github.com/minsu/bakehouse/internal/model"
)

// IdentityRecord 는 제공자에서 받은 사용자 정보를 공통 형태로 정규화한 것이다.
// 로그인 시도마다 생성되고 정합 처리 후 폐기되며, 원문 그대로 영속화하지 않는다.
type IdentityRecord struct {
	Provider       model.Provider
	ProviderUserID string
	Email          string
	Name           string
	ProfileImage   string
}

// UID 는 이 신원이 귀속될 사용자 문서의 키를 반환한다.
// 브리지 제공자(naver, kakao)는 "<provider>_<id>" 로 네임스페이스되고,
// 네이티브 제공자(google)는 제공자 subject를 그대로 사용한다.
// 네임스페이스 덕분에 서로 다른 제공자의 신원이 같은 uid로 충돌하지 않는다.
func (r *IdentityRecord) UID() string {
	if r.Provider.Bridged() {
		return string(r.Provider) + "_" + r.ProviderUserID
	}
	return r.ProviderUserID
}

// Provider 는 OAuth2 인증 제공자의 인터페이스.
// 각 구현은 인가 코드 교환과 사용자 정보 조회를 IdentityRecord로 정규화한다.
type Provider interface {
	// Name 은 제공자 식별자를 반환한다.
	Name() model.Provider
	// LoginURL 은 OAuth2 인가 URL을 생성한다.
	LoginURL(state string) string
	// Exchange 는 인가 코드를 토큰으로 교환하고 사용자 정보를 조회한다.
	Exchange(ctx context.Context, code string) (*IdentityRecord, error)
}

// 제공자 에러 분류. 호출 측은 errors.Is로 구분한다.
var (
	// ErrDenied 는 이용자가 동의 화면에서 거부한 경우.
	ErrDenied = errors.New("auth: authorization denied by user")
	// ErrExchange 는 토큰 엔드포인트가 비정상 응답한 경우.
	ErrExchange = errors.New("auth: token exchange failed")
	// ErrUserInfo 는 사용자 정보 엔드포인트가 비정상 응답한 경우.
	ErrUserInfo = errors.New("auth: userinfo fetch failed")
	// ErrEmptySubject 는 응답에 subject가 없는 경우.
	ErrEmptySubject = errors.New("auth: empty subject in userinfo")
	// ErrUnverifiedEmail 은 제공자가 이메일 소유 확인을 하지 않은 계정인 경우.
	// 미확인 이메일은 위조 가능하므로 계정 정합에 쓰지 않는다.
	ErrUnverifiedEmail = errors.New("auth: email not verified by provider")
)
