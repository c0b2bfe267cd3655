// Package token 은 브리지 제공자용 커스텀 토큰의 발급과 검증을 제공한다.
//
// 커스텀 토큰은 네이티브 세션을 갖지 못하는 제공자(naver, kakao)의 로그인을
// 세션으로 교환하기 위한 단기 서명 토큰이다. 서명 키가 없는 mock 모드에서는
// "dev-token-" 접두사가 붙은 비암호학적 플레이스홀더를 발급하되,
// 응답에 mock 플래그를 함께 실어 호출 측이 반드시 구분할 수 있게 한다.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/minsu/bakehouse/internal/config"
	"github.com/minsu/bakehouse/internal/model"
)

const (
	purposeCustomToken = "custom_token"
	mockTokenPrefix    = "dev-token-"
)

var (
	// ErrInvalid 는 서명/만료/purpose 검증에 실패한 토큰.
	ErrInvalid = errors.New("token: invalid custom token")
	// ErrMockRejected 는 live 모드에 제시된 dev-token.
	ErrMockRejected = errors.New("token: mock token rejected in live mode")
)

// Identity 는 검증된 토큰에서 복원한 신원 정보.
type Identity struct {
	UID          string
	Provider     model.Provider
	Email        string
	Name         string
	ProfileImage string
}

// Minted 는 발급 결과. Mock이 true면 Value는 dev-token 플레이스홀더다.
type Minted struct {
	Value     string
	Mock      bool
	ExpiresAt time.Time
}

type customClaims struct {
	Provider     string `json:"provider"`
	Email        string `json:"email,omitempty"`
	Name         string `json:"name,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
	Purpose      string `json:"purpose"`
	jwt.RegisteredClaims
}

// Issuer 는 HS256으로 커스텀 토큰을 서명한다.
type Issuer struct {
	key  []byte
	ttl  time.Duration
	mode config.Mode
}

// NewIssuer 는 Issuer를 생성한다.
// live 모드에서 서명 키가 비어 있으면 에러를 반환한다. 키 부재를
// 묵시적으로 dev-token 발급으로 강등하는 일은 mock 모드에서만 허용된다.
func NewIssuer(key []byte, ttl time.Duration, mode config.Mode) (*Issuer, error) {
	if mode == config.ModeLive && len(key) == 0 {
		return nil, errors.New("token: signing key is required in live mode")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Issuer{key: key, ttl: ttl, mode: mode}, nil
}

// Mint 는 신원 정보를 담은 단기 커스텀 토큰을 발급한다.
// mock 모드에서 서명 키가 없으면 uid를 담은 dev-token을 발급하고 Mock=true를 돌려준다.
func (i *Issuer) Mint(uid string, provider model.Provider, email, name, profileImage string) (*Minted, error) {
	now := time.Now()
	exp := now.Add(i.ttl)

	if len(i.key) == 0 {
		return &Minted{
			Value:     mockTokenPrefix + uid,
			Mock:      true,
			ExpiresAt: exp,
		}, nil
	}

	claims := customClaims{
		Provider:     string(provider),
		Email:        email,
		Name:         name,
		ProfileImage: profileImage,
		Purpose:      purposeCustomToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign custom token: %w", err)
	}
	return &Minted{Value: signed, ExpiresAt: exp}, nil
}

// Verify 는 커스텀 토큰을 검증하고 신원을 복원한다.
// dev-token은 mock 모드에서만 통과하며 live 모드에서는 ErrMockRejected로 거부된다.
func (i *Issuer) Verify(raw string) (*Identity, error) {
	if uid, ok := strings.CutPrefix(raw, mockTokenPrefix); ok {
		if i.mode != config.ModeMock {
			return nil, ErrMockRejected
		}
		if uid == "" {
			return nil, ErrInvalid
		}
		return &Identity{UID: uid, Provider: providerFromUID(uid)}, nil
	}

	if len(i.key) == 0 {
		return nil, ErrInvalid
	}

	claims := &customClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return i.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if claims.Purpose != purposeCustomToken {
		return nil, ErrInvalid
	}
	if claims.Subject == "" {
		return nil, ErrInvalid
	}

	return &Identity{
		UID:          claims.Subject,
		Provider:     model.Provider(claims.Provider),
		Email:        claims.Email,
		Name:         claims.Name,
		ProfileImage: claims.ProfileImage,
	}, nil
}

// providerFromUID 는 네임스페이스된 uid에서 제공자를 역산한다. dev-token 경로 전용.
func providerFromUID(uid string) model.Provider {
	switch {
	case strings.HasPrefix(uid, "naver_"):
		return model.ProviderNaver
	case strings.HasPrefix(uid, "kakao_"):
		return model.ProviderKakao
	}
	return model.ProviderGoogle
}
