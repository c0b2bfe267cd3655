package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/kakao"

	"github.com/minsu/bakehouse/internal/model"
)

const defaultKakaoUserInfoURL = "https://kapi.kakao.com/v2/user/me"

// KakaoConfig 는 Kakao OAuth 제공자의 설정.
type KakaoConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Timeout      time.Duration

	// 테스트용으로 오버라이드 가능한 URL
	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

// KakaoProvider 는 Kakao OAuth 2.0 인증을 제공한다.
// 브리지 경로: 콜백 이후 커스텀 토큰 발급을 거쳐 세션으로 교환된다.
type KakaoProvider struct {
	oauth       oauth2.Config
	userInfoURL string
	timeout     time.Duration
}

// NewKakaoProvider 는 KakaoProvider를 생성한다.
func NewKakaoProvider(config KakaoConfig) *KakaoProvider {
	endpoint := kakao.Endpoint
	if config.AuthURL != "" {
		endpoint.AuthURL = config.AuthURL
	}
	if config.TokenURL != "" {
		endpoint.TokenURL = config.TokenURL
	}
	userInfoURL := config.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = defaultKakaoUserInfoURL
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &KakaoProvider{
		oauth: oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Endpoint:     endpoint,
		},
		userInfoURL: userInfoURL,
		timeout:     timeout,
	}
}

// Name 은 제공자 식별자를 반환한다.
func (p *KakaoProvider) Name() model.Provider {
	return model.ProviderKakao
}

// LoginURL 은 Kakao OAuth 인가 URL을 생성한다.
func (p *KakaoProvider) LoginURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// kakaoUserInfo 는 Kakao 사용자 정보 API의 응답.
// id는 숫자로 내려오므로 문자열로 변환해 사용한다.
type kakaoUserInfo struct {
	ID           int64 `json:"id"`
	KakaoAccount struct {
		Email   string `json:"email"`
		Profile struct {
			Nickname        string `json:"nickname"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

// Exchange 는 인가 코드를 액세스 토큰으로 교환하고 사용자 정보를 조회한다.
func (p *KakaoProvider) Exchange(ctx context.Context, code string) (*IdentityRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: kakao: %v", ErrExchange, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: kakao: %v", ErrUserInfo, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read userinfo response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: kakao: status %d: %s", ErrUserInfo, resp.StatusCode, string(body))
	}

	var info kakaoUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse userinfo response: %w", err)
	}
	if info.ID == 0 {
		return nil, fmt.Errorf("%w: kakao", ErrEmptySubject)
	}

	return &IdentityRecord{
		Provider:       model.ProviderKakao,
		ProviderUserID: strconv.FormatInt(info.ID, 10),
		Email:          info.KakaoAccount.Email,
		Name:           info.KakaoAccount.Profile.Nickname,
		ProfileImage:   info.KakaoAccount.Profile.ProfileImageURL,
	}, nil
}

// compile-time interface check
var _ Provider = (*KakaoProvider)(nil)
