package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/minsu/bakehouse/internal/model"
)

const defaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// GoogleConfig 는 Google OAuth 제공자의 설정.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Timeout      time.Duration

	// 테스트용으로 오버라이드 가능한 URL
	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

// GoogleProvider 는 Google OAuth 2.0 인증을 제공한다.
// 네이티브 경로: 커스텀 토큰 브리지 없이 콜백에서 바로 세션이 발급된다.
type GoogleProvider struct {
	oauth       oauth2.Config
	userInfoURL string
	timeout     time.Duration
}

// NewGoogleProvider 는 GoogleProvider를 생성한다.
func NewGoogleProvider(config GoogleConfig) *GoogleProvider {
	endpoint := google.Endpoint
	if config.AuthURL != "" {
		endpoint.AuthURL = config.AuthURL
	}
	if config.TokenURL != "" {
		endpoint.TokenURL = config.TokenURL
	}
	userInfoURL := config.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = defaultGoogleUserInfoURL
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GoogleProvider{
		oauth: oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoint,
		},
		userInfoURL: userInfoURL,
		timeout:     timeout,
	}
}

// Name 은 제공자 식별자를 반환한다.
func (p *GoogleProvider) Name() model.Provider {
	return model.ProviderGoogle
}

// LoginURL 은 Google OAuth 인가 URL을 생성한다.
func (p *GoogleProvider) LoginURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// googleUserInfo 는 Google userinfo v3 엔드포인트의 응답.
type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Exchange 는 인가 코드를 액세스 토큰으로 교환하고 사용자 정보를 조회한다.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*IdentityRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: google: %v", ErrExchange, err)
	}

	info, err := fetchGoogleUserInfo(ctx, p.userInfoURL, token.AccessToken)
	if err != nil {
		return nil, err
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("%w: google", ErrEmptySubject)
	}
	// 미확인 이메일을 통과시키면 타인의 이메일을 사칭한 계정이
	// 운영자 이메일 판정(isAdmin)까지 가로챌 수 있다
	if !info.EmailVerified {
		return nil, fmt.Errorf("%w: google", ErrUnverifiedEmail)
	}

	return &IdentityRecord{
		Provider:       model.ProviderGoogle,
		ProviderUserID: info.Sub,
		Email:          info.Email,
		Name:           info.Name,
		ProfileImage:   info.Picture,
	}, nil
}

func fetchGoogleUserInfo(ctx context.Context, userInfoURL, accessToken string) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: google: %v", ErrUserInfo, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read userinfo response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: google: status %d: %s", ErrUserInfo, resp.StatusCode, string(body))
	}

	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse userinfo response: %w", err)
	}
	return &info, nil
}

// compile-time interface check
var _ Provider = (*GoogleProvider)(nil)
