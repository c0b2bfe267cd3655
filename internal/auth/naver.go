package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/minsu/bakehouse/internal/model"
)

const (
	defaultNaverAuthURL     = "https://nid.naver.com/oauth2.0/authorize"
	defaultNaverTokenURL    = "https://nid.naver.com/oauth2.0/token"
	defaultNaverUserInfoURL = "https://openapi.naver.com/v1/nid/me"
)

// NaverConfig 는 Naver OAuth 제공자의 설정.
type NaverConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Timeout      time.Duration

	// 테스트용으로 오버라이드 가능한 URL
	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

// NaverProvider 는 Naver OAuth 2.0 인증을 제공한다.
// 브리지 경로: 콜백 이후 커스텀 토큰 발급을 거쳐 세션으로 교환된다.
type NaverProvider struct {
	oauth       oauth2.Config
	userInfoURL string
	timeout     time.Duration
}

// NewNaverProvider 는 NaverProvider를 생성한다.
func NewNaverProvider(config NaverConfig) *NaverProvider {
	authURL := config.AuthURL
	if authURL == "" {
		authURL = defaultNaverAuthURL
	}
	tokenURL := config.TokenURL
	if tokenURL == "" {
		tokenURL = defaultNaverTokenURL
	}
	userInfoURL := config.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = defaultNaverUserInfoURL
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &NaverProvider{
		oauth: oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
			},
		},
		userInfoURL: userInfoURL,
		timeout:     timeout,
	}
}

// Name 은 제공자 식별자를 반환한다.
func (p *NaverProvider) Name() model.Provider {
	return model.ProviderNaver
}

// LoginURL 은 Naver OAuth 인가 URL을 생성한다.
func (p *NaverProvider) LoginURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// naverUserInfo 는 Naver 프로필 API의 응답 엔벨로프.
// resultcode "00" 이외는 실패로 간주한다.
type naverUserInfo struct {
	ResultCode string `json:"resultcode"`
	Message    string `json:"message"`
	Response   struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		Name         string `json:"name"`
		ProfileImage string `json:"profile_image"`
	} `json:"response"`
}

// Exchange 는 인가 코드를 액세스 토큰으로 교환하고 프로필을 조회한다.
func (p *NaverProvider) Exchange(ctx context.Context, code string) (*IdentityRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: naver: %v", ErrExchange, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: naver: %v", ErrUserInfo, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read userinfo response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: naver: status %d: %s", ErrUserInfo, resp.StatusCode, string(body))
	}

	var info naverUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse userinfo response: %w", err)
	}
	if info.ResultCode != "00" {
		return nil, fmt.Errorf("%w: naver: resultcode %s: %s", ErrUserInfo, info.ResultCode, info.Message)
	}
	if info.Response.ID == "" {
		return nil, fmt.Errorf("%w: naver", ErrEmptySubject)
	}

	return &IdentityRecord{
		Provider:       model.ProviderNaver,
		ProviderUserID: info.Response.ID,
		Email:          info.Response.Email,
		Name:           info.Response.Name,
		ProfileImage:   info.Response.ProfileImage,
	}, nil
}

// compile-time interface check
var _ Provider = (*NaverProvider)(nil)
