// Package config 는 환경변수 기반 설정을 제공한다.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Mode 는 외부 서비스 연동 모드를 나타낸다.
// 자격증명 부재를 묵시적으로 감지해 동작을 바꾸는 대신,
// 반드시 명시적으로 선언하게 한다.
type Mode string

const (
	// ModeLive 는 운영 모드. 필수 자격증명이 없으면 기동에 실패한다.
	ModeLive Mode = "live"
	// ModeMock 은 개발/테스트 모드. 토큰 발급·이미지 업로드·메일 발송이
	// 식별 가능한 모의 동작으로 대체된다.
	ModeMock Mode = "mock"
)

// OAuthProviderConfig 는 제공자별 OAuth2 클라이언트 설정을 보관한다.
type OAuthProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Config 는 애플리케이션 전체 설정을 보관한다.
// 환경변수에서 기동 시 1회 읽어 이뮤터블로 다룬다.
type Config struct {
	Mode Mode

	// Database
	MongoURL      string
	MongoDatabase string

	// OAuth
	Google OAuthProviderConfig
	Naver  OAuthProviderConfig
	Kakao  OAuthProviderConfig

	// 커스텀 토큰 / 세션
	TokenSigningKey []byte
	TokenTTL        time.Duration
	SessionMaxAge   int // 초

	// 관리자 운영 계정. 이 이메일로 처음 로그인한 계정만 isAdmin으로 생성된다.
	AdminEmail string

	// 미디어 CDN
	CloudinaryURL    string
	CloudinaryFolder string

	// SMTP
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// 제공자 API 호출 타임아웃
	ProviderTimeout time.Duration

	// Rate Limit (req/min/user)
	RateLimitGeneral int
	RateLimitEmail   int

	// Server
	ServerPort  string
	MetricsPort string
	BaseURL     string // 프론트엔드 리다이렉트 대상

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load 는 환경변수에서 Config를 읽는다.
// live 모드에서 필수 환경변수가 미설정이면 에러를 반환한다(fail-fast).
func Load() (*Config, error) {
	cfg := &Config{}

	switch m := Mode(getEnvString("APP_MODE", string(ModeLive))); m {
	case ModeLive, ModeMock:
		cfg.Mode = m
	default:
		return nil, fmt.Errorf("invalid APP_MODE: %q (must be live or mock)", m)
	}

	var missing []string
	requireEnv := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	// live 모드에서만 필수, mock 모드에서는 비어 있어도 된다.
	requireLive := func(key string) string {
		if cfg.Mode == ModeLive {
			return requireEnv(key)
		}
		return os.Getenv(key)
	}

	cfg.MongoURL = requireEnv("MONGODB_URL")
	cfg.BaseURL = requireEnv("BASE_URL")

	cfg.Google.ClientID = requireLive("GOOGLE_CLIENT_ID")
	cfg.Google.ClientSecret = requireLive("GOOGLE_CLIENT_SECRET")
	cfg.Google.RedirectURL = requireLive("GOOGLE_REDIRECT_URL")
	cfg.Naver.ClientID = requireLive("NAVER_CLIENT_ID")
	cfg.Naver.ClientSecret = requireLive("NAVER_CLIENT_SECRET")
	cfg.Naver.RedirectURL = requireLive("NAVER_REDIRECT_URL")
	cfg.Kakao.ClientID = requireLive("KAKAO_CLIENT_ID")
	cfg.Kakao.ClientSecret = requireLive("KAKAO_CLIENT_SECRET")
	cfg.Kakao.RedirectURL = requireLive("KAKAO_REDIRECT_URL")

	cfg.TokenSigningKey = []byte(requireLive("TOKEN_SIGNING_KEY"))
	cfg.CloudinaryURL = requireLive("CLOUDINARY_URL")
	cfg.SMTPHost = requireLive("SMTP_HOST")
	cfg.SMTPUser = requireLive("SMTP_USER")
	cfg.SMTPPass = requireLive("SMTP_PASS")

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	cfg.MongoDatabase = getEnvString("MONGODB_DATABASE", "bakehouse")
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", 5*time.Minute)
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.AdminEmail = getEnvString("ADMIN_EMAIL", "")
	cfg.CloudinaryFolder = getEnvString("CLOUDINARY_FOLDER", "bakehouse")
	cfg.SMTPPort = getEnvInt("SMTP_PORT", 587)
	cfg.SMTPFrom = getEnvString("SMTP_FROM", cfg.SMTPUser)
	cfg.ProviderTimeout = getEnvDuration("PROVIDER_TIMEOUT", 30*time.Second)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitEmail = getEnvInt("RATE_LIMIT_EMAIL", 5)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.MetricsPort = getEnvString("METRICS_PORT", "9090")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
