package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/minsu/bakehouse/internal/model"
	"github.com/minsu/bakehouse/internal/repository"
	"github.com/minsu/bakehouse/internal/token"
)

// MetricsRecorder 는 인증 플로우가 기록하는 메트릭의 인터페이스.
type MetricsRecorder interface {
	RecordLogin(provider string, outcome string)
	RecordTokenMinted(mock bool)
	RecordUserUpsertFailure()
	RecordReconcileLatency(duration time.Duration)
}

// TokenIssuer 는 커스텀 토큰 발급/검증 인터페이스.
// token.Issuer의 부분집합으로 정의한다.
type TokenIssuer interface {
	Mint(uid string, provider model.Provider, email, name, profileImage string) (*token.Minted, error)
	Verify(raw string) (*token.Identity, error)
}

// ServiceConfig 는 인증 서비스의 설정.
type ServiceConfig struct {
	SessionMaxAge int    // 세션 유효기간(초)
	AdminEmail    string // 운영자 이메일. 최초 생성 시 isAdmin 판정에만 사용된다.
}

// CallbackResult 는 OAuth 콜백 처리 결과.
// 네이티브 제공자(google)는 Session이, 브리지 제공자(naver, kakao)는
// CustomToken이 채워진다. 브리지 경로의 토큰은 이후 /auth/session 에서
// 세션으로 교환된다.
type CallbackResult struct {
	Provider    model.Provider
	UID         string
	Session     *model.Session
	CustomToken *token.Minted
}

// MintRequest 는 커스텀 토큰 발급 요청.
type MintRequest struct {
	ProviderUserID string
	Email          string
	Name           string
	ProfileImage   string
}

// Service 는 소셜 로그인과 계정 정합의 비즈니스 로직을 제공한다.
type Service struct {
	providers   map[model.Provider]Provider
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	issuer      TokenIssuer
	metrics     MetricsRecorder
	config      ServiceConfig
}

// NewService 는 Service를 생성한다.
func NewService(
	providers []Provider,
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	issuer TokenIssuer,
	metrics MetricsRecorder,
	config ServiceConfig,
) *Service {
	m := make(map[model.Provider]Provider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	return &Service{
		providers:   m,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		issuer:      issuer,
		metrics:     metrics,
		config:      config,
	}
}

// LoginURL 은 지정 제공자의 OAuth 인가 URL을 생성한다.
func (s *Service) LoginURL(provider model.Provider, state string) (string, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", model.NewUnknownProviderError(string(provider))
	}
	return p.LoginURL(state), nil
}

// HandleCallback 은 OAuth 콜백을 처리한다.
//
// 제공자에서 받은 신원을 정규화한 뒤 이용자 문서를 정합(upsert)하고,
// 네이티브 제공자는 즉시 세션을 발급한다. 브리지 제공자는 커스텀 토큰을
// 발급해 반환하며, 클라이언트가 이를 세션으로 교환한다.
//
// 이용자 문서 upsert 실패는 로그인 자체를 실패시키지 않는다.
// 2차 영속화 실패로 로그인을 막으면 이용자가 잠기기 때문이다.
// 실패는 로그와 메트릭으로 관측한다.
func (s *Service) HandleCallback(ctx context.Context, provider model.Provider, code string) (*CallbackResult, error) {
	p, ok := s.providers[provider]
	if !ok {
		return nil, model.NewUnknownProviderError(string(provider))
	}

	identity, err := p.Exchange(ctx, code)
	if err != nil {
		s.metrics.RecordLogin(string(provider), "exchange_failed")
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	user := s.reconcile(ctx, identity)
	uid := identity.UID()

	result := &CallbackResult{Provider: provider, UID: uid}

	if provider.Bridged() {
		minted, err := s.issuer.Mint(uid, provider, identity.Email, identity.Name, identity.ProfileImage)
		if err != nil {
			s.metrics.RecordLogin(string(provider), "mint_failed")
			return nil, fmt.Errorf("failed to mint custom token: %w", err)
		}
		s.metrics.RecordTokenMinted(minted.Mock)
		result.CustomToken = minted
	} else {
		session, err := s.createSession(ctx, uid, provider)
		if err != nil {
			s.metrics.RecordLogin(string(provider), "session_failed")
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
		result.Session = session
	}

	s.metrics.RecordLogin(string(provider), "success")
	if user != nil {
		slog.Info("user logged in",
			slog.String("uid", uid),
			slog.String("provider", string(provider)),
			slog.Int("login_count", user.LoginCount),
		)
	}
	return result, nil
}

// MintCustomToken 은 브리지 제공자의 정규화된 신원으로 커스텀 토큰을 발급한다.
// 같은 호출 안에서 이용자 문서를 정합한다.
func (s *Service) MintCustomToken(ctx context.Context, provider model.Provider, req MintRequest) (*token.Minted, error) {
	if !provider.Valid() || !provider.Bridged() {
		return nil, model.NewUnknownProviderError(string(provider))
	}
	if req.ProviderUserID == "" {
		return nil, model.NewValidationError("providerUserId가 비어 있습니다")
	}

	identity := &IdentityRecord{
		Provider:       provider,
		ProviderUserID: req.ProviderUserID,
		Email:          req.Email,
		Name:           req.Name,
		ProfileImage:   req.ProfileImage,
	}
	s.reconcile(ctx, identity)

	minted, err := s.issuer.Mint(identity.UID(), provider, req.Email, req.Name, req.ProfileImage)
	if err != nil {
		return nil, fmt.Errorf("failed to mint custom token: %w", err)
	}
	s.metrics.RecordTokenMinted(minted.Mock)
	return minted, nil
}

// RedeemCustomToken 은 커스텀 토큰을 검증하고 세션을 발급한다.
func (s *Service) RedeemCustomToken(ctx context.Context, raw string) (*model.Session, error) {
	identity, err := s.issuer.Verify(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to verify custom token: %w", err)
	}

	session, err := s.createSession(ctx, identity.UID, identity.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("custom token redeemed",
		slog.String("uid", identity.UID),
		slog.String("provider", string(identity.Provider)),
	)
	return session, nil
}

// Logout 은 세션을 파기한다. 어떤 경로로 인증되었든 무조건 삭제한다.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}
	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// GetCurrentUser 는 세션에서 현재 이용자를 조회한다.
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session not found or expired")
	}
	user, err := s.userRepo.FindByUID(ctx, session.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// reconcile 은 이용자 문서를 best-effort로 정합한다. 실패 시 nil을 반환한다.
func (s *Service) reconcile(ctx context.Context, identity *IdentityRecord) *model.User {
	start := time.Now()
	user, err := s.userRepo.Upsert(ctx, repository.UserUpsert{
		UID:             identity.UID(),
		Provider:        identity.Provider,
		Email:           identity.Email,
		Name:            identity.Name,
		ProfileImage:    identity.ProfileImage,
		IsAdminOnCreate: s.config.AdminEmail != "" && identity.Email == s.config.AdminEmail,
	})
	if err != nil {
		s.metrics.RecordUserUpsertFailure()
		slog.Error("failed to upsert user document",
			slog.String("uid", identity.UID()),
			slog.String("provider", string(identity.Provider)),
			slog.String("error", err.Error()),
		)
		return nil
	}
	s.metrics.RecordReconcileLatency(time.Since(start))
	return user
}

// createSession 은 세션을 생성해 영속화한다.
func (s *Service) createSession(ctx context.Context, uid string, provider model.Provider) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}
	session := &model.Session{
		ID:        sessionID,
		UID:       uid,
		Provider:  provider,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return session, nil
}

// generateSessionID 는 암호학적으로 안전한 세션 ID를 생성한다.
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
