// Package authstate 는 요청에 실린 여러 인증 자격의 해석을 담당한다.
//
// 하나의 요청에는 세션 쿠키, 커스텀 토큰, 클라이언트가 복원한 섀도 세션이
// 동시에 실려 올 수 있다. 자격 간 경합을 리스너 타이밍에 맡기지 않고,
// 단일 진입점 Resolve가 고정 우선순위로 해석한다:
//
//	네이티브 세션 > 커스텀 토큰 > 섀도 세션
//
// 섀도 세션은 클라이언트 저장소에서 복원된 블롭이므로 그 자체로는 절대
// 신뢰하지 않는다. 저장소에 같은 uid의 이용자 문서가 존재할 때만 인정하며,
// 권한(isAdmin)은 항상 저장소의 문서에서 읽는다.
package authstate

import (
	"context"
	"errors"
	"fmt"

	"github.com/minsu/bakehouse/internal/model"
	"github.com/minsu/bakehouse/internal/repository"
	"github.com/minsu/bakehouse/internal/token"
)

// ErrUnauthenticated 는 어떤 자격으로도 인증하지 못한 요청.
var ErrUnauthenticated = errors.New("authstate: no valid credential")

// Source 는 인증에 사용된 자격의 종류.
type Source string

const (
	SourceSession Source = "session"
	SourceToken   Source = "token"
	SourceShadow  Source = "shadow"
)

// ShadowSession 은 클라이언트가 로컬 저장소에서 복원한 로그인 상태.
// 서버는 uid 외의 필드를 신뢰하지 않는다.
type ShadowSession struct {
	UID      string `json:"uid"`
	Provider string `json:"provider,omitempty"`
	IsAdmin  bool   `json:"isAdmin,omitempty"` // 무시된다. 권한은 저장소가 결정한다.
}

// Credentials 는 한 요청에서 추출한 전체 자격.
type Credentials struct {
	SessionID   string
	BearerToken string
	Shadow      *ShadowSession
}

// Resolution 은 해석 결과. User는 항상 저장소 문서 또는 검증된 토큰 신원이다.
type Resolution struct {
	User   *model.User
	Source Source
}

// TokenVerifier 는 커스텀 토큰 검증 인터페이스.
type TokenVerifier interface {
	Verify(raw string) (*token.Identity, error)
}

// Resolver 는 자격 해석기.
type Resolver struct {
	sessions repository.SessionRepository
	users    repository.UserRepository
	tokens   TokenVerifier
}

// NewResolver 는 Resolver를 생성한다.
func NewResolver(sessions repository.SessionRepository, users repository.UserRepository, tokens TokenVerifier) *Resolver {
	return &Resolver{sessions: sessions, users: users, tokens: tokens}
}

// Resolve 는 자격을 고정 우선순위로 해석한다.
// 상위 자격이 무효하면 하위 자격으로 넘어가며, 전부 실패하면
// ErrUnauthenticated를 반환한다.
func (r *Resolver) Resolve(ctx context.Context, creds Credentials) (*Resolution, error) {
	if creds.SessionID != "" {
		if res, err := r.resolveSession(ctx, creds.SessionID); err != nil {
			return nil, err
		} else if res != nil {
			return res, nil
		}
	}

	if creds.BearerToken != "" {
		if res, err := r.resolveToken(ctx, creds.BearerToken); err != nil {
			return nil, err
		} else if res != nil {
			return res, nil
		}
	}

	if creds.Shadow != nil && creds.Shadow.UID != "" {
		if res, err := r.resolveShadow(ctx, creds.Shadow); err != nil {
			return nil, err
		} else if res != nil {
			return res, nil
		}
	}

	return nil, ErrUnauthenticated
}

func (r *Resolver) resolveSession(ctx context.Context, sessionID string) (*Resolution, error) {
	session, err := r.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, nil
	}
	user, err := r.users.FindByUID(ctx, session.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		// 세션은 살아 있지만 이용자 문서가 없는 경우. 정합 실패가 남긴
		// 흔적이므로 토큰 신원 수준으로 강등해 비관리자로 취급한다.
		user = &model.User{UID: session.UID, Provider: session.Provider}
	}
	return &Resolution{User: user, Source: SourceSession}, nil
}

func (r *Resolver) resolveToken(ctx context.Context, raw string) (*Resolution, error) {
	identity, err := r.tokens.Verify(raw)
	if err != nil {
		// 무효 토큰은 하위 자격으로 넘어가지 않고 즉시 거부한다.
		// 위조 시도를 섀도 세션으로 우회시키지 않기 위함이다.
		return nil, fmt.Errorf("invalid bearer token: %w", err)
	}
	user, err := r.users.FindByUID(ctx, identity.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		user = &model.User{
			UID:          identity.UID,
			Provider:     identity.Provider,
			Email:        identity.Email,
			Name:         identity.Name,
			ProfileImage: identity.ProfileImage,
		}
	}
	return &Resolution{User: user, Source: SourceToken}, nil
}

func (r *Resolver) resolveShadow(ctx context.Context, shadow *ShadowSession) (*Resolution, error) {
	user, err := r.users.FindByUID(ctx, shadow.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		// 저장소에 없는 uid의 섀도 세션은 인정하지 않는다.
		return nil, nil
	}
	return &Resolution{User: user, Source: SourceShadow}, nil
}
