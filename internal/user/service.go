// Package user 는 이용자 계정 관리의 도메인 로직을 제공한다.
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/minsu/bakehouse/internal/model"
	"github.com/minsu/bakehouse/internal/repository"
)

// Service 는 이용자 관리의 서비스 층.
// 탈퇴 처리의 비즈니스 로직을 제공한다.
type Service struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	sessionRepo repository.SessionRepository
}

// NewService 는 Service의 새 인스턴스를 생성한다.
func NewService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	sessionRepo repository.SessionRepository,
) *Service {
	return &Service{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		sessionRepo: sessionRepo,
	}
}

// Withdraw 는 이용자의 탈퇴 처리를 수행한다.
// 삭제 순서: 프로필 → 세션 → 이용자 문서.
// 주문 기록은 정산/분쟁 대응을 위해 남긴다.
func (s *Service) Withdraw(ctx context.Context, uid string) error {
	user, err := s.userRepo.FindByUID(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	slog.Info("withdrawal started", slog.String("uid", uid))

	if err := s.profileRepo.DeleteByUID(ctx, uid); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	if err := s.sessionRepo.DeleteByUID(ctx, uid); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}

	if err := s.userRepo.DeleteByUID(ctx, uid); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("withdrawal completed", slog.String("uid", uid))
	return nil
}
