// Package repository 는 문서 저장소 영속화 인터페이스를 정의한다.
//
// 모든 컬렉션 간 관계는 uid/id 문자열 값으로만 연결되며
// 데이터베이스 네이티브 참조는 사용하지 않는다.
package repository

import (
	"context"
	"time"

	"github.com/minsu/bakehouse/internal/model"
)

// UserUpsert 는 로그인 정합에 필요한 입력.
// IsAdminOnCreate 는 문서가 새로 생성될 때만 적용되고, 기존 문서의
// isAdmin은 어떤 로그인으로도 변경되지 않는다.
type UserUpsert struct {
	UID             string
	Provider        model.Provider
	Email           string
	Name            string
	ProfileImage    string
	IsAdminOnCreate bool
}

// UserRepository 는 이용자 문서의 영속화 인터페이스.
type UserRepository interface {
	// Upsert 는 로그인 1회를 원자적으로 반영한다.
	// 문서가 없으면 loginCount=1로 생성하고, 있으면 loginCount를 증가시키며
	// name/profileImage/email/lastLogin/updatedAt을 갱신한다.
	// createdAt, provider, isAdmin은 생성 시에만 기록되고 이후 보존된다.
	// 조회-후-쓰기가 아닌 단일 조건부 쓰기이므로 동시 로그인에도 계수가 유실되지 않는다.
	Upsert(ctx context.Context, input UserUpsert) (*model.User, error)

	// FindByUID 는 지정 uid의 이용자를 반환한다. 없으면 nil을 반환한다.
	FindByUID(ctx context.Context, uid string) (*model.User, error)

	// List 는 생성일 내림차순으로 이용자 목록을 반환한다.
	List(ctx context.Context, limit int) ([]*model.User, error)

	// SetAdmin 은 isAdmin 플래그를 변경한다. 특권 경로 전용이며
	// 호출 측은 반드시 감사 로그를 남겨야 한다.
	SetAdmin(ctx context.Context, uid string, isAdmin bool) error

	// DeleteByUID 는 이용자를 삭제한다.
	DeleteByUID(ctx context.Context, uid string) error
}

// ProfileRepository 는 이용자 프로필 문서의 영속화 인터페이스.
// users 와는 별도 컬렉션이며 프로필 페이지 최초 방문 시 지연 생성된다.
type ProfileRepository interface {
	// EnsureProfile 은 프로필이 없으면 생성하고, 있으면 그대로 반환한다.
	EnsureProfile(ctx context.Context, uid, name, email string) (*model.UserProfile, error)

	// UpdateSettings 는 알림 설정을 갱신한다.
	UpdateSettings(ctx context.Context, uid string, settings model.ProfileSettings) error

	// UpdateContact 는 이름/전화번호를 갱신한다.
	UpdateContact(ctx context.Context, uid, name, phone string) error

	// AddAddress 는 배송지를 추가한다. isDefault=true인 배송지를 추가하면
	// 기존 기본 배송지의 플래그는 해제된다(이용자당 기본 배송지 1개 불변식).
	AddAddress(ctx context.Context, uid string, addr model.Address) error

	// UpdateAddress 는 기존 배송지를 교체한다. 기본 배송지 불변식은 동일하게 유지된다.
	UpdateAddress(ctx context.Context, uid string, addr model.Address) error

	// RemoveAddress 는 배송지를 제거한다.
	RemoveAddress(ctx context.Context, uid, addressID string) error

	// DeleteByUID 는 프로필을 삭제한다.
	DeleteByUID(ctx context.Context, uid string) error
}

// ProductFilter 는 상품 목록 조회 조건.
type ProductFilter struct {
	Category   model.ProductCategory // 빈 값이면 전체
	Bestseller bool
	New        bool
	Popular    bool
}

// ProductRepository 는 상품 문서의 영속화 인터페이스.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id string) error
}

// SessionRepository 는 로그인 세션의 영속화 인터페이스.
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	// FindByID 는 지정 ID의 세션을 반환한다. 만료되었거나 없으면 nil을 반환한다.
	FindByID(ctx context.Context, id string) (*model.Session, error)
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUID 는 지정 이용자의 전체 세션을 삭제한다.
	DeleteByUID(ctx context.Context, uid string) error
}

// OrderRepository 는 주문 문서의 영속화 인터페이스.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	ListByUID(ctx context.Context, uid string) ([]*model.Order, error)
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error
}

// InquiryRepository 는 고객 문의의 영속화 인터페이스.
type InquiryRepository interface {
	Create(ctx context.Context, inquiry *model.Inquiry) error
	List(ctx context.Context, limit int) ([]*model.Inquiry, error)
}

// AdminLogRepository 는 관리자 감사 로그의 영속화 인터페이스.
type AdminLogRepository interface {
	Insert(ctx context.Context, log *model.AdminLog) error
	ListRecent(ctx context.Context, limit int) ([]*model.AdminLog, error)
	// DeleteOlderThan 은 보존 기간이 지난 감사 로그를 삭제하고 삭제 건수를 반환한다.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
