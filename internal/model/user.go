// Package model 은 도메인 모델을 정의한다.
package model

import "time"

// Provider 는 소셜 로그인 제공자를 나타낸다.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderNaver  Provider = "naver"
	ProviderKakao  Provider = "kakao"
)

// Bridged 는 관리형 세션이 직접 지원하지 않아 커스텀 토큰 브리지를
// 거쳐야 하는 제공자인지 여부를 반환한다. Google만 네이티브 경로를 사용한다.
func (p Provider) Bridged() bool {
	return p == ProviderNaver || p == ProviderKakao
}

// Valid 는 알려진 제공자인지 검사한다.
func (p Provider) Valid() bool {
	switch p {
	case ProviderGoogle, ProviderNaver, ProviderKakao:
		return true
	}
	return false
}

// User 는 한 명의 이용자를 나타낸다. uid는 계정 수명 동안 불변이며
// 다른 모든 컬렉션이 참조하는 유일한 조인 키다.
// 브리지 제공자의 uid는 "<provider>_<providerUserID>" 형식으로 네임스페이스된다.
type User struct {
	UID          string    `bson:"uid" json:"uid"`
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name"`
	Provider     Provider  `bson:"provider" json:"provider"`
	ProfileImage string    `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	IsAdmin      bool      `bson:"isAdmin" json:"isAdmin"`
	LoginCount   int       `bson:"loginCount" json:"loginCount"`
	LastLogin    time.Time `bson:"lastLogin" json:"lastLogin"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Session 은 서버 측 로그인 세션을 나타낸다. 네이티브 경로와
// 커스텀 토큰 교환 경로 양쪽 모두 최종적으로 세션으로 수렴한다.
type Session struct {
	ID        string    `bson:"_id"`
	UID       string    `bson:"uid"`
	Provider  Provider  `bson:"provider"`
	ExpiresAt time.Time `bson:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt"`
}

// AdminLog 는 관리자 조작의 감사 기록을 나타낸다.
type AdminLog struct {
	ID        string    `bson:"_id" json:"id"`
	AdminUID  string    `bson:"adminUid" json:"adminUid"`
	Action    string    `bson:"action" json:"action"`
	TargetID  string    `bson:"targetId,omitempty" json:"targetId,omitempty"`
	Detail    string    `bson:"detail,omitempty" json:"detail,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
