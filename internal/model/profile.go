package model

import "time"

// UserProfile 은 이용자가 직접 관리하는 프로필 정보를 나타낸다.
// users 컬렉션과는 별도 컬렉션이며, 프로필 페이지 최초 방문 시 지연 생성된다.
// 로그인 시 제공자 정보로 덮어쓰이는 users와 달리 이 문서의 필드는
// 이용자가 수정하지 않는 한 보존된다.
type UserProfile struct {
	UID       string          `bson:"uid" json:"uid"`
	Name      string          `bson:"name" json:"name"`
	Email     string          `bson:"email" json:"email"`
	Phone     string          `bson:"phone,omitempty" json:"phone,omitempty"`
	Addresses []Address       `bson:"addresses" json:"addresses"`
	Settings  ProfileSettings `bson:"settings" json:"settings"`
	CreatedAt time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// ProfileSettings 는 알림 수신 설정을 나타낸다.
type ProfileSettings struct {
	Notifications bool `bson:"notifications" json:"notifications"`
	Marketing     bool `bson:"marketing" json:"marketing"`
	SMS           bool `bson:"sms" json:"sms"`
}

// Address 는 프로필에 내장되는 배송지를 나타낸다.
// 불변식: 이용자당 isDefault=true 인 배송지는 최대 1개.
type Address struct {
	ID            string `bson:"id" json:"id"`
	Label         string `bson:"label" json:"label"`
	Recipient     string `bson:"recipient" json:"recipient"`
	Phone         string `bson:"phone" json:"phone"`
	Address       string `bson:"address" json:"address"`
	DetailAddress string `bson:"detailAddress,omitempty" json:"detailAddress,omitempty"`
	ZipCode       string `bson:"zipCode" json:"zipCode"`
	IsDefault     bool   `bson:"isDefault" json:"isDefault"`
}
