package model

import "time"

// OrderStatus 는 주문 상태를 나타낸다.
// 결제 연동은 범위 밖이므로 주문은 pending 상태로 생성된다.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderItem 은 주문에 포함된 상품 한 줄을 나타낸다.
// 상품 정보는 주문 시점 스냅샷으로 비정규화 저장한다.
type OrderItem struct {
	ProductID string `bson:"productId" json:"productId"`
	Name      string `bson:"name" json:"name"`
	Price     int64  `bson:"price" json:"price"`
	Quantity  int    `bson:"quantity" json:"quantity"`
}

// Order 는 주문을 나타낸다. uid 문자열 값으로만 이용자와 연결된다.
type Order struct {
	ID         string      `bson:"_id" json:"id"`
	UID        string      `bson:"uid" json:"uid"`
	Items      []OrderItem `bson:"items" json:"items"`
	TotalPrice int64       `bson:"totalPrice" json:"totalPrice"`
	Status     OrderStatus `bson:"status" json:"status"`
	AddressID  string      `bson:"addressId,omitempty" json:"addressId,omitempty"`
	Memo       string      `bson:"memo,omitempty" json:"memo,omitempty"`
	CreatedAt  time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time   `bson:"updatedAt" json:"updatedAt"`
}

// Inquiry 는 고객 문의를 나타낸다. 비로그인 상태에서도 작성할 수 있다.
type Inquiry struct {
	ID        string    `bson:"_id" json:"id"`
	UID       string    `bson:"uid,omitempty" json:"uid,omitempty"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Subject   string    `bson:"subject" json:"subject"`
	Message   string    `bson:"message" json:"message"`
	Answered  bool      `bson:"answered" json:"answered"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
