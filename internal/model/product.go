package model

import "time"

// ProductCategory 는 상품 분류를 나타낸다.
type ProductCategory string

const (
	CategoryRegular ProductCategory = "regular"
	CategoryCustom  ProductCategory = "custom"
	CategoryGift    ProductCategory = "gift"
)

// Valid 는 알려진 분류인지 검사한다.
func (c ProductCategory) Valid() bool {
	switch c {
	case CategoryRegular, CategoryCustom, CategoryGift:
		return true
	}
	return false
}

// 서버 측에서 강제하는 상품 등록 제한.
const (
	MaxProductTags       = 5
	MaxGalleryImages     = 4
	MaxDescriptionLength = 80
)

// Product 는 판매 상품을 나타낸다. 관리자 콘솔을 통해서만 생성/수정된다.
// DetailContent 는 저장 전에 새니타이즈된 HTML이다.
type Product struct {
	ID            string          `bson:"_id" json:"id"`
	Name          string          `bson:"name" json:"name"`
	NameKorean    string          `bson:"nameKorean" json:"nameKorean"`
	Description   string          `bson:"description" json:"description"`
	Price         int64           `bson:"price" json:"price"`
	Category      ProductCategory `bson:"category" json:"category"`
	Tags          []string        `bson:"tags" json:"tags"`
	Image         string          `bson:"image,omitempty" json:"image,omitempty"`
	Images        []string        `bson:"images" json:"images"`
	DetailImage   string          `bson:"detailImage,omitempty" json:"detailImage,omitempty"`
	DetailContent string          `bson:"detailContent,omitempty" json:"detailContent,omitempty"`
	IsBestseller  bool            `bson:"isBestseller" json:"isBestseller"`
	IsNew         bool            `bson:"isNew" json:"isNew"`
	IsPopular     bool            `bson:"isPopular" json:"isPopular"`
	CreatedAt     time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time       `bson:"updatedAt" json:"updatedAt"`
}
