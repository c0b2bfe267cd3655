package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/minsu/bakehouse/internal/model"
)

// MongoProductRepo 는 MongoDB를 사용한 상품 리포지토리.
type MongoProductRepo struct {
	coll *mongo.Collection
}

// NewMongoProductRepo 는 MongoProductRepo를 생성한다.
func NewMongoProductRepo(db *mongo.Database) *MongoProductRepo {
	return &MongoProductRepo{coll: db.Collection("products")}
}

// FindByID 는 지정 ID의 상품을 반환한다. 없으면 nil을 반환한다.
func (r *MongoProductRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	product := &model.Product{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return product, nil
}

// List 는 조건에 맞는 상품을 생성일 내림차순으로 반환한다.
func (r *MongoProductRepo) List(ctx context.Context, filter ProductFilter) ([]*model.Product, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Bestseller {
		query["isBestseller"] = true
	}
	if filter.New {
		query["isNew"] = true
	}
	if filter.Popular {
		query["isPopular"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []*model.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// Create 는 상품을 생성한다.
func (r *MongoProductRepo) Create(ctx context.Context, p *model.Product) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// Update 는 상품 전체를 교체한다. createdAt은 기존 값을 유지한다.
func (r *MongoProductRepo) Update(ctx context.Context, p *model.Product) error {
	p.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"name":          p.Name,
		"nameKorean":    p.NameKorean,
		"description":   p.Description,
		"price":         p.Price,
		"category":      p.Category,
		"tags":          p.Tags,
		"image":         p.Image,
		"images":        p.Images,
		"detailImage":   p.DetailImage,
		"detailContent": p.DetailContent,
		"isBestseller":  p.IsBestseller,
		"isNew":         p.IsNew,
		"isPopular":     p.IsPopular,
		"updatedAt":     p.UpdatedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": p.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("product not found: %s", p.ID)
	}
	return nil
}

// Delete 는 상품을 삭제한다.
func (r *MongoProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("product not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ ProductRepository = (*MongoProductRepo)(nil)
