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

// MongoOrderRepo 는 MongoDB를 사용한 주문 리포지토리.
type MongoOrderRepo struct {
	coll *mongo.Collection
}

// NewMongoOrderRepo 는 MongoOrderRepo를 생성한다.
func NewMongoOrderRepo(db *mongo.Database) *MongoOrderRepo {
	return &MongoOrderRepo{coll: db.Collection("orders")}
}

// Create 는 주문을 생성한다.
func (r *MongoOrderRepo) Create(ctx context.Context, order *model.Order) error {
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

// FindByID 는 지정 ID의 주문을 반환한다. 없으면 nil을 반환한다.
func (r *MongoOrderRepo) FindByID(ctx context.Context, id string) (*model.Order, error) {
	order := &model.Order{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return order, nil
}

// ListByUID 는 이용자의 주문을 생성일 내림차순으로 반환한다.
func (r *MongoOrderRepo) ListByUID(ctx context.Context, uid string) ([]*model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"uid": uid}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*model.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus 는 주문 상태를 변경한다.
func (r *MongoOrderRepo) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("order not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ OrderRepository = (*MongoOrderRepo)(nil)

// MongoInquiryRepo 는 MongoDB를 사용한 고객 문의 리포지토리.
type MongoInquiryRepo struct {
	coll *mongo.Collection
}

// NewMongoInquiryRepo 는 MongoInquiryRepo를 생성한다.
func NewMongoInquiryRepo(db *mongo.Database) *MongoInquiryRepo {
	return &MongoInquiryRepo{coll: db.Collection("inquiries")}
}

// Create 는 문의를 생성한다.
func (r *MongoInquiryRepo) Create(ctx context.Context, inquiry *model.Inquiry) error {
	inquiry.CreatedAt = time.Now()
	if _, err := r.coll.InsertOne(ctx, inquiry); err != nil {
		return fmt.Errorf("failed to insert inquiry: %w", err)
	}
	return nil
}

// List 는 문의를 생성일 내림차순으로 반환한다.
func (r *MongoInquiryRepo) List(ctx context.Context, limit int) ([]*model.Inquiry, error) {
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list inquiries: %w", err)
	}
	defer cursor.Close(ctx)

	var inquiries []*model.Inquiry
	if err := cursor.All(ctx, &inquiries); err != nil {
		return nil, fmt.Errorf("failed to decode inquiries: %w", err)
	}
	return inquiries, nil
}

// compile-time interface check
var _ InquiryRepository = (*MongoInquiryRepo)(nil)
