package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/minsu/bakehouse/internal/model"
)

// MongoAdminLogRepo 는 MongoDB를 사용한 관리자 감사 로그 리포지토리.
type MongoAdminLogRepo struct {
	coll *mongo.Collection
}

// NewMongoAdminLogRepo 는 MongoAdminLogRepo를 생성한다.
func NewMongoAdminLogRepo(db *mongo.Database) *MongoAdminLogRepo {
	return &MongoAdminLogRepo{coll: db.Collection("admin_logs")}
}

// Insert 는 감사 로그를 기록한다.
func (r *MongoAdminLogRepo) Insert(ctx context.Context, log *model.AdminLog) error {
	log.CreatedAt = time.Now()
	if _, err := r.coll.InsertOne(ctx, log); err != nil {
		return fmt.Errorf("failed to insert admin log: %w", err)
	}
	return nil
}

// ListRecent 는 최근 감사 로그를 생성일 내림차순으로 반환한다.
func (r *MongoAdminLogRepo) ListRecent(ctx context.Context, limit int) ([]*model.AdminLog, error) {
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin logs: %w", err)
	}
	defer cursor.Close(ctx)

	var logs []*model.AdminLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("failed to decode admin logs: %w", err)
	}
	return logs, nil
}

// DeleteOlderThan 은 보존 기간이 지난 감사 로그를 삭제한다.
func (r *MongoAdminLogRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete old admin logs: %w", err)
	}
	return res.DeletedCount, nil
}

// compile-time interface check
var _ AdminLogRepository = (*MongoAdminLogRepo)(nil)
