package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// EnsureIndexes 는 서비스가 의존하는 인덱스를 생성한다.
// 멱등 연산이므로 기동 시마다 호출해도 안전하다.
//
//   - users.uid: 유니크. uid가 유일한 조인 키라는 불변식의 저장소 측 보증.
//   - user_profiles.uid: 유니크.
//   - sessions.expiresAt: TTL. 만료 세션의 백그라운드 정리.
//   - products.category, orders.uid, admin_logs.createdAt: 조회 경로.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	indexes := []struct {
		collection string
		model      mongo.IndexModel
	}{
		{"users", mongo.IndexModel{
			Keys:    bson.D{{Key: "uid", Value: 1}},
			Options: unique,
		}},
		{"user_profiles", mongo.IndexModel{
			Keys:    bson.D{{Key: "uid", Value: 1}},
			Options: unique,
		}},
		{"sessions", mongo.IndexModel{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		}},
		{"products", mongo.IndexModel{
			Keys: bson.D{{Key: "category", Value: 1}},
		}},
		{"orders", mongo.IndexModel{
			Keys: bson.D{{Key: "uid", Value: 1}, {Key: "createdAt", Value: -1}},
		}},
		{"admin_logs", mongo.IndexModel{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		}},
	}

	for _, idx := range indexes {
		if _, err := db.Collection(idx.collection).Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", idx.collection, err)
		}
	}
	return nil
}
