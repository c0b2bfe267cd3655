// Package database 는 MongoDB 연결 관리를 제공한다.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Connect 는 MongoDB에 접속해 지정한 데이터베이스 핸들을 반환한다.
// 접속 확인(Ping)까지 마친 뒤 반환하므로, 반환 시점에 연결은 유효하다.
func Connect(ctx context.Context, url, database string) (*mongo.Database, error) {
	client, err := mongo.Connect(
		options.Client().
			ApplyURI(url).
			SetConnectTimeout(10 * time.Second).
			SetMaxPoolSize(100).
			SetRetryWrites(true).
			SetRetryReads(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client.Database(database), nil
}

// Disconnect 는 데이터베이스 연결을 종료한다.
func Disconnect(ctx context.Context, db *mongo.Database) error {
	if db == nil {
		return nil
	}
	return db.Client().Disconnect(ctx)
}
