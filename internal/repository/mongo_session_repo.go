package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/minsu/bakehouse/internal/model"
)

// MongoSessionRepo 는 MongoDB를 사용한 세션 리포지토리.
// expiresAt TTL 인덱스로 만료 세션이 백그라운드에서 정리되지만,
// TTL 삭제는 지연될 수 있으므로 조회 시에도 만료를 검사한다.
type MongoSessionRepo struct {
	coll *mongo.Collection
}

// NewMongoSessionRepo 는 MongoSessionRepo를 생성한다.
func NewMongoSessionRepo(db *mongo.Database) *MongoSessionRepo {
	return &MongoSessionRepo{coll: db.Collection("sessions")}
}

// Create 는 세션을 생성한다.
func (r *MongoSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if _, err := r.coll.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// FindByID 는 지정 ID의 세션을 반환한다. 만료되었거나 없으면 nil을 반환한다.
func (r *MongoSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	session := &model.Session{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, nil
	}
	return session, nil
}

// DeleteByID 는 세션을 삭제한다. 이미 없는 세션도 에러로 취급하지 않는다.
func (r *MongoSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteByUID 는 지정 이용자의 전체 세션을 삭제한다.
func (r *MongoSessionRepo) DeleteByUID(ctx context.Context, uid string) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"uid": uid}); err != nil {
		return fmt.Errorf("failed to delete sessions by uid: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SessionRepository = (*MongoSessionRepo)(nil)
