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

// MongoUserRepo 는 MongoDB를 사용한 이용자 리포지토리.
type MongoUserRepo struct {
	coll *mongo.Collection
}

// NewMongoUserRepo 는 MongoUserRepo를 생성한다.
func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{coll: db.Collection("users")}
}

// Upsert 는 로그인 1회를 단일 FindOneAndUpdate(upsert)로 반영한다.
// $inc/$setOnInsert 조합이므로 동일 uid에 대한 동시 로그인이
// 경합해도 loginCount가 유실되지 않는다.
func (r *MongoUserRepo) Upsert(ctx context.Context, input UserUpsert) (*model.User, error) {
	now := time.Now()
	filter := bson.M{"uid": input.UID}
	update := bson.M{
		"$inc": bson.M{"loginCount": 1},
		"$set": bson.M{
			"email":        input.Email,
			"name":         input.Name,
			"profileImage": input.ProfileImage,
			"lastLogin":    now,
			"updatedAt":    now,
		},
		"$setOnInsert": bson.M{
			"uid":       input.UID,
			"provider":  input.Provider,
			"isAdmin":   input.IsAdminOnCreate,
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	user := &model.User{}
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(user); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}

// FindByUID 는 지정 uid의 이용자를 반환한다. 없으면 nil을 반환한다.
func (r *MongoUserRepo) FindByUID(ctx context.Context, uid string) (*model.User, error) {
	user := &model.User{}
	err := r.coll.FindOne(ctx, bson.M{"uid": uid}).Decode(user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by uid: %w", err)
	}
	return user, nil
}

// List 는 생성일 내림차순으로 이용자 목록을 반환한다.
func (r *MongoUserRepo) List(ctx context.Context, limit int) ([]*model.User, error) {
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// SetAdmin 은 isAdmin 플래그를 변경한다.
func (r *MongoUserRepo) SetAdmin(ctx context.Context, uid string, isAdmin bool) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"uid": uid},
		bson.M{"$set": bson.M{"isAdmin": isAdmin, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to set admin flag: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user not found: %s", uid)
	}
	return nil
}

// DeleteByUID 는 이용자를 삭제한다.
func (r *MongoUserRepo) DeleteByUID(ctx context.Context, uid string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"uid": uid})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("user not found: %s", uid)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*MongoUserRepo)(nil)
