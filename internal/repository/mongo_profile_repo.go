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

// MongoProfileRepo 는 MongoDB를 사용한 프로필 리포지토리.
type MongoProfileRepo struct {
	coll *mongo.Collection
}

// NewMongoProfileRepo 는 MongoProfileRepo를 생성한다.
func NewMongoProfileRepo(db *mongo.Database) *MongoProfileRepo {
	return &MongoProfileRepo{coll: db.Collection("user_profiles")}
}

// EnsureProfile 은 프로필이 없으면 생성하고, 있으면 기존 문서를 그대로 반환한다.
// $setOnInsert 만 사용하므로 기존 프로필의 이용자 수정 필드(전화번호, 배송지)는
// 절대 덮어쓰이지 않는다.
func (r *MongoProfileRepo) EnsureProfile(ctx context.Context, uid, name, email string) (*model.UserProfile, error) {
	now := time.Now()
	update := bson.M{
		"$setOnInsert": bson.M{
			"uid":       uid,
			"name":      name,
			"email":     email,
			"addresses": []model.Address{},
			"settings": model.ProfileSettings{
				Notifications: true,
			},
			"createdAt": now,
			"updatedAt": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	profile := &model.UserProfile{}
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"uid": uid}, update, opts).Decode(profile); err != nil {
		return nil, fmt.Errorf("failed to ensure profile: %w", err)
	}
	return profile, nil
}

// UpdateSettings 는 알림 설정을 갱신한다.
func (r *MongoProfileRepo) UpdateSettings(ctx context.Context, uid string, settings model.ProfileSettings) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"uid": uid},
		bson.M{"$set": bson.M{"settings": settings, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("profile not found: %s", uid)
	}
	return nil
}

// UpdateContact 는 이름/전화번호를 갱신한다.
func (r *MongoProfileRepo) UpdateContact(ctx context.Context, uid, name, phone string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"uid": uid},
		bson.M{"$set": bson.M{"name": name, "phone": phone, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("profile not found: %s", uid)
	}
	return nil
}

// AddAddress 는 배송지를 추가한다.
// 기본 배송지로 추가하는 경우 기존 플래그 해제와 추가를 단일 갱신
// 파이프라인으로 묶어, 동시 요청에도 이용자당 기본 배송지 1개
// 불변식을 유지한다.
func (r *MongoProfileRepo) AddAddress(ctx context.Context, uid string, addr model.Address) error {
	var update any = bson.M{
		"$push": bson.M{"addresses": addr},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	if addr.IsDefault {
		update = addDefaultAddressPipeline(addr)
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"uid": uid}, update)
	if err != nil {
		return fmt.Errorf("failed to add address: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("profile not found: %s", uid)
	}
	return nil
}

// UpdateAddress 는 기존 배송지를 같은 id의 새 값으로 교체한다.
// 기본 배송지로 바꾸는 경우 교체와 다른 배송지의 플래그 해제를
// 단일 갱신 파이프라인으로 수행한다.
func (r *MongoProfileRepo) UpdateAddress(ctx context.Context, uid string, addr model.Address) error {
	var update any = bson.M{
		"$set": bson.M{"addresses.$": addr, "updatedAt": time.Now()},
	}
	if addr.IsDefault {
		update = replaceDefaultAddressPipeline(addr)
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"uid": uid, "addresses.id": addr.ID},
		update,
	)
	if err != nil {
		return fmt.Errorf("failed to update address: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("address not found: %s", addr.ID)
	}
	return nil
}

// addDefaultAddressPipeline 은 기존 배송지의 기본 플래그를 모두 해제하면서
// 새 기본 배송지를 덧붙이는 단일 갱신 파이프라인을 만든다.
// 배송지 값은 $literal로 감싸 이용자 입력이 식으로 해석되지 않게 한다.
func addDefaultAddressPipeline(addr model.Address) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"addresses": bson.M{"$concatArrays": bson.A{
				bson.M{"$map": bson.M{
					"input": bson.M{"$ifNull": bson.A{"$addresses", bson.A{}}},
					"as":    "a",
					"in":    bson.M{"$mergeObjects": bson.A{"$$a", bson.M{"isDefault": false}}},
				}},
				bson.M{"$literal": bson.A{addr}},
			}},
			"updatedAt": "$$NOW",
		}}},
	}
}

// replaceDefaultAddressPipeline 은 같은 id의 배송지를 새 값으로 교체하면서
// 나머지 배송지의 기본 플래그를 해제하는 단일 갱신 파이프라인을 만든다.
func replaceDefaultAddressPipeline(addr model.Address) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"addresses": bson.M{"$map": bson.M{
				"input": bson.M{"$ifNull": bson.A{"$addresses", bson.A{}}},
				"as":    "a",
				"in": bson.M{"$cond": bson.A{
					bson.M{"$eq": bson.A{"$$a.id", bson.M{"$literal": addr.ID}}},
					bson.M{"$literal": addr},
					bson.M{"$mergeObjects": bson.A{"$$a", bson.M{"isDefault": false}}},
				}},
			}},
			"updatedAt": "$$NOW",
		}}},
	}
}

// RemoveAddress 는 배송지를 제거한다.
func (r *MongoProfileRepo) RemoveAddress(ctx context.Context, uid, addressID string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"uid": uid},
		bson.M{
			"$pull": bson.M{"addresses": bson.M{"id": addressID}},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to remove address: %w", err)
	}
	if res.ModifiedCount == 0 {
		return fmt.Errorf("address not found: %s", addressID)
	}
	return nil
}

// DeleteByUID 는 프로필을 삭제한다. 프로필이 없어도 에러로 취급하지 않는다.
func (r *MongoProfileRepo) DeleteByUID(ctx context.Context, uid string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"uid": uid}); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ProfileRepository = (*MongoProfileRepo)(nil)
