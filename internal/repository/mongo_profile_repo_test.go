package repository

import (
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/minsu/bakehouse/internal/model"
)

func testAddress(isDefault bool) model.Address {
	return model.Address{
		ID:        "addr-1",
		Recipient: "김민수",
		Phone:     "010-1234-5678",
		Address:   "서울시 마포구 베이커리로 1",
		IsDefault: isDefault,
	}
}

// 파이프라인의 $set 스테이지에서 addresses 식을 꺼낸다.
func addressesExpr(t *testing.T, pipeline []bson.D) bson.M {
	t.Helper()
	if len(pipeline) != 1 {
		t.Fatalf("expected a single update stage, got %d", len(pipeline))
	}
	stage := pipeline[0]
	if stage[0].Key != "$set" {
		t.Fatalf("stage key = %s, want $set", stage[0].Key)
	}
	set, ok := stage[0].Value.(bson.M)
	if !ok {
		t.Fatalf("$set value is %T, want bson.M", stage[0].Value)
	}
	if set["updatedAt"] != "$$NOW" {
		t.Errorf("updatedAt = %v, want $$NOW", set["updatedAt"])
	}
	expr, ok := set["addresses"].(bson.M)
	if !ok {
		t.Fatalf("addresses expr is %T, want bson.M", set["addresses"])
	}
	return expr
}

func TestAddDefaultAddressPipelineClearsExistingDefaults(t *testing.T) {
	addr := testAddress(true)
	expr := addressesExpr(t, addDefaultAddressPipeline(addr))

	concat, ok := expr["$concatArrays"].(bson.A)
	if !ok || len(concat) != 2 {
		t.Fatalf("expected $concatArrays of 2 elements, got %v", expr)
	}

	// 첫 요소: 기존 배송지 전체의 기본 플래그 해제
	mapExpr, ok := concat[0].(bson.M)["$map"].(bson.M)
	if !ok {
		t.Fatalf("first element must be a $map, got %v", concat[0])
	}
	merge, ok := mapExpr["in"].(bson.M)["$mergeObjects"].(bson.A)
	if !ok || len(merge) != 2 {
		t.Fatalf("$map must merge isDefault=false into each address, got %v", mapExpr["in"])
	}
	if cleared := merge[1].(bson.M); cleared["isDefault"] != false {
		t.Errorf("existing addresses must be cleared, got %v", cleared)
	}

	// 둘째 요소: 새 기본 배송지를 리터럴로 덧붙인다
	literal, ok := concat[1].(bson.M)["$literal"].(bson.A)
	if !ok || len(literal) != 1 {
		t.Fatalf("appended address must be a $literal array, got %v", concat[1])
	}
	appended, ok := literal[0].(model.Address)
	if !ok || !appended.IsDefault || appended.ID != addr.ID {
		t.Errorf("appended address = %v, want new default %s", literal[0], addr.ID)
	}
}

func TestReplaceDefaultAddressPipelineKeepsSingleDefault(t *testing.T) {
	addr := testAddress(true)
	expr := addressesExpr(t, replaceDefaultAddressPipeline(addr))

	mapExpr, ok := expr["$map"].(bson.M)
	if !ok {
		t.Fatalf("expected a $map over addresses, got %v", expr)
	}
	cond, ok := mapExpr["in"].(bson.M)["$cond"].(bson.A)
	if !ok || len(cond) != 3 {
		t.Fatalf("each address must go through $cond, got %v", mapExpr["in"])
	}

	// id 일치 분기: 새 값으로 교체 (리터럴)
	replaced, ok := cond[1].(bson.M)["$literal"].(model.Address)
	if !ok || replaced.ID != addr.ID || !replaced.IsDefault {
		t.Errorf("matching address must be replaced by the new default, got %v", cond[1])
	}

	// 불일치 분기: 기본 플래그 해제
	merge, ok := cond[2].(bson.M)["$mergeObjects"].(bson.A)
	if !ok || len(merge) != 2 {
		t.Fatalf("non-matching addresses must merge isDefault=false, got %v", cond[2])
	}
	if cleared := merge[1].(bson.M); cleared["isDefault"] != false {
		t.Errorf("other addresses must lose the default flag, got %v", cleared)
	}
}
