package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/minsu/bakehouse/internal/model"
	"github.com/minsu/bakehouse/internal/repository"
)

// --- 목 정의 ---

type mockUserRepo struct {
	findByUIDFn func(ctx context.Context, uid string) (*model.User, error)
	listFn      func(ctx context.Context, limit int) ([]*model.User, error)
	setAdminFn  func(ctx context.Context, uid string, isAdmin bool) error
}

func (m *mockUserRepo) Upsert(ctx context.Context, input repository.UserUpsert) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) FindByUID(ctx context.Context, uid string) (*model.User, error) {
	if m.findByUIDFn != nil {
		return m.findByUIDFn(ctx, uid)
	}
	return nil, nil
}

func (m *mockUserRepo) List(ctx context.Context, limit int) ([]*model.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockUserRepo) SetAdmin(ctx context.Context, uid string, isAdmin bool) error {
	if m.setAdminFn != nil {
		return m.setAdminFn(ctx, uid, isAdmin)
	}
	return nil
}

func (m *mockUserRepo) DeleteByUID(ctx context.Context, uid string) error {
	return nil
}

type mockAdminLogRepo struct {
	insertFn     func(ctx context.Context, log *model.AdminLog) error
	listRecentFn func(ctx context.Context, limit int) ([]*model.AdminLog, error)
}

func (m *mockAdminLogRepo) Insert(ctx context.Context, log *model.AdminLog) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, log)
	}
	return nil
}

func (m *mockAdminLogRepo) ListRecent(ctx context.Context, limit int) ([]*model.AdminLog, error) {
	if m.listRecentFn != nil {
		return m.listRecentFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockAdminLogRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func setAdminRequestBody(t *testing.T, isAdmin bool) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(map[string]bool{"isAdmin": isAdmin})
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	return bytes.NewReader(raw)
}

// --- 테스트 ---

func TestAdminUserHandler_SetAdmin_WritesAuditLog(t *testing.T) {
	var audit *model.AdminLog
	setTarget := ""
	users := &mockUserRepo{
		findByUIDFn: func(ctx context.Context, uid string) (*model.User, error) {
			return &model.User{UID: uid}, nil
		},
		setAdminFn: func(ctx context.Context, uid string, isAdmin bool) error {
			setTarget = uid
			if !isAdmin {
				t.Error("isAdmin = false, want true")
			}
			return nil
		},
	}
	logs := &mockAdminLogRepo{
		insertFn: func(ctx context.Context, log *model.AdminLog) error {
			audit = log
			return nil
		},
	}
	h := NewAdminUserHandler(users, logs)

	req := httptest.NewRequest(http.MethodPut, "/api/admin/users/naver_9/admin", setAdminRequestBody(t, true))
	req = withChiURLParam(req, "uid", "naver_9")
	req = withAuthenticatedUser(req, &model.User{UID: "google-owner", IsAdmin: true})
	w := httptest.NewRecorder()

	h.SetAdmin(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusNoContent, w.Body.String())
	}
	if setTarget != "naver_9" {
		t.Errorf("SetAdmin target = %q, want naver_9", setTarget)
	}
	if audit == nil {
		t.Fatal("audit log must be written")
	}
	if audit.AdminUID != "google-owner" || audit.TargetID != "naver_9" || audit.Action != "set_admin" {
		t.Errorf("audit log = %+v", audit)
	}
}

func TestAdminUserHandler_SetAdmin_AuditFailureBlocksChange(t *testing.T) {
	users := &mockUserRepo{
		findByUIDFn: func(ctx context.Context, uid string) (*model.User, error) {
			return &model.User{UID: uid}, nil
		},
		setAdminFn: func(ctx context.Context, uid string, isAdmin bool) error {
			t.Error("SetAdmin must not run when audit logging fails")
			return nil
		},
	}
	logs := &mockAdminLogRepo{
		insertFn: func(ctx context.Context, log *model.AdminLog) error {
			return context.DeadlineExceeded
		},
	}
	h := NewAdminUserHandler(users, logs)

	req := httptest.NewRequest(http.MethodPut, "/api/admin/users/naver_9/admin", setAdminRequestBody(t, true))
	req = withChiURLParam(req, "uid", "naver_9")
	req = withAuthenticatedUser(req, &model.User{UID: "google-owner", IsAdmin: true})
	w := httptest.NewRecorder()

	h.SetAdmin(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestAdminUserHandler_SetAdmin_CannotDemoteSelf(t *testing.T) {
	h := NewAdminUserHandler(&mockUserRepo{
		setAdminFn: func(ctx context.Context, uid string, isAdmin bool) error {
			t.Error("self-demotion must be rejected before SetAdmin")
			return nil
		},
	}, &mockAdminLogRepo{})

	req := httptest.NewRequest(http.MethodPut, "/api/admin/users/google-owner/admin", setAdminRequestBody(t, false))
	req = withChiURLParam(req, "uid", "google-owner")
	req = withAuthenticatedUser(req, &model.User{UID: "google-owner", IsAdmin: true})
	w := httptest.NewRecorder()

	h.SetAdmin(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAdminUserHandler_SetAdmin_UnknownTarget(t *testing.T) {
	h := NewAdminUserHandler(&mockUserRepo{}, &mockAdminLogRepo{})

	req := httptest.NewRequest(http.MethodPut, "/api/admin/users/ghost/admin", setAdminRequestBody(t, true))
	req = withChiURLParam(req, "uid", "ghost")
	req = withAuthenticatedUser(req, &model.User{UID: "google-owner", IsAdmin: true})
	w := httptest.NewRecorder()

	h.SetAdmin(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestAdminUserHandler_List(t *testing.T) {
	users := &mockUserRepo{
		listFn: func(ctx context.Context, limit int) ([]*model.User, error) {
			return []*model.User{
				{UID: "google-1", Provider: model.ProviderGoogle},
				{UID: "naver_2", Provider: model.ProviderNaver},
			}, nil
		},
	}
	h := NewAdminUserHandler(users, &mockAdminLogRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var got []*model.User
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("users = %d, want 2", len(got))
	}
}
