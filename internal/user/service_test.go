package user

import (
	"context"
	"errors"
	"testing"

	"github.com/minsu/bakehouse/internal/model"
	"github.com/minsu/bakehouse/internal/repository"
)

type mockUserRepo struct {
	findByUIDFunc   func(ctx context.Context, uid string) (*model.User, error)
	deleteByUIDFunc func(ctx context.Context, uid string) error
}

func (m *mockUserRepo) Upsert(ctx context.Context, input repository.UserUpsert) (*model.User, error) {
	return nil, errors.New("not implemented")
}

func (m *mockUserRepo) FindByUID(ctx context.Context, uid string) (*model.User, error) {
	return m.findByUIDFunc(ctx, uid)
}

func (m *mockUserRepo) List(ctx context.Context, limit int) ([]*model.User, error) {
	return nil, errors.New("not implemented")
}

func (m *mockUserRepo) SetAdmin(ctx context.Context, uid string, isAdmin bool) error {
	return errors.New("not implemented")
}

func (m *mockUserRepo) DeleteByUID(ctx context.Context, uid string) error {
	return m.deleteByUIDFunc(ctx, uid)
}

type mockProfileRepo struct {
	deleteByUIDFunc func(ctx context.Context, uid string) error
}

func (m *mockProfileRepo) EnsureProfile(ctx context.Context, uid, name, email string) (*model.UserProfile, error) {
	return nil, errors.New("not implemented")
}

func (m *mockProfileRepo) UpdateSettings(ctx context.Context, uid string, settings model.ProfileSettings) error {
	return errors.New("not implemented")
}

func (m *mockProfileRepo) UpdateContact(ctx context.Context, uid, name, phone string) error {
	return errors.New("not implemented")
}

func (m *mockProfileRepo) AddAddress(ctx context.Context, uid string, addr model.Address) error {
	return errors.New("not implemented")
}

func (m *mockProfileRepo) UpdateAddress(ctx context.Context, uid string, addr model.Address) error {
	return errors.New("not implemented")
}

func (m *mockProfileRepo) RemoveAddress(ctx context.Context, uid, addressID string) error {
	return errors.New("not implemented")
}

func (m *mockProfileRepo) DeleteByUID(ctx context.Context, uid string) error {
	return m.deleteByUIDFunc(ctx, uid)
}

type mockSessionRepo struct {
	deleteByUIDFunc func(ctx context.Context, uid string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	return errors.New("not implemented")
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return nil, errors.New("not implemented")
}

func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	return errors.New("not implemented")
}

func (m *mockSessionRepo) DeleteByUID(ctx context.Context, uid string) error {
	return m.deleteByUIDFunc(ctx, uid)
}

func TestWithdrawDeletesProfileSessionsAndUser(t *testing.T) {
	var order []string

	users := &mockUserRepo{
		findByUIDFunc: func(ctx context.Context, uid string) (*model.User, error) {
			return &model.User{UID: uid, Provider: model.ProviderGoogle}, nil
		},
		deleteByUIDFunc: func(ctx context.Context, uid string) error {
			order = append(order, "user")
			return nil
		},
	}
	profiles := &mockProfileRepo{
		deleteByUIDFunc: func(ctx context.Context, uid string) error {
			order = append(order, "profile")
			return nil
		},
	}
	sessions := &mockSessionRepo{
		deleteByUIDFunc: func(ctx context.Context, uid string) error {
			order = append(order, "session")
			return nil
		},
	}

	svc := NewService(users, profiles, sessions)
	if err := svc.Withdraw(context.Background(), "user1"); err != nil {
		t.Fatalf("Withdraw() error = %v", err)
	}

	want := []string{"profile", "session", "user"}
	if len(order) != len(want) {
		t.Fatalf("deletion order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("deletion order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestWithdrawUnknownUser(t *testing.T) {
	users := &mockUserRepo{
		findByUIDFunc: func(ctx context.Context, uid string) (*model.User, error) {
			return nil, nil
		},
		deleteByUIDFunc: func(ctx context.Context, uid string) error {
			t.Error("DeleteByUID should not be called for unknown user")
			return nil
		},
	}
	profiles := &mockProfileRepo{
		deleteByUIDFunc: func(ctx context.Context, uid string) error {
			t.Error("profile DeleteByUID should not be called for unknown user")
			return nil
		},
	}
	sessions := &mockSessionRepo{
		deleteByUIDFunc: func(ctx context.Context, uid string) error {
			t.Error("session DeleteByUID should not be called for unknown user")
			return nil
		},
	}

	svc := NewService(users, profiles, sessions)
	err := svc.Withdraw(context.Background(), "ghost")
	if err == nil {
		t.Fatal("Withdraw() expected error for unknown user")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Withdraw() error = %v, want *model.APIError", err)
	}
	if apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("error code = %s, want %s", apiErr.Code, model.ErrCodeUserNotFound)
	}
}

func TestWithdrawStopsOnProfileDeleteFailure(t *testing.T) {
	users := &mockUserRepo{
		findByUIDFunc: func(ctx context.Context, uid string) (*model.User, error) {
			return &model.User{UID: uid}, nil
		},
		deleteByUIDFunc: func(ctx context.Context, uid string) error {
			t.Error("user must not be deleted when profile deletion fails")
			return nil
		},
	}
	profiles := &mockProfileRepo{
		deleteByUIDFunc: func(ctx context.Context, uid string) error {
			return errors.New("db down")
		},
	}
	sessions := &mockSessionRepo{
		deleteByUIDFunc: func(ctx context.Context, uid string) error {
			t.Error("sessions must not be deleted when profile deletion fails")
			return nil
		},
	}

	svc := NewService(users, profiles, sessions)
	if err := svc.Withdraw(context.Background(), "user1"); err == nil {
		t.Fatal("Withdraw() expected error when profile deletion fails")
	}
}
