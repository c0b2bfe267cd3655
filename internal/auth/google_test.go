package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// newGoogleTestServers 는 토큰 교환과 userinfo 응답을 흉내 내는 서버를 띄운다.
func newGoogleTestServers(t *testing.T, userInfoStatus int, userInfoBody string) *GoogleProvider {
	t.Helper()

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"at-123","token_type":"Bearer","expires_in":3600}`)
	}))
	t.Cleanup(tokenSrv.Close)

	userInfoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(userInfoStatus)
		fmt.Fprint(w, userInfoBody)
	}))
	t.Cleanup(userInfoSrv.Close)

	return NewGoogleProvider(GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/auth/google/callback",
		Timeout:      5 * time.Second,
		TokenURL:     tokenSrv.URL,
		UserInfoURL:  userInfoSrv.URL,
	})
}

func TestGoogleExchangeNormalizesIdentity(t *testing.T) {
	p := newGoogleTestServers(t, http.StatusOK,
		`{"sub":"google-sub-1","email":"owner@bakehouse.kr","email_verified":true,"name":"민수","picture":"https://img.example/p.jpg"}`)

	identity, err := p.Exchange(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}

	if identity.ProviderUserID != "google-sub-1" {
		t.Errorf("ProviderUserID = %s, want google-sub-1", identity.ProviderUserID)
	}
	if identity.Email != "owner@bakehouse.kr" {
		t.Errorf("Email = %s", identity.Email)
	}
	if identity.UID() != "google-sub-1" {
		t.Errorf("UID = %s, native provider must use the subject as-is", identity.UID())
	}
}

func TestGoogleExchangeRejectsUnverifiedEmail(t *testing.T) {
	p := newGoogleTestServers(t, http.StatusOK,
		`{"sub":"google-sub-2","email":"spoofed@bakehouse.kr","email_verified":false,"name":"공격자"}`)

	_, err := p.Exchange(context.Background(), "auth-code")
	if !errors.Is(err, ErrUnverifiedEmail) {
		t.Fatalf("err = %v, want ErrUnverifiedEmail", err)
	}
}

func TestGoogleExchangeRejectsEmptySubject(t *testing.T) {
	p := newGoogleTestServers(t, http.StatusOK,
		`{"sub":"","email":"x@example.com","email_verified":true}`)

	_, err := p.Exchange(context.Background(), "auth-code")
	if !errors.Is(err, ErrEmptySubject) {
		t.Fatalf("err = %v, want ErrEmptySubject", err)
	}
}

func TestGoogleExchangeUserInfoFailure(t *testing.T) {
	p := newGoogleTestServers(t, http.StatusInternalServerError, `{"error":"boom"}`)

	_, err := p.Exchange(context.Background(), "auth-code")
	if !errors.Is(err, ErrUserInfo) {
		t.Fatalf("err = %v, want ErrUserInfo", err)
	}
}
