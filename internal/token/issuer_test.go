package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/minsu/bakehouse/internal/config"
	"github.com/minsu/bakehouse/internal/model"
)

func TestNewIssuer_LiveModeRequiresKey(t *testing.T) {
	if _, err := NewIssuer(nil, time.Minute, config.ModeLive); err == nil {
		t.Fatal("NewIssuer should fail in live mode without a signing key")
	}
}

func TestMintAndVerify_RoundTrip(t *testing.T) {
	iss, err := NewIssuer([]byte("secret"), 5*time.Minute, config.ModeLive)
	if err != nil {
		t.Fatalf("NewIssuer returned error: %v", err)
	}

	minted, err := iss.Mint("naver_123", model.ProviderNaver, "a@b.com", "김철수", "https://img.example.com/p.png")
	if err != nil {
		t.Fatalf("Mint returned error: %v", err)
	}
	if minted.Mock {
		t.Error("token should not be mock when a key is configured")
	}
	if strings.HasPrefix(minted.Value, "dev-token-") {
		t.Error("signed token must not carry the dev-token prefix")
	}

	id, err := iss.Verify(minted.Value)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if id.UID != "naver_123" {
		t.Errorf("UID = %q, want naver_123", id.UID)
	}
	if id.Provider != model.ProviderNaver {
		t.Errorf("Provider = %q, want naver", id.Provider)
	}
	if id.Name != "김철수" {
		t.Errorf("Name = %q, want 김철수", id.Name)
	}
}

func TestVerify_RejectsTamperedToken(t *testing.T) {
	iss, _ := NewIssuer([]byte("secret"), 5*time.Minute, config.ModeLive)
	other, _ := NewIssuer([]byte("another-secret"), 5*time.Minute, config.ModeLive)

	minted, err := other.Mint("naver_123", model.ProviderNaver, "", "", "")
	if err != nil {
		t.Fatalf("Mint returned error: %v", err)
	}

	if _, err := iss.Verify(minted.Value); !errors.Is(err, ErrInvalid) {
		t.Errorf("Verify error = %v, want ErrInvalid", err)
	}
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	iss, _ := NewIssuer([]byte("secret"), -time.Minute, config.ModeLive)
	// NewIssuer는 0 이하 TTL을 기본값으로 바꾸므로 직접 만든 짧은 TTL로 검증한다.
	iss.ttl = -time.Minute

	minted, err := iss.Mint("kakao_9", model.ProviderKakao, "", "", "")
	if err != nil {
		t.Fatalf("Mint returned error: %v", err)
	}
	if _, err := iss.Verify(minted.Value); !errors.Is(err, ErrInvalid) {
		t.Errorf("Verify error = %v, want ErrInvalid for expired token", err)
	}
}

func TestMint_MockModeWithoutKey(t *testing.T) {
	iss, err := NewIssuer(nil, time.Minute, config.ModeMock)
	if err != nil {
		t.Fatalf("NewIssuer returned error: %v", err)
	}

	minted, err := iss.Mint("naver_123", model.ProviderNaver, "a@b.com", "김철수", "")
	if err != nil {
		t.Fatalf("Mint returned error: %v", err)
	}
	if !minted.Mock {
		t.Error("Mock flag must be set for dev tokens")
	}
	if minted.Value != "dev-token-naver_123" {
		t.Errorf("Value = %q, want dev-token-naver_123", minted.Value)
	}

	id, err := iss.Verify(minted.Value)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if id.UID != "naver_123" || id.Provider != model.ProviderNaver {
		t.Errorf("identity = %+v, want uid naver_123 / provider naver", id)
	}
}

func TestVerify_LiveModeRejectsDevToken(t *testing.T) {
	iss, _ := NewIssuer([]byte("secret"), time.Minute, config.ModeLive)

	if _, err := iss.Verify("dev-token-naver_123"); !errors.Is(err, ErrMockRejected) {
		t.Errorf("Verify error = %v, want ErrMockRejected", err)
	}
}
