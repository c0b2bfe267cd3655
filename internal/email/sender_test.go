package email

import (
	"errors"
	"testing"

	"github.com/minsu/bakehouse/internal/model"
)

type mockEmailMetrics struct {
	outcomes map[string]int
}

func (m *mockEmailMetrics) RecordEmailSent(outcome string) {
	if m.outcomes == nil {
		m.outcomes = make(map[string]int)
	}
	m.outcomes[outcome]++
}

func TestValidateMessage(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{"valid", Message{To: "minsu@example.com", Subject: "주문 확인", Body: "감사합니다"}, false},
		{"missing to", Message{Subject: "주문 확인"}, true},
		{"missing subject", Message{To: "minsu@example.com"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMessage(tt.msg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var apiErr *model.APIError
				if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
					t.Errorf("expected VALIDATION_FAILED, got %v", err)
				}
			}
		})
	}
}

func TestMockSenderLogsWithoutSending(t *testing.T) {
	metrics := &mockEmailMetrics{}
	s := NewMockSender(metrics)

	err := s.Send(Message{To: "minsu@example.com", Subject: "문의 접수", Body: "내용"})
	if err != nil {
		t.Fatalf("MockSender.Send failed: %v", err)
	}
	if metrics.outcomes["mock"] != 1 {
		t.Errorf("expected mock outcome recorded, got %v", metrics.outcomes)
	}
}
