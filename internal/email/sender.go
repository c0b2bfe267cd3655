// Package email 은 문의/주문 알림 메일 발송을 제공한다.
package email

import (
	"fmt"
	"log/slog"

	mail "github.com/go-mail/mail"

	"github.com/minsu/bakehouse/internal/model"
)

// Message 는 발송할 하나의 메일.
type Message struct {
	To      string
	Subject string
	Body    string
	HTML    bool
}

// Sender 는 메일 발송 인터페이스.
type Sender interface {
	Send(msg Message) error
}

// MetricsRecorder 는 발송 결과 메트릭의 인터페이스.
type MetricsRecorder interface {
	RecordEmailSent(outcome string)
}

// SMTPSender 는 SMTP를 통한 Sender 구현.
type SMTPSender struct {
	dialer  *mail.Dialer
	from    string
	metrics MetricsRecorder
}

// NewSMTPSender 는 SMTPSender를 생성한다.
func NewSMTPSender(host string, port int, username, password, from string, metrics MetricsRecorder) *SMTPSender {
	return &SMTPSender{
		dialer:  mail.NewDialer(host, port, username, password),
		from:    from,
		metrics: metrics,
	}
}

// Send 는 메일을 발송한다.
func (s *SMTPSender) Send(msg Message) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.HTML {
		m.SetBody("text/html", msg.Body)
	} else {
		m.SetBody("text/plain", msg.Body)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		s.metrics.RecordEmailSent("failed")
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.metrics.RecordEmailSent("ok")
	return nil
}

// compile-time interface check
var _ Sender = (*SMTPSender)(nil)

// MockSender 는 SMTP 자격 증명 없는 mock 모드용 Sender.
// 발송 없이 로그만 남긴다.
type MockSender struct {
	metrics MetricsRecorder
}

// NewMockSender 는 MockSender를 생성한다.
func NewMockSender(metrics MetricsRecorder) *MockSender {
	return &MockSender{metrics: metrics}
}

// Send 는 발송 내용을 로그로만 남긴다.
func (s *MockSender) Send(msg Message) error {
	slog.Info("mock email",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.Int("body_bytes", len(msg.Body)),
	)
	s.metrics.RecordEmailSent("mock")
	return nil
}

// compile-time interface check
var _ Sender = (*MockSender)(nil)

// ValidateMessage 는 발송 전 필수 필드를 검증한다.
func ValidateMessage(msg Message) error {
	if msg.To == "" {
		return model.NewValidationError("받는 사람 주소가 비어 있습니다")
	}
	if msg.Subject == "" {
		return model.NewValidationError("제목이 비어 있습니다")
	}
	return nil
}
