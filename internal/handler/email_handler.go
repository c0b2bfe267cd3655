package handler

import (
	"net/http"

	"github.com/minsu/bakehouse/internal/email"
	"github.com/minsu/bakehouse/internal/middleware"
	"github.com/minsu/bakehouse/internal/model"
)

// EmailHandler 는 메일 발송의 HTTP 핸들러. 로그인 필수이며
// 전용 속도 제한 버킷이 앞단에 붙는다.
type EmailHandler struct {
	sender email.Sender
}

// NewEmailHandler 는 EmailHandler를 생성한다.
// sender가 nil이면 발송 요청은 503으로 거부된다.
func NewEmailHandler(sender email.Sender) *EmailHandler {
	return &EmailHandler{sender: sender}
}

// sendEmailRequest 는 메일 발송 요청의 본문.
type sendEmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	HTML    bool   `json:"html"`
}

// Send 는 메일 한 통을 발송한다.
// POST /api/send-email
func (h *EmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	if h.sender == nil {
		middleware.WriteErrorResponse(w, http.StatusServiceUnavailable, model.NewMailNotConfiguredError())
		return
	}

	var req sendEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg := email.Message{
		To:      req.To,
		Subject: req.Subject,
		Body:    req.Body,
		HTML:    req.HTML,
	}
	if err := email.ValidateMessage(msg); err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.sender.Send(msg); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}
