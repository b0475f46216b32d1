package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/RealCodeCrafter/trt-backend/internal/config"
	"github.com/RealCodeCrafter/trt-backend/internal/domain"
	"github.com/RealCodeCrafter/trt-backend/internal/mail"
	apperrors "github.com/RealCodeCrafter/trt-backend/pkg/util/errorutil"
)

var contactHTML = template.Must(template.New("contact").Parse(`<!DOCTYPE html>
<html><head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
<h2>TRT-Parts: new message</h2>
<p><b>Name:</b> {{.Name}}</p>
<p><b>Phone:</b> {{.Phone}}</p>
<p><b>Comment:</b><br>{{range $i, $l := .Lines}}{{if $i}}<br>{{end}}{{$l}}{{end}}</p>
<p style="font-size: 12px; color: #666;">Sent from the TRT-Parts website. &copy; {{.Year}} TRT-Parts</p>
</body></html>`))

// ContactInfo is the public contact block.
type ContactInfo struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// ContactService relays website contact messages by email.
type ContactService struct {
	sender mail.Sender
	info   config.ContactConfig
	now    func() time.Time
}

// NewContactService builds the service.
func NewContactService(sender mail.Sender, info config.ContactConfig) *ContactService {
	return &ContactService{sender: sender, info: info, now: time.Now}
}

// Send validates and forwards a message. Transport failures surface as a generic 500.
func (s *ContactService) Send(ctx context.Context, msg domain.ContactMessage) error {
	details := map[string]any{}
	if strings.TrimSpace(msg.Name) == "" {
		details["name"] = "required"
	}
	if strings.TrimSpace(msg.Phone) == "" {
		details["phone"] = "required"
	}
	if strings.TrimSpace(msg.Comment) == "" {
		details["comment"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid contact message", details)
	}

	var html bytes.Buffer
	err := contactHTML.Execute(&html, map[string]any{
		"Name":  msg.Name,
		"Phone": msg.Phone,
		"Lines": strings.Split(msg.Comment, "\n"),
		"Year":  s.now().Year(),
	})
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	text := fmt.Sprintf("TRT-Parts: new message\n\nName: %s\nPhone: %s\nComment: %s\n\n---\nSent from the TRT-Parts website\n",
		msg.Name, msg.Phone, msg.Comment)

	if err := s.sender.Send(ctx, mail.Message{
		Subject: "TRT-Parts - new message: " + msg.Name,
		Text:    text,
		HTML:    html.String(),
	}); err != nil {
		return apperrors.NewInternalMessage("failed to send message", err)
	}
	return nil
}

// Info returns the configured contact details.
func (s *ContactService) Info() ContactInfo {
	return ContactInfo{Phone: s.info.Phone, Email: s.info.Email, Address: s.info.Address}
}
