package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Recipient identifies who an OTP is delivered to. Channels pick the
// field they need.
type Recipient struct {
	Name  string
	Phone string
	Email string
}

// OTPSender delivers a one-time password over some channel.
type OTPSender interface {
	SendOTP(ctx context.Context, to Recipient, code string) error
}

// NotificationService fans OTP delivery out to a goroutine so it never
// blocks the API response. Delivery failures are only logged.
type NotificationService struct {
	sender  OTPSender
	timeout time.Duration
	log     *zap.Logger
}

func NewNotificationService(sender OTPSender, log *zap.Logger) *NotificationService {
	return &NotificationService{sender: sender, timeout: 15 * time.Second, log: log}
}

func (s *NotificationService) SendOTP(to Recipient, code string) {
	if to.Phone == "" && to.Email == "" {
		s.log.Warn("OTP not sent: recipient has no contact")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.sender.SendOTP(ctx, to, code); err != nil {
			s.log.Warn("OTP delivery failed", zap.String("phone", to.Phone), zap.Error(err))
			return
		}
		s.log.Debug("OTP delivered", zap.String("phone", to.Phone))
	}()
}

// ConsoleSender writes the OTP to the log. Meant for development.
type ConsoleSender struct {
	log *zap.Logger
}

func NewConsoleSender(log *zap.Logger) *ConsoleSender {
	return &ConsoleSender{log: log}
}

func (s *ConsoleSender) SendOTP(_ context.Context, to Recipient, code string) error {
	s.log.Info("generated OTP", zap.String("phone", to.Phone), zap.String("otp", code))
	return nil
}

// WhatsAppSender posts the OTP to a WhatsApp template gateway.
type WhatsAppSender struct {
	endpoint string
	token    string
	client   *http.Client
}

func NewWhatsAppSender(endpoint, token string) *WhatsAppSender {
	return &WhatsAppSender{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type waParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type waComponent struct {
	Type       string        `json:"type"`
	SubType    string        `json:"sub_type,omitempty"`
	Index      string        `json:"index,omitempty"`
	Parameters []waParameter `json:"parameters"`
}

type waPayload struct {
	Token            string        `json:"token"`
	Phone            string        `json:"phone"`
	TemplateName     string        `json:"template_name"`
	TemplateLanguage string        `json:"template_language"`
	Components       []waComponent `json:"components"`
}

func (s *WhatsAppSender) SendOTP(ctx context.Context, to Recipient, code string) error {
	if to.Phone == "" {
		return fmt.Errorf("whatsapp: recipient has no phone")
	}
	param := []waParameter{{Type: "text", Text: code}}
	body, err := json.Marshal(waPayload{
		Token:            s.token,
		Phone:            "91" + strings.TrimPrefix(to.Phone, "+91"),
		TemplateName:     "otp_verification",
		TemplateLanguage: "en",
		Components: []waComponent{
			{Type: "BODY", Parameters: param},
			{Type: "BUTTON", SubType: "url", Index: "0", Parameters: param},
		},
	})
	if err != nil {
		return fmt.Errorf("whatsapp: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("whatsapp: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("whatsapp: gateway returned %s", resp.Status)
	}
	return nil
}

// EmailSender mails the OTP through an SMTP relay.
type EmailSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailSender(host string, port int, user, pass, from string) *EmailSender {
	if from == "" {
		from = user
	}
	return &EmailSender{dialer: gomail.NewDialer(host, port, user, pass), from: from}
}

func (s *EmailSender) SendOTP(_ context.Context, to Recipient, code string) error {
	if to.Email == "" {
		return fmt.Errorf("email: recipient has no address")
	}
	m := s.message(to, code)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("email: send: %w", err)
	}
	return nil
}

func (s *EmailSender) message(to Recipient, code string) *gomail.Message {
	name := to.Name
	if name == "" {
		name = "there"
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to.Email)
	m.SetHeader("Subject", "Your verification code")
	m.SetBody("text/html", fmt.Sprintf(`<p>Hi %s,</p>
<p>Your verification code is <strong>%s</strong>. It expires in a few minutes.</p>
<p>If you did not request it, ignore this email.</p>`, name, code))
	return m
}
