package otp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Sender livre un message texte à un numéro.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// WhatsAppSender passe par l'API Messages de Twilio (canal whatsapp:).
type WhatsAppSender struct {
	AccountSID string
	AuthToken  string
	From       string
	BaseURL    string
	HTTP       *http.Client
}

func NewWhatsAppSender(accountSID, authToken, from string) *WhatsAppSender {
	return &WhatsAppSender{
		AccountSID: accountSID,
		AuthToken:  authToken,
		From:       from,
		BaseURL:    "https://api.twilio.com",
		HTTP:       &http.Client{Timeout: 10 * time.Second},
	}
}

func whatsapp(phone string) string {
	if strings.HasPrefix(phone, "whatsapp:") {
		return phone
	}
	return "whatsapp:" + phone
}

func (s *WhatsAppSender) Send(ctx context.Context, phone, message string) error {
	form := url.Values{}
	form.Set("From", whatsapp(s.From))
	form.Set("To", whatsapp(phone))
	form.Set("Body", message)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", strings.TrimRight(s.BaseURL, "/"), s.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(s.AccountSID, s.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("envoi WhatsApp: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var body struct {
			Message string `json:"message"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(data, &body)
		return fmt.Errorf("envoi WhatsApp refusé (%d): %s", resp.StatusCode, body.Message)
	}
	return nil
}

// LogSender écrit le message dans les logs au lieu de l'envoyer. Utilisé
// quand Twilio n'est pas configuré.
type LogSender struct {
	Logger *zap.Logger
}

func (s LogSender) Send(_ context.Context, phone, message string) error {
	s.Logger.Warn("📱 WhatsApp non configuré, message non envoyé",
		zap.String("phone", phone), zap.String("message", message))
	return nil
}
