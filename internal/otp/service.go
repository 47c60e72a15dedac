package otp

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type Service struct {
	store    Store
	sender   Sender
	ttl      time.Duration
	cooldown time.Duration
	logger   *zap.Logger
}

func NewService(store Store, sender Sender, ttl, cooldown time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{store: store, sender: sender, ttl: ttl, cooldown: cooldown, logger: logger}
}

func Message(code string) string {
	return "Kode OTP untuk login: " + code
}

// Send génère un nouveau code, le stocke puis l'envoie. Le numéro normalisé
// est renvoyé pour la vérification.
func (s *Service) Send(ctx context.Context, rawPhone string) (string, error) {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return "", err
	}

	ok, wait, err := s.store.Reserve(ctx, phone, s.cooldown)
	if err != nil {
		return "", fmt.Errorf("verrou OTP: %w", err)
	}
	if !ok {
		return "", &CooldownError{RetryAfter: wait}
	}

	code, err := GenerateCode()
	if err != nil {
		return "", err
	}
	if err := s.store.Save(ctx, phone, code, s.ttl); err != nil {
		_ = s.store.Release(ctx, phone)
		return "", fmt.Errorf("stockage OTP: %w", err)
	}

	if err := s.sender.Send(ctx, phone, Message(code)); err != nil {
		// rien n'a été reçu : un nouvel envoi doit rester possible
		_ = s.store.Delete(ctx, phone)
		_ = s.store.Release(ctx, phone)
		s.logger.Error("❌ Erreur envoi OTP", zap.String("phone", phone), zap.Error(err))
		return "", err
	}

	s.logger.Info("📨 OTP envoyé", zap.String("phone", phone))
	return phone, nil
}

// Verify consomme le code. ErrOtpExpired si absent, ErrOtpMismatch si faux.
func (s *Service) Verify(ctx context.Context, rawPhone, code string) (string, error) {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return "", err
	}
	if err := s.store.Consume(ctx, phone, code); err != nil {
		return "", err
	}
	s.logger.Info("✅ OTP vérifié", zap.String("phone", phone))
	return phone, nil
}
