// Package otp gère les codes de connexion à usage unique envoyés par WhatsApp.
package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const CodeLength = 6

var (
	ErrOtpExpired   = errors.New("OTP expiré ou inexistant")
	ErrOtpMismatch  = errors.New("OTP invalide")
	ErrInvalidPhone = errors.New("numéro de téléphone invalide")
)

// CooldownError est renvoyée quand un code a été envoyé trop récemment.
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("OTP déjà envoyé, réessayez dans %d secondes", int(e.RetryAfter.Seconds()))
}

// GenerateCode tire un code à 6 chiffres, zéros de tête compris.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}

// NormalizePhone ramène un numéro indonésien au format +62…
// ("0812…", "62812…" et "+62812…" donnent le même résultat).
func NormalizePhone(raw string) (string, error) {
	s := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "whatsapp:")
	switch {
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	case strings.HasPrefix(s, "0"):
		s = "62" + s[1:]
	}
	if len(s) < 8 || len(s) > 15 {
		return "", ErrInvalidPhone
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", ErrInvalidPhone
		}
	}
	return "+" + s, nil
}
