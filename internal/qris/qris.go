// Package qris génère des codes QRIS simulés : aucun prestataire n'est
// appelé, la référence et le payload sont produits localement.
package qris

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"toko_back_end/internal/checkout"
	"toko_back_end/internal/models"
)

var ErrInvalidAmount = errors.New("montant QRIS invalide")

type Generator struct {
	MerchantName string
	MerchantCity string
	// Delay simule la latence du prestataire.
	Delay  time.Duration
	Size   int
	Logger *zap.Logger
	Now    func() time.Time
}

var _ checkout.QRGenerator = (*Generator)(nil)

func New(merchantName, merchantCity string, delay time.Duration, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		MerchantName: merchantName,
		MerchantCity: merchantCity,
		Delay:        delay,
		Size:         256,
		Logger:       logger,
		Now:          time.Now,
	}
}

// Generate respecte l'annulation du contexte pendant le délai simulé.
func (g *Generator) Generate(ctx context.Context, amount models.Rupiah) (checkout.QRCode, error) {
	if amount <= 0 {
		return checkout.QRCode{}, ErrInvalidAmount
	}

	if g.Delay > 0 {
		t := time.NewTimer(g.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return checkout.QRCode{}, ctx.Err()
		case <-t.C:
		}
	}

	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	ref := fmt.Sprintf("QRIS-%d-%s", now().UnixMilli(), strings.ToUpper(uuid.NewString()[:8]))
	payload := buildPayload(g.MerchantName, g.MerchantCity, ref, int64(amount))

	size := g.Size
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		g.Logger.Error("❌ Erreur génération QR code", zap.Error(err))
		return checkout.QRCode{}, fmt.Errorf("encodage QR: %w", err)
	}

	g.Logger.Info("🔳 QRIS généré", zap.String("reference", ref), zap.Int64("amount", int64(amount)))
	return checkout.QRCode{
		Reference: ref,
		Payload:   payload,
		Image:     "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil
}
