package checkout

import (
	"context"

	"toko_back_end/internal/models"
)

// PaymentSelection est soit CashPayment soit QRPayment.
type PaymentSelection interface {
	Method() string
}

type CashPayment struct {
	Tendered models.Rupiah
	Change   models.Rupiah
	// Entered est faux tant qu'aucun montant n'a été saisi (change indéfini).
	Entered bool
}

func (CashPayment) Method() string { return models.PaymentCash }

type QRPayment struct {
	Code QRCode
}

func (QRPayment) Method() string { return models.PaymentQRIS }

// Ready vaut vrai une fois la référence générée.
func (q QRPayment) Ready() bool {
	return q.Code.Reference != ""
}

// QRCode est le résultat (simulé) de la génération QRIS.
type QRCode struct {
	Reference string `json:"reference"`
	Payload   string `json:"payload"`
	Image     string `json:"image,omitempty"`
}

type QRGenerator interface {
	Generate(ctx context.Context, amount models.Rupiah) (QRCode, error)
}

type QRGeneratorFunc func(ctx context.Context, amount models.Rupiah) (QRCode, error)

func (f QRGeneratorFunc) Generate(ctx context.Context, amount models.Rupiah) (QRCode, error) {
	return f(ctx, amount)
}

// OrderSubmitter envoie la commande au gestionnaire de commandes distant.
// Les implémentations renvoient *SubmissionError pour un refus et
// ErrNetwork quand le service est injoignable. Pas de retry automatique.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, order models.Order) (models.Order, error)
}

type OrderSubmitterFunc func(ctx context.Context, order models.Order) (models.Order, error)

func (f OrderSubmitterFunc) SubmitOrder(ctx context.Context, order models.Order) (models.Order, error) {
	return f(ctx, order)
}
