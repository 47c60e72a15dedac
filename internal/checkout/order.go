package checkout

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"toko_back_end/internal/models"
)

// NewOrderNumber combine l'horodatage en millisecondes et 9 caractères
// aléatoires en base 36 : ORD-1718000000000-k3j9x0a2b.
func NewOrderNumber(now time.Time) string {
	id := uuid.New()
	n := binary.BigEndian.Uint64(id[:8])
	suffix := strconv.FormatUint(n, 36)
	if len(suffix) < 9 {
		suffix = strings.Repeat("0", 9-len(suffix)) + suffix
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix[len(suffix)-9:])
}

// NewOrderRequest construit la commande à envoyer à partir d'un instantané
// du panier et du paiement confirmé.
func NewOrderRequest(lines []models.CartLine, selection PaymentSelection, customer models.CustomerInfo, orderNumber string, now time.Time) models.Order {
	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.OrderItem{
			ID:       l.ProductID,
			Name:     l.Name,
			Price:    l.Price,
			Quantity: l.Quantity,
			Subtotal: l.Subtotal(),
		})
	}

	order := models.Order{
		OrderNumber:   orderNumber,
		Items:         items,
		TotalAmount:   lineSum(lines),
		PaymentStatus: models.OrderPending,
		OrderStatus:   models.OrderPending,
		OrderDate:     now.UTC(),
		CustomerInfo:  customer,
	}

	switch p := selection.(type) {
	case CashPayment:
		tendered, change := p.Tendered, p.Change
		order.PaymentMethod = models.PaymentCash
		order.PaymentDetails = models.PaymentDetails{
			CashAmount:   &tendered,
			ChangeAmount: &change,
		}
	case QRPayment:
		order.PaymentMethod = models.PaymentQRIS
		order.PaymentDetails = models.PaymentDetails{
			QRISReference: p.Code.Reference,
		}
	}

	return order
}
