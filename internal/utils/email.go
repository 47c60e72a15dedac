package utils

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"toko_back_end/internal/models"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer envoie les e-mails de commande aux clients.
type Mailer struct {
	cfg    SMTPConfig
	logger *zap.Logger
	send   func(ctx context.Context, msg *mail.Msg) error
}

func NewMailer(cfg SMTPConfig, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Mailer{cfg: cfg, logger: logger}
	m.send = m.dialAndSend
	return m
}

// Enabled vaut faux sans hôte SMTP ; les envois sont alors ignorés.
func (m *Mailer) Enabled() bool {
	return m != nil && m.cfg.Host != ""
}

func (m *Mailer) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}

func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if !m.Enabled() {
		m.logger.Debug("📭 SMTP non configuré, e-mail ignoré", zap.String("to", to))
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	m.logger.Info("📤 Envoi de l'e-mail", zap.String("to", to), zap.String("subject", subject))
	return m.send(ctx, msg)
}

// OrderReceived confirme la réception d'une commande en attente.
func (m *Mailer) OrderReceived(ctx context.Context, o models.Order) error {
	if o.CustomerInfo.Email == "" {
		return nil
	}
	body, err := OrderEmailHTML(o)
	if err != nil {
		return err
	}
	return m.Send(ctx, o.CustomerInfo.Email, "Pesanan "+o.OrderNumber+" diterima", body)
}

// OrderStatusChanged prévient le client d'une confirmation ou d'un refus.
func (m *Mailer) OrderStatusChanged(ctx context.Context, o models.Order) error {
	if o.CustomerInfo.Email == "" {
		return nil
	}
	body, err := OrderEmailHTML(o)
	if err != nil {
		return err
	}
	return m.Send(ctx, o.CustomerInfo.Email, StatusSubject(o.OrderStatus, o.OrderNumber), body)
}

func StatusSubject(status, orderNumber string) string {
	switch status {
	case models.OrderConfirmed:
		return "✅ Pembayaran dikonfirmasi - " + orderNumber
	case models.OrderRejected:
		return "❌ Pesanan ditolak - " + orderNumber
	default:
		return "📋 Status pesanan diperbarui - " + orderNumber
	}
}

var statusLabels = map[string]string{
	models.OrderPending:   "Menunggu konfirmasi",
	models.OrderConfirmed: "Dikonfirmasi",
	models.OrderRejected:  "Ditolak",
}

var methodLabels = map[string]string{
	models.PaymentCash: "Tunai",
	models.PaymentQRIS: "QRIS",
}

var orderTmpl = template.Must(template.New("order").Parse(`<!DOCTYPE html>
<html lang="id">
<head><meta charset="UTF-8"><title>Pesanan {{.Order.OrderNumber}}</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Pesanan {{.Order.OrderNumber}}</h2>
		<p>Halo {{if .Order.CustomerInfo.Name}}{{.Order.CustomerInfo.Name}}{{else}}Pelanggan{{end}},</p>
		<p>Status: <strong>{{.Status}}</strong> &middot; Pembayaran: {{.Method}}</p>
		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left;">Produk</th>
					<th style="padding: 10px; text-align: left;">Jumlah</th>
					<th style="padding: 10px; text-align: left;">Harga</th>
					<th style="padding: 10px; text-align: left;">Subtotal</th>
				</tr>
			</thead>
			<tbody>
			{{range .Order.Items}}
				<tr>
					<td style="padding: 10px;">{{.Name}}</td>
					<td style="padding: 10px;">{{.Quantity}}</td>
					<td style="padding: 10px;">{{.Price}}</td>
					<td style="padding: 10px;">{{.Subtotal}}</td>
				</tr>
			{{end}}
			</tbody>
			<tfoot>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 10px; font-weight: bold;">{{.Order.TotalAmount}}</td>
				</tr>
			</tfoot>
		</table>
		<p style="margin-top: 30px; color: #555;">Terima kasih telah berbelanja.</p>
	</div>
</body>
</html>`))

func OrderEmailHTML(o models.Order) (string, error) {
	method := methodLabels[o.PaymentMethod]
	if method == "" {
		method = o.PaymentMethod
	}
	status := statusLabels[o.OrderStatus]
	if status == "" {
		status = o.OrderStatus
	}

	var buf bytes.Buffer
	err := orderTmpl.Execute(&buf, struct {
		Order  models.Order
		Status string
		Method string
	}{o, status, method})
	if err != nil {
		return "", fmt.Errorf("template e-mail: %w", err)
	}
	return buf.String(), nil
}
