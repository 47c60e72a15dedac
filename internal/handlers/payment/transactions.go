package payment

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"toko_back_end/internal/checkout"
	"toko_back_end/internal/middleware"
	"toko_back_end/internal/models"
	"toko_back_end/internal/store"
)

// OrderMailer prévient le client par e-mail.
type OrderMailer interface {
	OrderReceived(ctx context.Context, o models.Order) error
	OrderStatusChanged(ctx context.Context, o models.Order) error
}

type Handler struct {
	orders store.OrderStore
	mailer OrderMailer
	qr     checkout.QRGenerator
	logger *zap.Logger
	now    func() time.Time
	// async lance les envois d'e-mails ; remplacé par un appel direct en test.
	async func(func())
}

func New(orders store.OrderStore, mailer OrderMailer, qr checkout.QRGenerator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		orders: orders,
		mailer: mailer,
		qr:     qr,
		logger: logger,
		now:    time.Now,
		async:  func(f func()) { go f() },
	}
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg, "message": msg})
}

// validateOrder vérifie la cohérence des lignes, du total et du paiement.
// Le rendu manquant est calculé.
func validateOrder(o *models.Order) string {
	if len(o.Items) == 0 {
		return "Keranjang kosong"
	}
	for i := range o.Items {
		it := &o.Items[i]
		if it.ID == "" || it.Quantity <= 0 || it.Price < 0 {
			return "Item tidak valid"
		}
		sub := it.Price * models.Rupiah(it.Quantity)
		if it.Subtotal != 0 && it.Subtotal != sub {
			return "Subtotal tidak sesuai untuk " + it.Name
		}
		it.Subtotal = sub
	}
	if o.TotalAmount != o.ItemsTotal() {
		return "Total tidak sesuai"
	}

	switch o.PaymentMethod {
	case models.PaymentCash:
		cash := o.PaymentDetails.CashAmount
		if cash == nil || *cash < o.TotalAmount {
			return "Jumlah uang tidak mencukupi!"
		}
		change := *cash - o.TotalAmount
		if o.PaymentDetails.ChangeAmount != nil && *o.PaymentDetails.ChangeAmount != change {
			return "Kembalian tidak sesuai"
		}
		o.PaymentDetails.ChangeAmount = &change
		o.PaymentDetails.QRISReference = ""
	case models.PaymentQRIS:
		if strings.TrimSpace(o.PaymentDetails.QRISReference) == "" {
			return "Referensi QRIS wajib diisi"
		}
		o.PaymentDetails.CashAmount, o.PaymentDetails.ChangeAmount = nil, nil
	default:
		return "Metode pembayaran tidak valid"
	}
	return ""
}

// CreateTransaction : POST /api/transactions
func (h *Handler) CreateTransaction(c *gin.Context) {
	var o models.Order
	if err := c.ShouldBindJSON(&o); err != nil {
		fail(c, http.StatusBadRequest, "Data transaksi tidak valid")
		return
	}
	if msg := validateOrder(&o); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}

	now := h.now()
	if o.OrderNumber == "" {
		o.OrderNumber = checkout.NewOrderNumber(now)
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = now.UTC()
	}
	o.PaymentStatus = models.OrderPending
	o.OrderStatus = models.OrderPending
	if o.Kasir == "" {
		o.Kasir = c.GetString(middleware.CtxUsername)
	}
	if o.CustomerInfo.UserID == "" {
		o.CustomerInfo.UserID = c.GetString(middleware.CtxUserID)
	}

	if err := h.orders.CreateOrder(c.Request.Context(), o); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			fail(c, http.StatusConflict, "Nomor pesanan sudah ada")
			return
		}
		h.logger.Error("❌ Erreur enregistrement commande", zap.String("orderNumber", o.OrderNumber), zap.Error(err))
		fail(c, http.StatusInternalServerError, "Terjadi kesalahan saat memproses pesanan")
		return
	}

	h.logger.Info("🧾 Commande enregistrée",
		zap.String("orderNumber", o.OrderNumber),
		zap.String("method", o.PaymentMethod),
		zap.Int64("total", int64(o.TotalAmount)))

	if h.mailer != nil {
		order := o
		h.async(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := h.mailer.OrderReceived(ctx, order); err != nil {
				h.logger.Error("❌ Erreur envoi e-mail commande", zap.String("orderNumber", order.OrderNumber), zap.Error(err))
			}
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Pesanan berhasil dibuat!",
		"order":   o,
	})
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, errors.New("tanggal tidak valid: " + s)
}

// filter lit les paramètres du rapport. Un non-admin ne voit que ses
// propres commandes.
func (h *Handler) filter(c *gin.Context) (models.OrderFilter, error) {
	f := models.OrderFilter{
		Kasir:         c.Query("kasir"),
		PaymentMethod: c.Query("paymentMethod"),
	}
	var err error
	if f.StartDate, err = parseDate(c.Query("startDate")); err != nil {
		return f, err
	}
	if f.EndDate, err = parseDate(c.Query("endDate")); err != nil {
		return f, err
	}
	if f.StartDate == nil {
		f.StartDate = store.PeriodStart(c.Query("period"), h.now())
	}
	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(store.DefaultPageSize)))

	if c.GetString(middleware.CtxRole) != models.RoleAdmin {
		f.UserID = c.GetString(middleware.CtxUserID)
	}
	return f, nil
}

// ListTransactions : GET /api/transactions
func (h *Handler) ListTransactions(c *gin.Context) {
	f, err := h.filter(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	orders, p, err := h.orders.ListOrders(c.Request.Context(), f)
	if err != nil {
		h.logger.Error("❌ Erreur lecture commandes", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Gagal memuat transaksi")
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "transactions": orders, "pagination": p})
}

// TransactionStats : GET /api/transactions/stats (admin)
func (h *Handler) TransactionStats(c *gin.Context) {
	f, err := h.filter(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	st, err := h.orders.OrderStats(c.Request.Context(), f)
	if err != nil {
		h.logger.Error("❌ Erreur calcul statistiques", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Gagal memuat statistik")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": st})
}

// GetTransaction : GET /api/transactions/:orderNumber
func (h *Handler) GetTransaction(c *gin.Context) {
	o, err := h.orders.GetOrder(c.Request.Context(), c.Param("orderNumber"))
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, "Transaksi tidak ditemukan")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, "Gagal memuat transaksi")
		return
	}
	if c.GetString(middleware.CtxRole) != models.RoleAdmin && o.CustomerInfo.UserID != c.GetString(middleware.CtxUserID) {
		fail(c, http.StatusNotFound, "Transaksi tidak ditemukan")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": o})
}

// UpdateTransactionStatus : PATCH /api/transactions/:orderNumber/status (admin).
// Seule une commande en attente peut être confirmée ou rejetée.
func (h *Handler) UpdateTransactionStatus(c *gin.Context) {
	var in struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || (in.Status != models.OrderConfirmed && in.Status != models.OrderRejected) {
		fail(c, http.StatusBadRequest, "Status harus 'confirmed' atau 'rejected'")
		return
	}

	ctx := c.Request.Context()
	num := c.Param("orderNumber")
	current, err := h.orders.GetOrder(ctx, num)
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, "Transaksi tidak ditemukan")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, "Gagal memperbarui status")
		return
	}
	if current.OrderStatus != models.OrderPending {
		fail(c, http.StatusConflict, "Transaksi sudah "+current.OrderStatus)
		return
	}

	o, err := h.orders.UpdateOrderStatus(ctx, num, in.Status)
	if err != nil {
		h.logger.Error("❌ Erreur mise à jour statut", zap.String("orderNumber", num), zap.Error(err))
		fail(c, http.StatusInternalServerError, "Gagal memperbarui status")
		return
	}
	h.logger.Info("🔄 Statut commande mis à jour", zap.String("orderNumber", num), zap.String("status", in.Status))

	if h.mailer != nil {
		h.async(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := h.mailer.OrderStatusChanged(ctx, o); err != nil {
				h.logger.Error("❌ Erreur envoi e-mail statut", zap.String("orderNumber", o.OrderNumber), zap.Error(err))
			}
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": o})
}
