package payment

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"toko_back_end/internal/models"
)

// GenerateQRIS : GET /api/qris?amount=
func (h *Handler) GenerateQRIS(c *gin.Context) {
	amount, err := models.ParseRupiah(c.Query("amount"))
	if err != nil || amount <= 0 {
		fail(c, http.StatusBadRequest, "Jumlah tidak valid")
		return
	}

	code, err := h.qr.Generate(c.Request.Context(), amount)
	if err != nil {
		h.logger.Error("❌ Erreur génération QRIS", zap.Error(err))
		fail(c, http.StatusBadGateway, "Gagal membuat QRIS. Silakan coba lagi.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"reference": code.Reference,
		"payload":   code.Payload,
		"image":     code.Image,
		"amount":    amount,
	})
}
