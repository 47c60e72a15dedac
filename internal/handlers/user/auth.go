package user

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"toko_back_end/internal/middleware"
	"toko_back_end/internal/models"
	"toko_back_end/internal/otp"
	"toko_back_end/internal/store"
	"toko_back_end/internal/utils"
)

// OTPService envoie et vérifie les codes WhatsApp. Les deux méthodes
// renvoient le numéro normalisé.
type OTPService interface {
	Send(ctx context.Context, phone string) (string, error)
	Verify(ctx context.Context, phone, code string) (string, error)
}

type Handler struct {
	users     store.UserStore
	otp       OTPService
	jwtSecret string
	ttl       time.Duration
	logger    *zap.Logger
}

func New(users store.UserStore, otpService OTPService, jwtSecret string, ttl time.Duration, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{users: users, otp: otpService, jwtSecret: jwtSecret, ttl: ttl, logger: logger}
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "message": msg})
}

func (h *Handler) session(c *gin.Context, status int, msg string, u models.User) {
	token, err := utils.GenerateJWT(u, h.jwtSecret, h.ttl)
	if err != nil {
		h.logger.Error("❌ Erreur génération JWT", zap.String("user_id", u.ID), zap.Error(err))
		fail(c, http.StatusInternalServerError, "Terjadi kesalahan pada server")
		return
	}
	c.JSON(status, gin.H{
		"success": true,
		"message": msg,
		"token":   token,
		"user":    u,
	})
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Address  string `json:"address"`
}

// Register : POST /api/auth/register. Le rôle est toujours "user".
func (h *Handler) Register(c *gin.Context) {
	var in registerRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Data pendaftaran tidak valid")
		return
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Username == "" || in.Password == "" {
		fail(c, http.StatusBadRequest, "Username dan password wajib diisi")
		return
	}
	if len(in.Password) < utils.MinPasswordLength {
		fail(c, http.StatusBadRequest, "Password minimal "+strconv.Itoa(utils.MinPasswordLength)+" karakter")
		return
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		fail(c, http.StatusBadRequest, "Email tidak valid")
		return
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		h.logger.Error("❌ Erreur hash mot de passe", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Terjadi kesalahan pada server")
		return
	}

	u := models.User{
		ID:       uuid.NewString(),
		Username: in.Username,
		FullName: strings.TrimSpace(in.FullName),
		Email:    in.Email,
		Address:  strings.TrimSpace(in.Address),
		Password: hash,
		Role:     models.RoleUser,
	}
	if err := h.users.CreateUser(c.Request.Context(), u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			fail(c, http.StatusConflict, "Username sudah digunakan")
			return
		}
		h.logger.Error("❌ Erreur création utilisateur", zap.String("username", u.Username), zap.Error(err))
		fail(c, http.StatusInternalServerError, "Terjadi kesalahan pada server")
		return
	}

	h.logger.Info("✅ Utilisateur inscrit", zap.String("user_id", u.ID), zap.String("username", u.Username))
	h.session(c, http.StatusCreated, "Registrasi berhasil", u)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login : POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var in loginRequest
	if err := c.ShouldBindJSON(&in); err != nil || in.Username == "" || in.Password == "" {
		fail(c, http.StatusBadRequest, "Username dan password wajib diisi")
		return
	}

	u, err := h.users.UserByUsername(c.Request.Context(), strings.TrimSpace(in.Username))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.logger.Error("❌ Erreur lecture utilisateur", zap.String("username", in.Username), zap.Error(err))
		fail(c, http.StatusInternalServerError, "Terjadi kesalahan pada server")
		return
	}
	if err != nil || u.Password == "" || !utils.CheckPassword(u.Password, in.Password) {
		fail(c, http.StatusUnauthorized, "Username atau password salah")
		return
	}

	h.logger.Info("✅ Connexion réussie", zap.String("user_id", u.ID))
	h.session(c, http.StatusOK, "Login berhasil", u)
}

// Me : GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	u, err := h.users.UserByUsername(c.Request.Context(), c.GetString(middleware.CtxUsername))
	if err != nil || u.ID != c.GetString(middleware.CtxUserID) {
		fail(c, http.StatusNotFound, "Pengguna tidak ditemukan")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": u})
}

type otpRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Action      string `json:"action"`
	OTP         string `json:"otp"`
}

// WhatsAppOTP : POST /api/auth/whatsapp-otp, action "send" ou "verify".
func (h *Handler) WhatsAppOTP(c *gin.Context) {
	var in otpRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Data tidak valid")
		return
	}

	switch in.Action {
	case "send":
		h.sendOTP(c, in.PhoneNumber)
	case "verify":
		h.verifyOTP(c, in.PhoneNumber, strings.TrimSpace(in.OTP))
	default:
		fail(c, http.StatusBadRequest, "Action tidak valid")
	}
}

func (h *Handler) sendOTP(c *gin.Context, phone string) {
	_, err := h.otp.Send(c.Request.Context(), phone)
	var cooldown *otp.CooldownError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "OTP telah dikirim ke WhatsApp Anda"})
	case errors.Is(err, otp.ErrInvalidPhone):
		fail(c, http.StatusBadRequest, "Nomor WhatsApp tidak valid")
	case errors.As(err, &cooldown):
		secs := int(cooldown.RetryAfter.Seconds())
		c.JSON(http.StatusTooManyRequests, gin.H{
			"success":     false,
			"message":     "Tunggu " + strconv.Itoa(secs) + " detik sebelum meminta OTP baru",
			"retry_after": secs,
		})
	default:
		h.logger.Error("❌ Erreur envoi OTP", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Terjadi kesalahan saat memproses OTP")
	}
}

func (h *Handler) verifyOTP(c *gin.Context, rawPhone, code string) {
	ctx := c.Request.Context()
	phone, err := h.otp.Verify(ctx, rawPhone, code)
	switch {
	case err == nil:
	case errors.Is(err, otp.ErrInvalidPhone):
		fail(c, http.StatusBadRequest, "Nomor WhatsApp tidak valid")
		return
	case errors.Is(err, otp.ErrOtpExpired):
		fail(c, http.StatusBadRequest, "OTP telah kadaluarsa")
		return
	case errors.Is(err, otp.ErrOtpMismatch):
		fail(c, http.StatusBadRequest, "OTP tidak valid")
		return
	default:
		h.logger.Error("❌ Erreur vérification OTP", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Terjadi kesalahan saat memproses OTP")
		return
	}

	u, err := h.userForPhone(ctx, phone)
	if err != nil {
		h.logger.Error("❌ Erreur compte WhatsApp", zap.String("phone", phone), zap.Error(err))
		fail(c, http.StatusInternalServerError, "Terjadi kesalahan saat memproses OTP")
		return
	}
	h.session(c, http.StatusOK, "OTP terverifikasi", u)
}

// userForPhone retrouve le compte lié au numéro ou en crée un, sans mot
// de passe : il ne pourra se connecter que par OTP. Le nom d'utilisateur est
// le numéro, ou "wa_<chiffres>" si le numéro est déjà pris comme username.
func (h *Handler) userForPhone(ctx context.Context, phone string) (models.User, error) {
	u, err := h.users.UserByPhone(ctx, phone)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return models.User{}, err
	}

	for _, username := range []string{phone, "wa_" + strings.TrimPrefix(phone, "+")} {
		u = models.User{
			ID:          uuid.NewString(),
			Username:    username,
			PhoneNumber: phone,
			Role:        models.RoleUser,
		}
		err = h.users.CreateUser(ctx, u)
		if err == nil {
			h.logger.Info("✅ Compte WhatsApp créé", zap.String("user_id", u.ID), zap.String("username", username))
			return u, nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return models.User{}, err
		}
		// création concurrente pour le même numéro
		if existing, lookupErr := h.users.UserByPhone(ctx, phone); lookupErr == nil {
			return existing, nil
		}
	}
	return models.User{}, err
}
