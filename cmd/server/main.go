package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"toko_back_end/internal/cache"
	"toko_back_end/internal/config"
	"toko_back_end/internal/database"
	"toko_back_end/internal/handlers/payment"
	"toko_back_end/internal/handlers/product"
	"toko_back_end/internal/handlers/user"
	"toko_back_end/internal/logger"
	"toko_back_end/internal/otp"
	"toko_back_end/internal/qris"
	"toko_back_end/internal/routes"
	"toko_back_end/internal/services"
	"toko_back_end/internal/store"
	"toko_back_end/internal/utils"
)

func main() {
	boot, _ := zap.NewDevelopment()
	config.Load(boot)
	cfg := config.FromEnv()

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		boot.Fatal("❌ Impossible d'initialiser le logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	if cfg.JWTSecret == "super_secret" && cfg.IsProduction() {
		log.Fatal("❌ JWT_SECRET par défaut interdit en production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clients, err := database.Connect(ctx, cfg, log)
	if err != nil {
		log.Fatal("❌ Connexion aux bases impossible", zap.Error(err))
	}
	defer clients.Close()

	st, err := openStore(ctx, clients, log)
	if err != nil {
		log.Fatal("❌ Initialisation du stockage impossible", zap.Error(err))
	}

	productCache := cache.NewProductCache(clients.Redis, cache.ProductCacheTTL)

	var images product.ImageUploader
	if clients.MinIO != nil {
		images = services.NewImageStore(clients.MinIO, cfg.MinIOBucket, cfg.ImageBaseURL())
	}
	var index product.SearchIndex
	if clients.Elastic != nil {
		index = services.NewProductIndex(clients.Elastic, log)
	}

	mailer := utils.NewMailer(utils.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, log)
	if !mailer.Enabled() {
		log.Warn("⚠️ SMTP non configuré, aucun e-mail ne sera envoyé")
	}

	var sender otp.Sender = otp.LogSender{Logger: log}
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		sender = otp.NewWhatsAppSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom)
		log.Info("✅ Envoi WhatsApp via Twilio activé")
	}
	otpService := otp.NewService(otp.NewRedisStore(clients.Redis), sender, cfg.OTPTTL, cfg.OTPCooldown, log)

	qr := qris.New(cfg.QRISMerchantName, cfg.QRISMerchantCity, cfg.QRISDelay, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))
	r.MaxMultipartMemory = services.MaxImageSize

	routes.RegisterRoutes(r, routes.Deps{
		Products:    product.New(st, productCache, images, index, log),
		Payments:    payment.New(st, mailer, qr, log),
		Users:       user.New(st, otpService, cfg.JWTSecret, cfg.JWTTTL, log),
		Redis:       clients.Redis,
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("🚀 Serveur Toko lancé", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("❌ Erreur serveur", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("🛑 Arrêt du serveur…")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("❌ Arrêt forcé", zap.Error(err))
	}
}

// openStore utilise ScyllaDB quand il est configuré, la mémoire sinon.
func openStore(ctx context.Context, clients *database.Clients, log *zap.Logger) (store.Store, error) {
	if clients.Scylla == nil {
		log.Warn("⚠️ ScyllaDB non configuré, stockage en mémoire (données perdues au redémarrage)")
		return store.NewMemory(), nil
	}
	s := store.NewScylla(clients.Scylla)
	if err := s.Migrate(ctx); err != nil {
		return nil, err
	}
	log.Info("✅ Tables ScyllaDB prêtes")
	return s, nil
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("➡️ requête",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
