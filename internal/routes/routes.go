package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"toko_back_end/internal/handlers/payment"
	"toko_back_end/internal/handlers/product"
	"toko_back_end/internal/handlers/user"
	"toko_back_end/internal/middleware"
)

type Deps struct {
	Products    *product.Handler
	Payments    *payment.Handler
	Users       *user.Handler
	Redis       *redis.Client
	JWTSecret   string
	CORSOrigins []string
	Logger      *zap.Logger
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(cors.New(corsConfig(d.CORSOrigins)))

	auth := middleware.AuthRequired(d.JWTSecret, d.Logger)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Auth
	a := api.Group("/auth")
	a.POST("/register", middleware.RegisterRateLimit(d.Redis), d.Users.Register)
	a.POST("/login", middleware.LoginRateLimit(d.Redis), d.Users.Login)
	a.POST("/whatsapp-otp", d.Users.WhatsAppOTP)
	a.GET("/me", auth, d.Users.Me)

	// Produits
	api.GET("/products", d.Products.GetAllProducts)
	api.GET("/products/search", d.Products.SearchProducts)
	api.GET("/products/:id", d.Products.GetProduct)

	admin := api.Group("/products", auth, middleware.RequireAdmin)
	admin.POST("", d.Products.CreateProduct)
	admin.PUT("", d.Products.UpdateProduct)
	admin.PUT("/:id", d.Products.UpdateProduct)
	admin.DELETE("", d.Products.DeleteProduct)
	admin.DELETE("/:id", d.Products.DeleteProduct)
	admin.POST("/images", d.Products.UploadImage)

	// Paiement
	api.GET("/qris", d.Payments.GenerateQRIS)
	api.POST("/transactions", middleware.OptionalAuth(d.JWTSecret), d.Payments.CreateTransaction)

	tx := api.Group("/transactions", auth)
	tx.GET("", d.Payments.ListTransactions)
	tx.GET("/stats", middleware.RequireAdmin, d.Payments.TransactionStats)
	tx.GET("/:orderNumber", d.Payments.GetTransaction)
	tx.PATCH("/:orderNumber/status", middleware.RequireAdmin, d.Payments.UpdateTransactionStatus)
}
