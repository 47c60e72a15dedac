package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Port        string
	Env         string
	LogLevel    string
	JWTSecret   string
	JWTTTL      time.Duration
	CORSOrigins []string
	APIBaseURL  string

	RedisHost     string
	RedisPassword string

	ScyllaHosts    []string
	ScyllaKeyspace string
	ScyllaUsername string
	ScyllaPassword string
	ScyllaCACert   string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
	MinIOPublicURL string

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string

	OTPTTL      time.Duration
	OTPCooldown time.Duration

	QRISMerchantName string
	QRISMerchantCity string
	QRISDelay        time.Duration
}

// Load lit le fichier .env s'il existe. Les variables déjà présentes dans
// l'environnement restent prioritaires.
func Load(logger *zap.Logger) {
	if err := godotenv.Load(".env"); err != nil {
		logger.Warn("⚠️  Aucun fichier .env trouvé, on continue avec les variables d'environnement du système")
		return
	}
	logger.Info("✅ Fichier .env chargé avec succès")
}

// FromEnv construit la configuration typée avec ses valeurs par défaut.
func FromEnv() Config {
	return Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		JWTSecret:   getEnv("JWT_SECRET", "super_secret"),
		JWTTTL:      getEnvDuration("JWT_TTL", 24*time.Hour),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		APIBaseURL:  getEnv("API_BASE_URL", "http://localhost:8080"),

		RedisHost:     getEnv("REDIS_HOST", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		ScyllaHosts:    getEnvList("SCYLLA_HOSTS", nil),
		ScyllaKeyspace: getEnv("SCYLLA_KEYSPACE", "toko"),
		ScyllaUsername: os.Getenv("SCYLLA_USERNAME"),
		ScyllaPassword: os.Getenv("SCYLLA_PASSWORD"),
		ScyllaCACert:   os.Getenv("SCYLLA_SSL_CA_PATH"),

		MinIOEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:    getEnv("MINIO_BUCKET", "products"),
		MinIOUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		MinIOPublicURL: os.Getenv("MINIO_PUBLIC_URL"),

		ElasticURL:      os.Getenv("ELASTIC_URL"),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@toko.local"),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:       os.Getenv("TWILIO_WHATSAPP_FROM"),

		OTPTTL:      getEnvDuration("OTP_TTL", 5*time.Minute),
		OTPCooldown: getEnvDuration("OTP_COOLDOWN", time.Minute),

		QRISMerchantName: getEnv("QRIS_MERCHANT_NAME", "TOKO ONLINE"),
		QRISMerchantCity: getEnv("QRIS_MERCHANT_CITY", "JAKARTA"),
		QRISDelay:        getEnvDuration("QRIS_DELAY", time.Second),
	}
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// ImageBaseURL est le préfixe public des images produits.
func (c Config) ImageBaseURL() string {
	if c.MinIOPublicURL != "" {
		return strings.TrimRight(c.MinIOPublicURL, "/")
	}
	scheme := "http"
	if c.MinIOUseSSL {
		scheme = "https"
	}
	return scheme + "://" + c.MinIOEndpoint + "/" + c.MinIOBucket
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvDuration accepte "5m" ou un nombre de secondes.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
