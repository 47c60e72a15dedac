package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	LoginMaxAttempts    = 5
	RegisterMaxAttempts = 3

	LoginCooldown    = 15 * time.Minute
	RegisterCooldown = 30 * time.Minute
)

// LoginRateLimit bloque un nom d'utilisateur après trop d'échecs (401).
// Un login réussi remet le compteur à zéro.
func LoginRateLimit(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		username := jsonField(body, "username")
		if username == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := "login_attempts:" + username
		cooldownKey := "login_cooldown:" + username

		if ttl := rdb.TTL(ctx, cooldownKey).Val(); ttl > 0 {
			tooMany(c, fmt.Sprintf("Terlalu banyak percobaan. Coba lagi dalam %d menit", minutesCeil(ttl)), ttl)
			return
		}

		attempts, _ := rdb.Get(ctx, key).Int()
		if attempts >= LoginMaxAttempts {
			rdb.Set(ctx, cooldownKey, "1", LoginCooldown)
			rdb.Del(ctx, key)
			tooMany(c, fmt.Sprintf("Terlalu banyak percobaan. Akun dikunci selama %d menit", int(LoginCooldown.Minutes())), LoginCooldown)
			return
		}

		c.Next()

		switch c.Writer.Status() {
		case http.StatusUnauthorized:
			pipe := rdb.Pipeline()
			pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, LoginCooldown)
			_, _ = pipe.Exec(ctx)
		case http.StatusOK:
			rdb.Del(ctx, key, cooldownKey)
		}
	}
}

// RegisterRateLimit limite les inscriptions réussies par IP.
func RegisterRateLimit(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := "register_attempts:" + c.ClientIP()

		attempts, _ := rdb.Get(ctx, key).Int()
		if attempts >= RegisterMaxAttempts {
			ttl := rdb.TTL(ctx, key).Val()
			if ttl <= 0 {
				ttl = RegisterCooldown
			}
			tooMany(c, fmt.Sprintf("Terlalu banyak pendaftaran. Coba lagi dalam %d menit", minutesCeil(ttl)), ttl)
			return
		}

		c.Next()

		if c.Writer.Status() == http.StatusCreated {
			pipe := rdb.Pipeline()
			pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, RegisterCooldown)
			_, _ = pipe.Exec(ctx)
		}
	}
}

func tooMany(c *gin.Context, msg string, retry time.Duration) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":       msg,
		"retry_after": int(retry.Seconds()),
	})
}

func minutesCeil(d time.Duration) int {
	return int((d + time.Minute - 1) / time.Minute)
}

// jsonField extrait un champ texte de premier niveau sans consommer le body.
func jsonField(body []byte, name string) string {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return ""
	}
	s, _ := m[name].(string)
	return strings.ToLower(strings.TrimSpace(s))
}
