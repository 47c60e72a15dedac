package otp

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store conserve un code par numéro, avec expiration.
type Store interface {
	Save(ctx context.Context, phone, code string, ttl time.Duration) error
	// Consume supprime le code s'il correspond. Un code faux reste valable
	// jusqu'à son expiration.
	Consume(ctx context.Context, phone, code string) error
	Delete(ctx context.Context, phone string) error
	// Reserve pose le verrou d'envoi. Si un verrou existe déjà, renvoie
	// false et le temps restant.
	Reserve(ctx context.Context, phone string, cooldown time.Duration) (bool, time.Duration, error)
	// Release lève le verrou d'envoi.
	Release(ctx context.Context, phone string) error
}

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func codeKey(phone string) string     { return "otp:" + phone }
func cooldownKey(phone string) string { return "otp_cooldown:" + phone }

func (s *RedisStore) Save(ctx context.Context, phone, code string, ttl time.Duration) error {
	return s.rdb.Set(ctx, codeKey(phone), code, ttl).Err()
}

// consumeScript compare et supprime en une seule opération.
var consumeScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then return 0 end
if v == ARGV[1] then
  redis.call('DEL', KEYS[1])
  return 1
end
return 2
`)

func (s *RedisStore) Consume(ctx context.Context, phone, code string) error {
	res, err := consumeScript.Run(ctx, s.rdb, []string{codeKey(phone)}, code).Int()
	if err != nil {
		return err
	}
	switch res {
	case 1:
		return nil
	case 0:
		return ErrOtpExpired
	default:
		return ErrOtpMismatch
	}
}

func (s *RedisStore) Delete(ctx context.Context, phone string) error {
	return s.rdb.Del(ctx, codeKey(phone)).Err()
}

func (s *RedisStore) Reserve(ctx context.Context, phone string, cooldown time.Duration) (bool, time.Duration, error) {
	if cooldown <= 0 {
		return true, 0, nil
	}
	ok, err := s.rdb.SetNX(ctx, cooldownKey(phone), "1", cooldown).Result()
	if err != nil {
		return false, 0, err
	}
	if ok {
		return true, 0, nil
	}
	ttl, err := s.rdb.TTL(ctx, cooldownKey(phone)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, 0, err
	}
	if ttl < 0 {
		ttl = cooldown
	}
	return false, ttl, nil
}

func (s *RedisStore) Release(ctx context.Context, phone string) error {
	return s.rdb.Del(ctx, cooldownKey(phone)).Err()
}
