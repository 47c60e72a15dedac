package otp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	mu       sync.Mutex
	messages map[string]string
	err      error
}

func (c *captureSender) Send(_ context.Context, phone, message string) error {
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.messages == nil {
		c.messages = make(map[string]string)
	}
	c.messages[phone] = message
	return nil
}

func (c *captureSender) code(phone string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.TrimPrefix(c.messages[phone], "Kode OTP untuk login: ")
}

func setup(t *testing.T, cooldown time.Duration) (*Service, *captureSender, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	sender := &captureSender{}
	return NewService(NewRedisStore(rdb), sender, 5*time.Minute, cooldown, nil), sender, mr
}

func TestGenerateCode_SixDigits(t *testing.T) {
	re := regexp.MustCompile(`^\d{6}$`)
	for n := 0; n < 50; n++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Regexp(t, re, code)
	}
}

func TestNormalizePhone(t *testing.T) {
	for _, in := range []string{"081234567890", "6281234567890", "+62 812-3456-7890", "whatsapp:+6281234567890"} {
		got, err := NormalizePhone(in)
		require.NoError(t, err, in)
		assert.Equal(t, "+6281234567890", got, in)
	}

	for _, in := range []string{"", "12ab5678", "0812"} {
		_, err := NormalizePhone(in)
		assert.ErrorIs(t, err, ErrInvalidPhone, in)
	}
}

func TestSendThenVerify(t *testing.T) {
	svc, sender, _ := setup(t, 0)
	ctx := context.Background()

	phone, err := svc.Send(ctx, "081234567890")
	require.NoError(t, err)
	code := sender.code(phone)
	require.Len(t, code, CodeLength)

	_, err = svc.Verify(ctx, "+6281234567890", code)
	require.NoError(t, err)

	// usage unique
	_, err = svc.Verify(ctx, phone, code)
	assert.ErrorIs(t, err, ErrOtpExpired)
}

func TestVerify_Mismatch(t *testing.T) {
	svc, sender, _ := setup(t, 0)
	ctx := context.Background()

	phone, err := svc.Send(ctx, "081234567890")
	require.NoError(t, err)
	code := sender.code(phone)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, err = svc.Verify(ctx, phone, wrong)
	assert.ErrorIs(t, err, ErrOtpMismatch)

	_, err = svc.Verify(ctx, phone, code)
	assert.NoError(t, err, "un code faux n'invalide pas le bon")
}

func TestVerify_Expired(t *testing.T) {
	svc, sender, mr := setup(t, 0)
	ctx := context.Background()

	phone, err := svc.Send(ctx, "081234567890")
	require.NoError(t, err)
	code := sender.code(phone)

	mr.FastForward(6 * time.Minute)

	_, err = svc.Verify(ctx, phone, code)
	assert.ErrorIs(t, err, ErrOtpExpired)
}

func TestVerify_UnknownPhone(t *testing.T) {
	svc, _, _ := setup(t, 0)
	_, err := svc.Verify(context.Background(), "081111111111", "123456")
	assert.ErrorIs(t, err, ErrOtpExpired)
}

func TestSend_Cooldown(t *testing.T) {
	svc, _, mr := setup(t, time.Minute)
	ctx := context.Background()

	_, err := svc.Send(ctx, "081234567890")
	require.NoError(t, err)

	_, err = svc.Send(ctx, "081234567890")
	var ce *CooldownError
	require.ErrorAs(t, err, &ce)
	assert.Greater(t, ce.RetryAfter, time.Duration(0))

	mr.FastForward(61 * time.Second)
	_, err = svc.Send(ctx, "081234567890")
	assert.NoError(t, err)
}

func TestSend_SenderFailureDropsCode(t *testing.T) {
	svc, sender, mr := setup(t, time.Minute)
	sender.err = errors.New("twilio down")

	_, err := svc.Send(context.Background(), "081234567890")
	require.Error(t, err)
	assert.False(t, mr.Exists("otp:+6281234567890"))
	assert.False(t, mr.Exists("otp_cooldown:+6281234567890"))

	// nouvel essai immédiat sans attendre le délai
	sender.err = nil
	phone, err := svc.Send(context.Background(), "081234567890")
	require.NoError(t, err)
	assert.Equal(t, "+6281234567890", phone)
	assert.True(t, mr.Exists("otp:+6281234567890"))
	assert.True(t, mr.Exists("otp_cooldown:+6281234567890"))
}

func TestWhatsAppSender(t *testing.T) {
	var gotTo, gotBody, gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		gotTo, gotBody = r.PostForm.Get("To"), r.PostForm.Get("Body")
		gotUser, _, _ = r.BasicAuth()
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := NewWhatsAppSender("AC123", "secret", "+14155238886")
	s.BaseURL = srv.URL

	require.NoError(t, s.Send(context.Background(), "+6281234567890", Message("123456")))
	assert.Equal(t, "whatsapp:+6281234567890", gotTo)
	assert.Equal(t, "Kode OTP untuk login: 123456", gotBody)
	assert.Equal(t, "AC123", gotUser)
}

func TestWhatsAppSender_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number"}`))
	}))
	defer srv.Close()

	s := NewWhatsAppSender("AC123", "secret", "+14155238886")
	s.BaseURL = srv.URL

	err := s.Send(context.Background(), "+6281234567890", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid 'To' Phone Number")
}
