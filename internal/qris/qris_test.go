package qris

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_PayloadRoundTrip(t *testing.T) {
	g := New("Toko Sejahtera Abadi Makmur Jaya", "Jakarta Selatan Raya", 0, nil)
	g.Now = func() time.Time { return time.UnixMilli(1718000000000) }

	code, err := g.Generate(context.Background(), 20000)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(code.Reference, "QRIS-1718000000000-"))
	assert.True(t, strings.HasPrefix(code.Payload, "000201010212"))
	assert.True(t, strings.HasPrefix(code.Image, "data:image/png;base64,"))

	f, err := Parse(code.Payload)
	require.NoError(t, err)
	assert.Equal(t, code.Reference, f.Reference)
	assert.Equal(t, int64(20000), f.Amount)
	assert.Equal(t, "TOKO SEJAHTERA ABADI MAKM", f.MerchantName)
	assert.Equal(t, "JAKARTA SELATAN", f.MerchantCity)
}

func TestGenerate_UniqueReferences(t *testing.T) {
	g := New("Toko", "Bandung", 0, nil)
	a, err := g.Generate(context.Background(), 1000)
	require.NoError(t, err)
	b, err := g.Generate(context.Background(), 1000)
	require.NoError(t, err)
	assert.NotEqual(t, a.Reference, b.Reference)
}

func TestGenerate_RejectsNonPositiveAmount(t *testing.T) {
	_, err := New("Toko", "Bandung", 0, nil).Generate(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestGenerate_ContextCancelledDuringDelay(t *testing.T) {
	g := New("Toko", "Bandung", time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, 5000)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParse_RejectsTamperedPayload(t *testing.T) {
	code, err := New("Toko", "Bandung", 0, nil).Generate(context.Background(), 5000)
	require.NoError(t, err)

	tampered := strings.Replace(code.Payload, "54045000", "54045001", 1)
	_, err = Parse(tampered)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestCRC16_KnownVector(t *testing.T) {
	assert.Equal(t, uint16(0x29B1), crc16("123456789"))
}
