package qris

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Tags EMVCo utilisés dans le payload QRIS.
const (
	tagFormat         = "00"
	tagInitiation     = "01"
	tagMerchantAcct   = "26"
	tagCategory       = "52"
	tagCurrency       = "53"
	tagAmount         = "54"
	tagCountry        = "58"
	tagMerchantName   = "59"
	tagMerchantCity   = "60"
	tagAdditional     = "62"
	tagCRC            = "63"
	qrisGUID          = "ID.CO.QRIS.WWW"
	dynamicInitiation = "12"
	currencyRupiah    = "360"
)

var ErrInvalidPayload = errors.New("payload QRIS invalide")

func tlv(tag, value string) string {
	return fmt.Sprintf("%s%02d%s", tag, len(value), value)
}

func truncate(s string, n int) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) > n {
		return s[:n]
	}
	return s
}

// buildPayload assemble un payload QRIS dynamique terminé par son CRC.
func buildPayload(merchantName, merchantCity, reference string, amount int64) string {
	var b strings.Builder
	b.WriteString(tlv(tagFormat, "01"))
	b.WriteString(tlv(tagInitiation, dynamicInitiation))
	b.WriteString(tlv(tagMerchantAcct, tlv("00", qrisGUID)+tlv("02", reference)))
	b.WriteString(tlv(tagCategory, "5411"))
	b.WriteString(tlv(tagCurrency, currencyRupiah))
	b.WriteString(tlv(tagAmount, strconv.FormatInt(amount, 10)))
	b.WriteString(tlv(tagCountry, "ID"))
	b.WriteString(tlv(tagMerchantName, truncate(merchantName, 25)))
	b.WriteString(tlv(tagMerchantCity, truncate(merchantCity, 15)))
	b.WriteString(tlv(tagAdditional, tlv("01", reference)))
	b.WriteString(tagCRC + "04")
	return b.String() + fmt.Sprintf("%04X", crc16(b.String()))
}

// Fields est la vue décodée d'un payload.
type Fields struct {
	Reference    string
	Amount       int64
	MerchantName string
	MerchantCity string
}

// Parse décode un payload produit par buildPayload et vérifie son CRC.
func Parse(payload string) (Fields, error) {
	if len(payload) < 8 || payload[len(payload)-8:len(payload)-4] != tagCRC+"04" {
		return Fields{}, ErrInvalidPayload
	}
	body, sum := payload[:len(payload)-4], payload[len(payload)-4:]
	if fmt.Sprintf("%04X", crc16(body)) != sum {
		return Fields{}, fmt.Errorf("%w: CRC", ErrInvalidPayload)
	}

	top, err := decode(body[:len(body)-4])
	if err != nil {
		return Fields{}, err
	}
	var f Fields
	f.MerchantName = top[tagMerchantName]
	f.MerchantCity = top[tagMerchantCity]
	if f.Amount, err = strconv.ParseInt(top[tagAmount], 10, 64); err != nil {
		return Fields{}, fmt.Errorf("%w: montant", ErrInvalidPayload)
	}
	add, err := decode(top[tagAdditional])
	if err != nil {
		return Fields{}, err
	}
	f.Reference = add["01"]
	return f, nil
}

func decode(s string) (map[string]string, error) {
	out := make(map[string]string)
	for len(s) > 0 {
		if len(s) < 4 {
			return nil, ErrInvalidPayload
		}
		n, err := strconv.Atoi(s[2:4])
		if err != nil || len(s) < 4+n {
			return nil, ErrInvalidPayload
		}
		out[s[:2]] = s[4 : 4+n]
		s = s[4+n:]
	}
	return out, nil
}

// crc16 est le CRC-16/CCITT-FALSE exigé par EMVCo (poly 0x1021, init 0xFFFF).
func crc16(s string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(s); i++ {
		crc ^= uint16(s[i]) << 8
		for b := 0; b < 8; b++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
