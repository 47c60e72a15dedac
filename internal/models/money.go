package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Rupiah est un montant entier dans la plus petite unité monétaire.
// Le front envoie parfois "harga" en chaîne : on accepte les deux formes.
type Rupiah int64

func (r *Rupiah) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := ParseRupiah(s)
		if err != nil {
			return err
		}
		*r = v
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("montant invalide: %s", string(data))
	}
	v, err := parseNumber(n)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// parseNumber lit un nombre JSON. Le point y est toujours décimal : les
// séparateurs de milliers ne sont acceptés que dans une chaîne.
func parseNumber(n json.Number) (Rupiah, error) {
	if v, err := n.Int64(); err == nil {
		return Rupiah(v), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("montant invalide: %s", n)
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("montant non entier: %s", n)
	}
	return Rupiah(int64(f)), nil
}

// ParseRupiah convertit "15000", "15.000" ou "15000.0" en entier.
func ParseRupiah(s string) (Rupiah, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "Rp"), "rp")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("montant vide")
	}

	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Rupiah(v), nil
	}

	// séparateurs de milliers à l'indonésienne
	if strings.Count(s, ".") >= 1 && !strings.Contains(s, ",") {
		parts := strings.Split(s, ".")
		if len(parts) > 1 && len(parts[len(parts)-1]) == 3 {
			if v, err := strconv.ParseInt(strings.Join(parts, ""), 10, 64); err == nil {
				return Rupiah(v), nil
			}
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("montant invalide: %q", s)
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("montant non entier: %q", s)
	}
	return Rupiah(int64(f)), nil
}

// String formate en "Rp 15.000".
func (r Rupiah) String() string {
	n := int64(r)
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	return sign + "Rp " + b.String()
}
