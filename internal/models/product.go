package models

import (
	"strings"
	"time"
)

// Catégories proposées par la boutique. "semua" = toutes.
const CategoryAll = "semua"

var Categories = []string{
	"elektronik",
	"fashion",
	"aksesoris",
	"rumah",
	"olahraga",
	"kecantikan",
	"kesehatan",
	"buku",
}

// Product est la fiche produit telle que la boutique l'expose.
// Les noms JSON restent ceux du front (nama, harga, ...).
type Product struct {
	ID          string     `json:"id"`
	Name        string     `json:"nama"`
	Price       Rupiah     `json:"harga"`
	Image       string     `json:"gambar"`
	Category    string     `json:"kategori"`
	Description string     `json:"deskripsi"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// InCategory compare la catégorie par sous-chaîne, insensible à la casse.
func (p Product) InCategory(category string) bool {
	if category == "" || category == CategoryAll {
		return true
	}
	return strings.Contains(strings.ToLower(p.Category), strings.ToLower(category))
}

// MatchesName recherche term dans le nom, insensible à la casse.
func (p Product) MatchesName(term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), strings.ToLower(term))
}
