package catalog

import "toko_back_end/internal/models"

// Filter garde les produits dont le nom contient term (insensible à la casse)
// et dont la catégorie contient category. "" ou "semua" = toutes catégories.
func Filter(products []models.Product, term, category string) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.MatchesName(term) && p.InCategory(category) {
			out = append(out, p)
		}
	}
	return out
}

// CountByCategory compte les produits d'une catégorie.
func CountByCategory(products []models.Product, category string) int {
	if category == "" || category == models.CategoryAll {
		return len(products)
	}
	n := 0
	for _, p := range products {
		if p.InCategory(category) {
			n++
		}
	}
	return n
}

// Counts renvoie le compte pour "semua" et chaque catégorie connue.
func Counts(products []models.Product) map[string]int {
	counts := map[string]int{models.CategoryAll: len(products)}
	for _, cat := range models.Categories {
		counts[cat] = CountByCategory(products, cat)
	}
	return counts
}
