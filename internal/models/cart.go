package models

// CartLine est une ligne du panier : instantané du nom et du prix au moment
// de l'ajout, quantité toujours >= 1.
type CartLine struct {
	ProductID string `json:"id"`
	Name      string `json:"name"`
	Price     Rupiah `json:"price"`
	Quantity  int    `json:"quantity"`
}

func (l CartLine) Subtotal() Rupiah {
	return l.Price * Rupiah(l.Quantity)
}
