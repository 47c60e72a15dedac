package checkout

import "toko_back_end/internal/models"

// Cart est le panier en mémoire d'une session de caisse.
// Le total est recalculé à chaque mutation ; total n'est qu'un miroir.
// Un Cart n'est pas protégé pour un usage concurrent : Workflow s'en charge.
type Cart struct {
	lines []models.CartLine
	total models.Rupiah
}

func NewCart() *Cart {
	return &Cart{}
}

// AddItem ajoute une unité du produit et renvoie la ligne à jour.
func (c *Cart) AddItem(p models.Product) models.CartLine {
	defer c.recompute()

	if i := c.indexOf(p.ID); i >= 0 {
		c.lines[i].Quantity++
		return c.lines[i]
	}

	line := models.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  1,
	}
	c.lines = append(c.lines, line)
	return line
}

// SetQuantity fixe la quantité exacte d'une ligne. qty == 0 retire la ligne.
// Le booléen vaut false si le produit n'est pas dans le panier.
func (c *Cart) SetQuantity(productID string, qty int) (models.CartLine, bool, error) {
	if qty < 0 {
		return models.CartLine{}, false, ErrInvalidQuantity
	}
	if qty == 0 {
		line, ok := c.RemoveItem(productID)
		return line, ok, nil
	}

	i := c.indexOf(productID)
	if i < 0 {
		return models.CartLine{}, false, nil
	}
	c.lines[i].Quantity = qty
	c.recompute()
	return c.lines[i], true, nil
}

// RemoveItem retire la ligne et la renvoie pour que l'appelant puisse notifier.
func (c *Cart) RemoveItem(productID string) (models.CartLine, bool) {
	i := c.indexOf(productID)
	if i < 0 {
		return models.CartLine{}, false
	}
	line := c.lines[i]
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	c.recompute()
	return line, true
}

func (c *Cart) Clear() {
	c.lines = nil
	c.recompute()
}

func (c *Cart) Total() models.Rupiah {
	return c.total
}

// Lines renvoie une copie, dans l'ordre d'ajout.
func (c *Cart) Lines() []models.CartLine {
	out := make([]models.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Quantity renvoie 0 si le produit est absent.
func (c *Cart) Quantity(productID string) int {
	if i := c.indexOf(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) recompute() {
	c.total = lineSum(c.lines)
}

func lineSum(lines []models.CartLine) models.Rupiah {
	var sum models.Rupiah
	for _, l := range lines {
		sum += l.Subtotal()
	}
	return sum
}
