package checkout

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toko_back_end/internal/models"
)

func product(id string, price models.Rupiah) models.Product {
	return models.Product{ID: id, Name: "Produk " + id, Price: price, Category: "elektronik"}
}

func expectedTotal(lines []models.CartLine) models.Rupiah {
	var sum models.Rupiah
	for _, l := range lines {
		sum += l.Price * models.Rupiah(l.Quantity)
	}
	return sum
}

func TestCart_AddSameProductTwice(t *testing.T) {
	c := NewCart()
	p := product("1", 10000)

	first := c.AddItem(p)
	second := c.AddItem(p)

	assert.Equal(t, 1, first.Quantity)
	assert.Equal(t, 2, second.Quantity)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, models.Rupiah(20000), c.Total())
}

func TestCart_AddKeepsPriceSnapshot(t *testing.T) {
	c := NewCart()
	p := product("1", 10000)
	c.AddItem(p)

	p.Price = 99999
	p.Name = "renamed"
	line := c.AddItem(p)

	assert.Equal(t, models.Rupiah(10000), line.Price)
	assert.Equal(t, "Produk 1", line.Name)
	assert.Equal(t, models.Rupiah(20000), c.Total())
}

func TestCart_SetQuantity(t *testing.T) {
	c := NewCart()
	c.AddItem(product("1", 5000))

	line, ok, err := c.SetQuantity("1", 4)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, line.Quantity)
	assert.Equal(t, models.Rupiah(20000), c.Total())

	_, _, err = c.SetQuantity("1", -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, 4, c.Quantity("1"))

	_, ok, err = c.SetQuantity("absent", 3)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestCart_SetQuantityZeroEqualsRemove(t *testing.T) {
	build := func() *Cart {
		c := NewCart()
		c.AddItem(product("1", 1000))
		c.AddItem(product("2", 2500))
		c.AddItem(product("2", 2500))
		c.AddItem(product("3", 700))
		return c
	}

	a := build()
	removedA, okA, err := a.SetQuantity("2", 0)
	require.NoError(t, err)

	b := build()
	removedB, okB := b.RemoveItem("2")

	assert.Equal(t, okA, okB)
	assert.Equal(t, removedA, removedB)
	assert.Equal(t, a.Lines(), b.Lines())
	assert.Equal(t, a.Total(), b.Total())
}

func TestCart_RemoveReportsLine(t *testing.T) {
	c := NewCart()
	c.AddItem(product("1", 1000))

	line, ok := c.RemoveItem("1")
	assert.True(t, ok)
	assert.Equal(t, "1", line.ProductID)
	assert.True(t, c.IsEmpty())

	_, ok = c.RemoveItem("1")
	assert.False(t, ok)
}

func TestCart_Clear(t *testing.T) {
	c := NewCart()
	c.AddItem(product("1", 1000))
	c.AddItem(product("2", 3000))

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, models.Rupiah(0), c.Total())
}

func TestCart_LinesKeepInsertionOrder(t *testing.T) {
	c := NewCart()
	c.AddItem(product("b", 1))
	c.AddItem(product("a", 1))
	c.AddItem(product("c", 1))
	c.RemoveItem("a")
	c.AddItem(product("a", 1))

	var ids []string
	for _, l := range c.Lines() {
		ids = append(ids, l.ProductID)
	}
	assert.Equal(t, []string{"b", "c", "a"}, ids)
}

func TestCart_TotalMatchesLinesRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	catalog := make([]models.Product, 6)
	for i := range catalog {
		catalog[i] = product(fmt.Sprint(i), models.Rupiah(rng.Intn(50)*500+100))
	}

	c := NewCart()
	for step := 0; step < 2000; step++ {
		p := catalog[rng.Intn(len(catalog))]
		switch rng.Intn(4) {
		case 0, 1:
			c.AddItem(p)
		case 2:
			_, _, err := c.SetQuantity(p.ID, rng.Intn(6)-1)
			if err != nil {
				require.ErrorIs(t, err, ErrInvalidQuantity)
			}
		case 3:
			c.RemoveItem(p.ID)
		}

		lines := c.Lines()
		require.Equal(t, expectedTotal(lines), c.Total(), "step %d", step)

		seen := map[string]bool{}
		for _, l := range lines {
			require.GreaterOrEqual(t, l.Quantity, 1)
			require.False(t, seen[l.ProductID], "doublon %s", l.ProductID)
			seen[l.ProductID] = true
		}
	}
}
