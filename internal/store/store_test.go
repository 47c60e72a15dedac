package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toko_back_end/internal/models"
)

func day(d, h int) time.Time {
	return time.Date(2024, 6, d, h, 0, 0, 0, time.UTC)
}

func order(num string, date time.Time, method, status string, total models.Rupiah) models.Order {
	return models.Order{
		OrderNumber:   num,
		OrderDate:     date,
		PaymentMethod: method,
		OrderStatus:   status,
		TotalAmount:   total,
		Kasir:         "kasir-1",
	}
}

func sampleOrders() []models.Order {
	return []models.Order{
		order("A", day(1, 9), models.PaymentCash, models.OrderConfirmed, 10000),
		order("B", day(2, 10), models.PaymentQRIS, models.OrderPending, 20000),
		order("C", day(3, 23), models.PaymentCash, models.OrderRejected, 50000),
		order("D", day(4, 8), models.PaymentQRIS, models.OrderConfirmed, 30000),
	}
}

func numbers(orders []models.Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.OrderNumber
	}
	return out
}

func TestFilterOrders(t *testing.T) {
	start, end := day(2, 0), day(3, 0)

	got := FilterOrders(sampleOrders(), models.OrderFilter{StartDate: &start, EndDate: &end})
	assert.Equal(t, []string{"C", "B"}, numbers(got), "fin de journée incluse, plus récent d'abord")

	got = FilterOrders(sampleOrders(), models.OrderFilter{PaymentMethod: models.PaymentQRIS})
	assert.Equal(t, []string{"D", "B"}, numbers(got))

	got = FilterOrders(sampleOrders(), models.OrderFilter{Kasir: "kasir-2"})
	assert.Empty(t, got)
}

func TestPaginate(t *testing.T) {
	orders := make([]models.Order, 23)

	page, p := Paginate(orders, 3, 10)
	assert.Len(t, page, 3)
	assert.Equal(t, models.Pagination{CurrentPage: 3, PageSize: 10, TotalCount: 23, TotalPages: 3, HasNext: false, HasPrev: true}, p)

	page, p = Paginate(orders, 0, 0)
	assert.Len(t, page, DefaultPageSize)
	assert.True(t, p.HasNext)
	assert.False(t, p.HasPrev)

	page, p = Paginate(orders, 9, 10)
	assert.Empty(t, page)
	assert.Equal(t, 3, p.TotalPages)

	_, p = Paginate(nil, 1, 10)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNext)
}

func TestPaginate_HugePage(t *testing.T) {
	orders := make([]models.Order, 3)

	var page []models.Order
	var p models.Pagination
	require.NotPanics(t, func() { page, p = Paginate(orders, (1<<62)+1, 10) })
	assert.Empty(t, page)
	assert.Equal(t, 2, p.CurrentPage)
	assert.True(t, p.HasPrev)
	assert.False(t, p.HasNext)

	require.NotPanics(t, func() { page, _ = Paginate(orders, 1<<62, MaxPageSize) })
	assert.Empty(t, page)
}

func TestComputeStats(t *testing.T) {
	st := ComputeStats(sampleOrders())

	assert.Equal(t, 4, st.Count)
	assert.Equal(t, models.Rupiah(60000), st.Revenue)
	assert.Equal(t, models.Rupiah(20000), st.Average)
	assert.Equal(t, models.Rupiah(10000), st.ByMethod[models.PaymentCash])
	assert.Equal(t, models.Rupiah(50000), st.ByMethod[models.PaymentQRIS])
	assert.Equal(t, 1, st.CountByStatus[models.OrderRejected])
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, day(10, 0), *PeriodStart("today", now))
	assert.Equal(t, day(4, 0), *PeriodStart("week", now))
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), *PeriodStart("month", now))
	assert.Nil(t, PeriodStart("", now))
}

func TestMemory_Orders(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for _, o := range sampleOrders() {
		require.NoError(t, m.CreateOrder(ctx, o))
	}
	assert.ErrorIs(t, m.CreateOrder(ctx, sampleOrders()[0]), ErrDuplicate)

	list, p, err := m.ListOrders(ctx, models.OrderFilter{PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "C"}, numbers(list))
	assert.True(t, p.HasNext)

	o, err := m.UpdateOrderStatus(ctx, "B", models.OrderConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.OrderConfirmed, o.OrderStatus)
	assert.Equal(t, models.OrderConfirmed, o.PaymentStatus)

	_, err = m.UpdateOrderStatus(ctx, "Z", models.OrderConfirmed)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_Users(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.CreateUser(ctx, models.User{ID: "u1", Username: "Budi", PhoneNumber: "+6281234567890"}))
	assert.ErrorIs(t, m.CreateUser(ctx, models.User{ID: "u2", Username: "budi"}), ErrDuplicate)

	u, err := m.UserByUsername(ctx, "BUDI")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	u, err = m.UserByPhone(ctx, "+6281234567890")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = m.UserByPhone(ctx, "+620000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_Products(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	t1, t2 := day(1, 0), day(2, 0)

	require.NoError(t, m.CreateProduct(ctx, models.Product{ID: "2", Name: "B", CreatedAt: &t2}))
	require.NoError(t, m.CreateProduct(ctx, models.Product{ID: "1", Name: "A", CreatedAt: &t1}))

	list, err := m.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "1", list[0].ID)

	assert.ErrorIs(t, m.UpdateProduct(ctx, models.Product{ID: "9"}), ErrNotFound)
	require.NoError(t, m.DeleteProduct(ctx, "1"))
	assert.ErrorIs(t, m.DeleteProduct(ctx, "1"), ErrNotFound)
}
