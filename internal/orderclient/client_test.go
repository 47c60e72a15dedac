package orderclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toko_back_end/internal/apiclient"
	"toko_back_end/internal/checkout"
	"toko_back_end/internal/models"
)

func sampleOrder() models.Order {
	cash, change := models.Rupiah(25000), models.Rupiah(5000)
	return models.Order{
		OrderNumber:    "ORD-1-abcdefghi",
		Items:          []models.OrderItem{{ID: "1", Name: "A", Price: 10000, Quantity: 2, Subtotal: 20000}},
		TotalAmount:    20000,
		PaymentMethod:  models.PaymentCash,
		OrderStatus:    models.OrderPending,
		PaymentStatus:  models.OrderPending,
		PaymentDetails: models.PaymentDetails{CashAmount: &cash, ChangeAmount: &change},
		OrderDate:      time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestSubmitOrder_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/transactions", r.URL.Path)

		var o models.Order
		require.NoError(t, json.NewDecoder(r.Body).Decode(&o))
		assert.Equal(t, models.Rupiah(20000), o.TotalAmount)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(createResponse{Success: true, Order: o})
	}))
	defer srv.Close()

	got, err := New(apiclient.New(srv.URL), nil).SubmitOrder(context.Background(), sampleOrder())
	require.NoError(t, err)
	assert.Equal(t, "ORD-1-abcdefghi", got.OrderNumber)
}

func TestSubmitOrder_RejectedIsSubmissionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"total tidak sesuai"}`))
	}))
	defer srv.Close()

	_, err := New(apiclient.New(srv.URL), nil).SubmitOrder(context.Background(), sampleOrder())

	var se *checkout.SubmissionError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, "total tidak sesuai", se.Reason)
}

func TestSubmitOrder_ServerErrorIsSubmissionError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(apiclient.New(srv.URL), nil).SubmitOrder(context.Background(), sampleOrder())

	var se *checkout.SubmissionError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, int32(1), calls.Load(), "pas de retry automatique")
}

func TestSubmitOrder_NotSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"ditolak"}`))
	}))
	defer srv.Close()

	_, err := New(apiclient.New(srv.URL), nil).SubmitOrder(context.Background(), sampleOrder())

	var se *checkout.SubmissionError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "ditolak", se.Reason)
}

func TestSubmitOrder_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(apiclient.New(url), nil).SubmitOrder(context.Background(), sampleOrder())
	assert.ErrorIs(t, err, checkout.ErrNetwork)
	assert.True(t, checkout.IsRetryable(err))
}

func TestList_SendsFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "kasir-1", q.Get("kasir"))
		assert.Equal(t, "qris", q.Get("paymentMethod"))
		assert.Equal(t, "2024-06-01", q.Get("startDate"))
		assert.Equal(t, "2", q.Get("page"))
		_ = json.NewEncoder(w).Encode(ListResult{
			Success:      true,
			Transactions: []models.Order{sampleOrder()},
			Pagination:   models.Pagination{CurrentPage: 2, PageSize: 10, TotalCount: 11, TotalPages: 2, HasPrev: true},
		})
	}))
	defer srv.Close()

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	res, err := New(apiclient.New(srv.URL), nil).List(context.Background(), models.OrderFilter{
		Kasir: "kasir-1", PaymentMethod: "qris", StartDate: &start, Page: 2,
	})
	require.NoError(t, err)
	assert.Len(t, res.Transactions, 1)
	assert.True(t, res.Pagination.HasPrev)
}
