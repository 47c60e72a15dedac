package models

import "time"

const (
	PaymentCash = "tunai"
	PaymentQRIS = "qris"
)

const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderRejected  = "rejected"
)

type OrderItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    Rupiah `json:"price"`
	Quantity int    `json:"quantity"`
	Subtotal Rupiah `json:"subtotal"`
}

// PaymentDetails porte soit les infos espèces, soit la référence QRIS.
type PaymentDetails struct {
	CashAmount    *Rupiah `json:"cashAmount,omitempty"`
	ChangeAmount  *Rupiah `json:"changeAmount,omitempty"`
	QRISReference string  `json:"qrisReference,omitempty"`
}

type CustomerInfo struct {
	UserID  string `json:"userId,omitempty"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// Order est la commande telle qu'elle circule entre la caisse et l'API
// /api/transactions.
type Order struct {
	OrderNumber    string         `json:"orderNumber"`
	Items          []OrderItem    `json:"items"`
	TotalAmount    Rupiah         `json:"totalAmount"`
	PaymentMethod  string         `json:"paymentMethod"`
	PaymentStatus  string         `json:"paymentStatus"`
	OrderStatus    string         `json:"orderStatus"`
	PaymentDetails PaymentDetails `json:"paymentDetails"`
	OrderDate      time.Time      `json:"orderDate"`
	CustomerInfo   CustomerInfo   `json:"customerInfo"`
	Kasir          string         `json:"kasir,omitempty"`
}

func (o Order) ItemsTotal() Rupiah {
	var total Rupiah
	for _, it := range o.Items {
		total += it.Price * Rupiah(it.Quantity)
	}
	return total
}

// OrderFilter reprend les filtres de la page "rapport".
type OrderFilter struct {
	Kasir         string
	PaymentMethod string
	UserID        string
	StartDate     *time.Time
	EndDate       *time.Time
	Page          int
	PageSize      int
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	PageSize    int  `json:"pageSize"`
	TotalCount  int  `json:"totalCount"`
	TotalPages  int  `json:"totalPages"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

type OrderStats struct {
	Count         int               `json:"count"`
	Revenue       Rupiah            `json:"revenue"`
	Average       Rupiah            `json:"average"`
	ByMethod      map[string]Rupiah `json:"byMethod"`
	CountByStatus map[string]int    `json:"countByStatus"`
}
