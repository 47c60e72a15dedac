package store

import (
	"sort"
	"time"

	"toko_back_end/internal/models"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// MatchOrder applique les filtres du rapport. EndDate est inclusive sur
// toute la journée.
func MatchOrder(o models.Order, f models.OrderFilter) bool {
	if f.Kasir != "" && o.Kasir != f.Kasir {
		return false
	}
	if f.PaymentMethod != "" && o.PaymentMethod != f.PaymentMethod {
		return false
	}
	if f.UserID != "" && o.CustomerInfo.UserID != f.UserID {
		return false
	}
	if f.StartDate != nil && o.OrderDate.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && !o.OrderDate.Before(endOfDay(*f.EndDate)) {
		return false
	}
	return true
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}

// FilterOrders filtre puis trie du plus récent au plus ancien.
func FilterOrders(orders []models.Order, f models.OrderFilter) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if MatchOrder(o, f) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderDate.After(out[j].OrderDate)
	})
	return out
}

// Paginate découpe une liste déjà filtrée. page commence à 1.
func Paginate(orders []models.Order, page, pageSize int) ([]models.Order, models.Pagination) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}

	total := len(orders)
	pages := (total + pageSize - 1) / pageSize
	// au-delà de la dernière page, (page-1)*pageSize peut déborder
	if page > pages+1 {
		page = pages + 1
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := min(start+pageSize, total)

	return orders[start:end], models.Pagination{
		CurrentPage: page,
		PageSize:    pageSize,
		TotalCount:  total,
		TotalPages:  pages,
		HasNext:     page < pages,
		HasPrev:     page > 1,
	}
}

// ComputeStats agrège les commandes. Les commandes rejetées sont comptées
// mais exclues du chiffre d'affaires.
func ComputeStats(orders []models.Order) models.OrderStats {
	st := models.OrderStats{
		ByMethod:      map[string]models.Rupiah{},
		CountByStatus: map[string]int{},
	}
	paid := 0
	for _, o := range orders {
		st.Count++
		st.CountByStatus[o.OrderStatus]++
		if o.OrderStatus == models.OrderRejected {
			continue
		}
		paid++
		st.Revenue += o.TotalAmount
		st.ByMethod[o.PaymentMethod] += o.TotalAmount
	}
	if paid > 0 {
		st.Average = st.Revenue / models.Rupiah(paid)
	}
	return st
}

// PeriodStart traduit le filtre "period" des statistiques.
func PeriodStart(period string, now time.Time) *time.Time {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	var start time.Time
	switch period {
	case "today":
		start = today
	case "week":
		start = today.AddDate(0, 0, -6)
	case "month":
		start = today.AddDate(0, -1, 0)
	case "year":
		start = today.AddDate(-1, 0, 0)
	default:
		return nil
	}
	return &start
}
