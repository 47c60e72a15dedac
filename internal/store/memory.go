package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"toko_back_end/internal/models"
)

// Memory garde tout en mémoire. Sert aux tests et au mode développement
// sans ScyllaDB.
type Memory struct {
	mu       sync.RWMutex
	products map[string]models.Product
	users    map[string]models.User
	orders   map[string]models.Order
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		products: make(map[string]models.Product),
		users:    make(map[string]models.User),
		orders:   make(map[string]models.Order),
	}
}

func (m *Memory) ListProducts(context.Context) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sortProducts(out)
	return out, nil
}

func (m *Memory) GetProduct(_ context.Context, id string) (models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) CreateProduct(_ context.Context, p models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; ok {
		return ErrDuplicate
	}
	m.products[p.ID] = p
	return nil
}

func (m *Memory) UpdateProduct(_ context.Context, p models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return ErrNotFound
	}
	m.products[p.ID] = p
	return nil
}

func (m *Memory) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *Memory) CreateUser(_ context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(u.Username)
	if _, ok := m.users[key]; ok {
		return ErrDuplicate
	}
	m.users[key] = u
	return nil
}

func (m *Memory) UserByUsername(_ context.Context, username string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[strings.ToLower(username)]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) UserByPhone(_ context.Context, phone string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.PhoneNumber != "" && u.PhoneNumber == phone {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (m *Memory) CreateOrder(_ context.Context, o models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[o.OrderNumber]; ok {
		return ErrDuplicate
	}
	m.orders[o.OrderNumber] = o
	return nil
}

func (m *Memory) GetOrder(_ context.Context, orderNumber string) (models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[orderNumber]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	return o, nil
}

func (m *Memory) allOrders() []models.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out
}

func (m *Memory) ListOrders(_ context.Context, f models.OrderFilter) ([]models.Order, models.Pagination, error) {
	page, p := Paginate(FilterOrders(m.allOrders(), f), f.Page, f.PageSize)
	return page, p, nil
}

func (m *Memory) OrderStats(_ context.Context, f models.OrderFilter) (models.OrderStats, error) {
	return ComputeStats(FilterOrders(m.allOrders(), f)), nil
}

func (m *Memory) UpdateOrderStatus(_ context.Context, orderNumber, status string) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderNumber]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	o.OrderStatus = status
	o.PaymentStatus = status
	m.orders[orderNumber] = o
	return o, nil
}

// sortProducts trie par date de création puis par nom.
func sortProducts(ps []models.Product) {
	sort.SliceStable(ps, func(i, j int) bool {
		a, b := ps[i].CreatedAt, ps[j].CreatedAt
		if a != nil && b != nil && !a.Equal(*b) {
			return a.Before(*b)
		}
		return ps[i].Name < ps[j].Name
	})
}
