// Package store définit les dépôts produits, utilisateurs et commandes,
// avec une implémentation ScyllaDB et une implémentation en mémoire.
package store

import (
	"context"
	"errors"

	"toko_back_end/internal/models"
)

var (
	ErrNotFound  = errors.New("introuvable")
	ErrDuplicate = errors.New("existe déjà")
)

type ProductStore interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	CreateProduct(ctx context.Context, p models.Product) error
	UpdateProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

type UserStore interface {
	CreateUser(ctx context.Context, u models.User) error
	UserByUsername(ctx context.Context, username string) (models.User, error)
	UserByPhone(ctx context.Context, phone string) (models.User, error)
}

type OrderStore interface {
	// CreateOrder renvoie ErrDuplicate si le numéro de commande existe.
	CreateOrder(ctx context.Context, o models.Order) error
	GetOrder(ctx context.Context, orderNumber string) (models.Order, error)
	ListOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, models.Pagination, error)
	OrderStats(ctx context.Context, f models.OrderFilter) (models.OrderStats, error)
	UpdateOrderStatus(ctx context.Context, orderNumber, status string) (models.Order, error)
}

// Store regroupe les trois dépôts.
type Store interface {
	ProductStore
	UserStore
	OrderStore
}
