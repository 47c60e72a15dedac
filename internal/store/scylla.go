package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gocql/gocql"

	"toko_back_end/internal/models"
)

// Scylla stocke les données dans un keyspace ScyllaDB. Les tables sont
// créées par Migrate.
type Scylla struct {
	session *gocql.Session
}

var _ Store = (*Scylla)(nil)

func NewScylla(session *gocql.Session) *Scylla {
	return &Scylla{session: session}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		product_id text PRIMARY KEY,
		name text,
		price bigint,
		image text,
		category text,
		description text,
		created_at timestamp,
		updated_at timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		user_id text PRIMARY KEY,
		username text,
		full_name text,
		email text,
		address text,
		phone_number text,
		password text,
		role text,
		created_at timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS users_by_username (
		username text PRIMARY KEY,
		user_id text
	)`,
	`CREATE TABLE IF NOT EXISTS users_by_phone (
		phone_number text PRIMARY KEY,
		user_id text
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_number text PRIMARY KEY,
		items text,
		total_amount bigint,
		payment_method text,
		payment_status text,
		order_status text,
		payment_details text,
		order_date timestamp,
		customer text,
		user_id text,
		kasir text
	)`,
}

// Migrate crée les tables manquantes.
func (s *Scylla) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if err := s.session.Query(stmt).WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("migration: %w", err)
		}
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gocql.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// --- Produits ---

const productColumns = `product_id, name, price, image, category, description, created_at, updated_at`

func (s *Scylla) ListProducts(ctx context.Context) ([]models.Product, error) {
	iter := s.session.Query(`SELECT ` + productColumns + ` FROM products`).WithContext(ctx).Iter()

	var products []models.Product
	var p models.Product
	var price int64
	for iter.Scan(&p.ID, &p.Name, &price, &p.Image, &p.Category, &p.Description, &p.CreatedAt, &p.UpdatedAt) {
		p.Price = models.Rupiah(price)
		products = append(products, p)
		p = models.Product{}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	sortProducts(products)
	return products, nil
}

func (s *Scylla) GetProduct(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	var price int64
	err := s.session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, id).
		WithContext(ctx).
		Scan(&p.ID, &p.Name, &price, &p.Image, &p.Category, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.Product{}, notFound(err)
	}
	p.Price = models.Rupiah(price)
	return p, nil
}

func (s *Scylla) CreateProduct(ctx context.Context, p models.Product) error {
	applied, err := s.session.Query(`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?) IF NOT EXISTS`,
		p.ID, p.Name, int64(p.Price), p.Image, p.Category, p.Description, p.CreatedAt, p.UpdatedAt).
		WithContext(ctx).
		MapScanCAS(map[string]any{})
	if err != nil {
		return err
	}
	if !applied {
		return ErrDuplicate
	}
	return nil
}

func (s *Scylla) UpdateProduct(ctx context.Context, p models.Product) error {
	applied, err := s.session.Query(`UPDATE products SET name = ?, price = ?, image = ?, category = ?, description = ?, updated_at = ?
		WHERE product_id = ? IF EXISTS`,
		p.Name, int64(p.Price), p.Image, p.Category, p.Description, p.UpdatedAt, p.ID).
		WithContext(ctx).
		MapScanCAS(map[string]any{})
	if err != nil {
		return err
	}
	if !applied {
		return ErrNotFound
	}
	return nil
}

func (s *Scylla) DeleteProduct(ctx context.Context, id string) error {
	applied, err := s.session.Query(`DELETE FROM products WHERE product_id = ? IF EXISTS`, id).
		WithContext(ctx).
		MapScanCAS(map[string]any{})
	if err != nil {
		return err
	}
	if !applied {
		return ErrNotFound
	}
	return nil
}

// --- Utilisateurs ---

// CreateUser réserve d'abord le nom d'utilisateur (LWT) puis écrit le profil.
func (s *Scylla) CreateUser(ctx context.Context, u models.User) error {
	username := strings.ToLower(u.Username)
	applied, err := s.session.Query(`INSERT INTO users_by_username (username, user_id) VALUES (?, ?) IF NOT EXISTS`,
		username, u.ID).WithContext(ctx).MapScanCAS(map[string]any{})
	if err != nil {
		return err
	}
	if !applied {
		return ErrDuplicate
	}

	if err := s.session.Query(`INSERT INTO users (user_id, username, full_name, email, address, phone_number, password, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.FullName, u.Email, u.Address, u.PhoneNumber, u.Password, u.Role, time.Now()).
		WithContext(ctx).Exec(); err != nil {
		return err
	}

	if u.PhoneNumber != "" {
		if err := s.session.Query(`INSERT INTO users_by_phone (phone_number, user_id) VALUES (?, ?)`,
			u.PhoneNumber, u.ID).WithContext(ctx).Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scylla) userByID(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := s.session.Query(`SELECT user_id, username, full_name, email, address, phone_number, password, role FROM users WHERE user_id = ?`, id).
		WithContext(ctx).
		Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.Address, &u.PhoneNumber, &u.Password, &u.Role)
	if err != nil {
		return models.User{}, notFound(err)
	}
	return u, nil
}

func (s *Scylla) UserByUsername(ctx context.Context, username string) (models.User, error) {
	var id string
	if err := s.session.Query(`SELECT user_id FROM users_by_username WHERE username = ?`, strings.ToLower(username)).
		WithContext(ctx).Scan(&id); err != nil {
		return models.User{}, notFound(err)
	}
	return s.userByID(ctx, id)
}

func (s *Scylla) UserByPhone(ctx context.Context, phone string) (models.User, error) {
	var id string
	if err := s.session.Query(`SELECT user_id FROM users_by_phone WHERE phone_number = ?`, phone).
		WithContext(ctx).Scan(&id); err != nil {
		return models.User{}, notFound(err)
	}
	return s.userByID(ctx, id)
}

// --- Commandes ---

const orderColumns = `order_number, items, total_amount, payment_method, payment_status, order_status, payment_details, order_date, customer, kasir`

func (s *Scylla) CreateOrder(ctx context.Context, o models.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	details, err := json.Marshal(o.PaymentDetails)
	if err != nil {
		return err
	}
	customer, err := json.Marshal(o.CustomerInfo)
	if err != nil {
		return err
	}

	applied, err := s.session.Query(`INSERT INTO orders (`+orderColumns+`, user_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) IF NOT EXISTS`,
		o.OrderNumber, string(items), int64(o.TotalAmount), o.PaymentMethod, o.PaymentStatus, o.OrderStatus,
		string(details), o.OrderDate, string(customer), o.Kasir, o.CustomerInfo.UserID).
		WithContext(ctx).
		MapScanCAS(map[string]any{})
	if err != nil {
		return err
	}
	if !applied {
		return ErrDuplicate
	}
	return nil
}

type orderRow struct {
	models.Order
	items, details, customer string
	total                    int64
}

func (r *orderRow) dest() []any {
	return []any{&r.OrderNumber, &r.items, &r.total, &r.PaymentMethod, &r.PaymentStatus, &r.OrderStatus,
		&r.details, &r.OrderDate, &r.customer, &r.Kasir}
}

func (r *orderRow) decode() (models.Order, error) {
	o := r.Order
	o.TotalAmount = models.Rupiah(r.total)
	if err := json.Unmarshal([]byte(r.items), &o.Items); err != nil {
		return models.Order{}, fmt.Errorf("commande %s: items: %w", o.OrderNumber, err)
	}
	if r.details != "" {
		if err := json.Unmarshal([]byte(r.details), &o.PaymentDetails); err != nil {
			return models.Order{}, fmt.Errorf("commande %s: paiement: %w", o.OrderNumber, err)
		}
	}
	if r.customer != "" {
		if err := json.Unmarshal([]byte(r.customer), &o.CustomerInfo); err != nil {
			return models.Order{}, fmt.Errorf("commande %s: client: %w", o.OrderNumber, err)
		}
	}
	return o, nil
}

func (s *Scylla) GetOrder(ctx context.Context, orderNumber string) (models.Order, error) {
	var r orderRow
	if err := s.session.Query(`SELECT `+orderColumns+` FROM orders WHERE order_number = ?`, orderNumber).
		WithContext(ctx).Scan(r.dest()...); err != nil {
		return models.Order{}, notFound(err)
	}
	return r.decode()
}

// allOrders lit toute la table ; les filtres sont appliqués en mémoire.
func (s *Scylla) allOrders(ctx context.Context) ([]models.Order, error) {
	iter := s.session.Query(`SELECT ` + orderColumns + ` FROM orders`).WithContext(ctx).Iter()

	var orders []models.Order
	var r orderRow
	for iter.Scan(r.dest()...) {
		o, err := r.decode()
		if err == nil {
			orders = append(orders, o)
		}
		r = orderRow{}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Scylla) ListOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, models.Pagination, error) {
	all, err := s.allOrders(ctx)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	page, p := Paginate(FilterOrders(all, f), f.Page, f.PageSize)
	return page, p, nil
}

func (s *Scylla) OrderStats(ctx context.Context, f models.OrderFilter) (models.OrderStats, error) {
	all, err := s.allOrders(ctx)
	if err != nil {
		return models.OrderStats{}, err
	}
	return ComputeStats(FilterOrders(all, f)), nil
}

func (s *Scylla) UpdateOrderStatus(ctx context.Context, orderNumber, status string) (models.Order, error) {
	applied, err := s.session.Query(`UPDATE orders SET order_status = ?, payment_status = ? WHERE order_number = ? IF EXISTS`,
		status, status, orderNumber).WithContext(ctx).MapScanCAS(map[string]any{})
	if err != nil {
		return models.Order{}, err
	}
	if !applied {
		return models.Order{}, ErrNotFound
	}
	return s.GetOrder(ctx, orderNumber)
}
