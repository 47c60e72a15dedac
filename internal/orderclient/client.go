// Package orderclient envoie les commandes de la caisse à /api/transactions.
package orderclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"toko_back_end/internal/apiclient"
	"toko_back_end/internal/checkout"
	"toko_back_end/internal/models"
)

type Client struct {
	api    *apiclient.Client
	logger *zap.Logger
}

var _ checkout.OrderSubmitter = (*Client)(nil)

func New(api *apiclient.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{api: api, logger: logger}
}

type createResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Order   models.Order `json:"order"`
}

// SubmitOrder POST la commande. Une seule tentative : l'API n'est pas
// idempotente.
func (c *Client) SubmitOrder(ctx context.Context, order models.Order) (models.Order, error) {
	var res createResponse
	if err := c.api.Do(ctx, http.MethodPost, "/api/transactions", order, &res); err != nil {
		return models.Order{}, mapError(err)
	}
	if !res.Success {
		reason := res.Message
		if reason == "" {
			reason = "réponse sans succès"
		}
		return models.Order{}, &checkout.SubmissionError{Reason: reason}
	}

	c.logger.Info("📦 Commande envoyée", zap.String("orderNumber", res.Order.OrderNumber))
	return res.Order, nil
}

type ListResult struct {
	Success      bool              `json:"success"`
	Transactions []models.Order    `json:"transactions"`
	Pagination   models.Pagination `json:"pagination"`
}

// List lit GET /api/transactions avec les filtres du rapport.
func (c *Client) List(ctx context.Context, f models.OrderFilter) (ListResult, error) {
	var res ListResult
	path := "/api/transactions"
	if q := query(f); q != "" {
		path += "?" + q
	}
	if err := c.api.Do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return ListResult{}, mapError(err)
	}
	return res, nil
}

// Get lit une commande par numéro, pour le suivi de statut.
func (c *Client) Get(ctx context.Context, orderNumber string) (models.Order, error) {
	var res createResponse
	if err := c.api.Do(ctx, http.MethodGet, "/api/transactions/"+url.PathEscape(orderNumber), nil, &res); err != nil {
		return models.Order{}, mapError(err)
	}
	return res.Order, nil
}

func query(f models.OrderFilter) string {
	q := url.Values{}
	if f.Kasir != "" {
		q.Set("kasir", f.Kasir)
	}
	if f.PaymentMethod != "" {
		q.Set("paymentMethod", f.PaymentMethod)
	}
	if f.StartDate != nil {
		q.Set("startDate", f.StartDate.Format(time.DateOnly))
	}
	if f.EndDate != nil {
		q.Set("endDate", f.EndDate.Format(time.DateOnly))
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(f.PageSize))
	}
	return q.Encode()
}

// mapError traduit les erreurs HTTP en erreurs du workflow de caisse.
func mapError(err error) error {
	var se *apiclient.StatusError
	if errors.As(err, &se) {
		return &checkout.SubmissionError{StatusCode: se.StatusCode, Reason: se.Message}
	}
	if errors.Is(err, apiclient.ErrUnavailable) {
		return fmt.Errorf("%w: %w", checkout.ErrNetwork, err)
	}
	return err
}
