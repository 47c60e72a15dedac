package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	"toko_back_end/internal/models"
)

const ProductIndexName = "products"

var ErrSearchUnavailable = errors.New("client Elasticsearch non initialisé")

// ProductIndex indexe et recherche les produits dans Elasticsearch.
type ProductIndex struct {
	es     *elasticsearch.Client
	index  string
	logger *zap.Logger
}

func NewProductIndex(es *elasticsearch.Client, logger *zap.Logger) *ProductIndex {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductIndex{es: es, index: ProductIndexName, logger: logger}
}

func (x *ProductIndex) Index(ctx context.Context, p models.Product) error {
	if x == nil || x.es == nil {
		return ErrSearchUnavailable
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      x.index,
		DocumentID: p.ID,
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, x.es)
	if err != nil {
		return fmt.Errorf("envoi Elastic: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("Elastic a refusé %s: %s", p.ID, res.Status())
	}
	x.logger.Debug("✅ Produit indexé", zap.String("id", p.ID), zap.String("name", p.Name))
	return nil
}

func (x *ProductIndex) Delete(ctx context.Context, id string) error {
	if x == nil || x.es == nil {
		return ErrSearchUnavailable
	}
	res, err := esapi.DeleteRequest{Index: x.index, DocumentID: id, Refresh: "true"}.Do(ctx, x.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("suppression Elastic %s: %s", id, res.Status())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.Product `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search cherche dans le nom, la description et la catégorie.
func (x *ProductIndex) Search(ctx context.Context, query string) ([]models.Product, error) {
	if x == nil || x.es == nil {
		return nil, ErrSearchUnavailable
	}

	var buf bytes.Buffer
	q := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"nama^2", "deskripsi", "kategori"},
				"fuzziness": "AUTO",
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("encodage requête: %w", err)
	}

	res, err := esapi.SearchRequest{Index: []string{x.index}, Body: &buf}.Do(ctx, x.es)
	if err != nil {
		return nil, fmt.Errorf("requête Elastic: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("recherche Elastic: %s", res.Status())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("décodage JSON: %w", err)
	}
	products := make([]models.Product, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		products = append(products, h.Source)
	}
	return products, nil
}
