package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toko_back_end/internal/models"
)

func TestParseDataURL(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G'}
	ct, data, err := ParseDataURL("data:image/png;base64," + base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
	assert.Equal(t, raw, data)
	assert.Equal(t, ".png", extension(ct))

	for _, bad := range []string{
		"https://cdn.example.com/a.png",
		"data:image/png;base64",
		"data:text/plain;base64,aGVsbG8=",
		"data:image/png,raw",
		"data:image/png;base64,@@@",
	} {
		_, _, err := ParseDataURL(bad)
		assert.ErrorIs(t, err, ErrNotDataURL, bad)
	}
}

func TestImageStore_NotConfigured(t *testing.T) {
	var s *ImageStore
	_, err := s.Upload(context.Background(), "x", strings.NewReader(""), 0, "image/png")
	assert.Error(t, err)
}

func newElastic(t *testing.T, h http.HandlerFunc) *ProductIndex {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewProductIndex(es, nil)
}

func TestProductIndex_Search(t *testing.T) {
	x := newElastic(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/_search", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"query":"kaos"`)
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_source":{"id":"1","nama":"Kaos Polos","harga":"75000","kategori":"fashion"}}]}}`))
	})

	got, err := x.Search(context.Background(), "kaos")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Kaos Polos", got[0].Name)
	assert.Equal(t, models.Rupiah(75000), got[0].Price)
}

func TestProductIndex_Index(t *testing.T) {
	var indexed models.Product
	x := newElastic(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/products/_doc/42", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&indexed))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	require.NoError(t, x.Index(context.Background(), models.Product{ID: "42", Name: "Lampu", Price: 12000}))
	assert.Equal(t, "Lampu", indexed.Name)
}

func TestProductIndex_ErrorStatus(t *testing.T) {
	x := newElastic(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})

	_, err := x.Search(context.Background(), "kaos")
	assert.Error(t, err)
}

func TestProductIndex_Nil(t *testing.T) {
	var x *ProductIndex
	_, err := x.Search(context.Background(), "kaos")
	assert.ErrorIs(t, err, ErrSearchUnavailable)
}
