package product

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toko_back_end/internal/cache"
	"toko_back_end/internal/models"
	"toko_back_end/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeImages struct {
	uploaded []string
}

func (f *fakeImages) UploadDataURL(_ context.Context, id, _ string) (string, error) {
	f.uploaded = append(f.uploaded, id)
	return "http://minio/products/" + id + ".png", nil
}

func (f *fakeImages) Upload(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	f.uploaded = append(f.uploaded, name)
	return "http://minio/" + name, nil
}

type fakeIndex struct {
	docs    map[string]models.Product
	results []models.Product
	err     error
}

func (f *fakeIndex) Index(_ context.Context, p models.Product) error {
	f.docs[p.ID] = p
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, id string) error {
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) Search(context.Context, string) ([]models.Product, error) {
	return f.results, f.err
}

type env struct {
	router *gin.Engine
	store  *store.Memory
	mr     *miniredis.Miniredis
	images *fakeImages
	index  *fakeIndex
}

func setup(t *testing.T) env {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := env{
		store:  store.NewMemory(),
		mr:     mr,
		images: &fakeImages{},
		index:  &fakeIndex{docs: map[string]models.Product{}},
	}
	h := New(e.store, cache.NewProductCache(rdb, time.Minute), e.images, e.index, nil)
	h.now = func() time.Time { return time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC) }

	r := gin.New()
	r.GET("/api/products", h.GetAllProducts)
	r.GET("/api/products/search", h.SearchProducts)
	r.GET("/api/products/:id", h.GetProduct)
	r.POST("/api/products", h.CreateProduct)
	r.PUT("/api/products", h.UpdateProduct)
	r.DELETE("/api/products", h.DeleteProduct)
	r.DELETE("/api/products/:id", h.DeleteProduct)
	r.POST("/api/products/images", h.UploadImage)
	e.router = r
	return e
}

func (e env) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e env) seed(t *testing.T, ps ...models.Product) {
	t.Helper()
	for _, p := range ps {
		require.NoError(t, e.store.CreateProduct(context.Background(), p))
	}
}

func decodeProducts(t *testing.T, w *httptest.ResponseRecorder) []models.Product {
	t.Helper()
	var out []models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCreateProduct(t *testing.T) {
	e := setup(t)

	w := e.do(http.MethodPost, "/api/products",
		`{"nama":" Kaos Polos ","harga":"75000","gambar":"data:image/png;base64,iVBORw0KGgo=","kategori":"Fashion","deskripsi":"katun"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var p models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Kaos Polos", p.Name)
	assert.Equal(t, models.Rupiah(75000), p.Price)
	assert.Equal(t, "fashion", p.Category)
	assert.Equal(t, "http://minio/products/"+p.ID+".png", p.Image)
	assert.Contains(t, e.index.docs, p.ID)
}

func TestCreateProduct_Validation(t *testing.T) {
	e := setup(t)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/products", `{"nama":"","harga":1000}`).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/products", `{"nama":"A","harga":0}`).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/products", `{"nama":"A","harga":"abc"}`).Code)

	e.seed(t, models.Product{ID: "p1", Name: "A", Price: 1})
	assert.Equal(t, http.StatusConflict, e.do(http.MethodPost, "/api/products", `{"id":"p1","nama":"B","harga":1000}`).Code)
}

func TestGetAllProducts_CacheAndInvalidation(t *testing.T) {
	e := setup(t)
	e.seed(t, models.Product{ID: "1", Name: "Kaos", Price: 75000, Category: "fashion"})

	w := e.do(http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeProducts(t, w), 1)
	assert.True(t, e.mr.Exists(cache.ProductsKey))

	// écrit directement dans le store : le cache sert encore l'ancienne liste
	e.seed(t, models.Product{ID: "2", Name: "Lampu", Price: 12000, Category: "rumah"})
	assert.Len(t, decodeProducts(t, e.do(http.MethodGet, "/api/products", "")), 1)

	// une écriture via l'API invalide le cache
	require.Equal(t, http.StatusOK, e.do(http.MethodDelete, "/api/products/1", "").Code)
	got := decodeProducts(t, e.do(http.MethodGet, "/api/products", ""))
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}

func TestGetAllProducts_Filters(t *testing.T) {
	e := setup(t)
	e.seed(t,
		models.Product{ID: "1", Name: "Kaos Polos", Price: 75000, Category: "fashion"},
		models.Product{ID: "2", Name: "Lampu Meja", Price: 12000, Category: "rumah"},
	)

	got := decodeProducts(t, e.do(http.MethodGet, "/api/products?kategori=rumah", ""))
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)

	got = decodeProducts(t, e.do(http.MethodGet, "/api/products?q=KAOS&kategori=semua", ""))
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestGetProduct(t *testing.T) {
	e := setup(t)
	e.seed(t, models.Product{ID: "1", Name: "Kaos", Price: 75000})

	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/products/1", "").Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/products/9", "").Code)
}

func TestUpdateProduct_PartialBodyWithID(t *testing.T) {
	e := setup(t)
	e.seed(t, models.Product{ID: "1", Name: "Kaos", Price: 75000, Category: "fashion", Image: "http://old"})

	w := e.do(http.MethodPut, "/api/products", `{"id":"1","harga":80000}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	p, err := e.store.GetProduct(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, models.Rupiah(80000), p.Price)
	assert.Equal(t, "Kaos", p.Name)
	assert.Equal(t, "http://old", p.Image)
	assert.Empty(t, e.images.uploaded)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPut, "/api/products", `{"id":"9","harga":1}`).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPut, "/api/products", `{"harga":1}`).Code)
}

func TestDeleteProduct_BodyID(t *testing.T) {
	e := setup(t)
	e.seed(t, models.Product{ID: "1", Name: "Kaos", Price: 75000})
	e.index.docs["1"] = models.Product{ID: "1"}

	assert.Equal(t, http.StatusOK, e.do(http.MethodDelete, "/api/products", `{"id":"1"}`).Code)
	assert.NotContains(t, e.index.docs, "1")
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/api/products", `{"id":"1"}`).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodDelete, "/api/products", ``).Code)
}

func TestSearchProducts(t *testing.T) {
	e := setup(t)
	e.seed(t,
		models.Product{ID: "1", Name: "Kaos Polos", Price: 75000, Description: "katun"},
		models.Product{ID: "2", Name: "Lampu", Price: 12000, Description: "LED hemat"},
	)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/products/search", "").Code)

	e.index.results = []models.Product{{ID: "es", Name: "Dari Elastic"}}
	got := decodeProducts(t, e.do(http.MethodGet, "/api/products/search?q=apa", ""))
	require.Len(t, got, 1)
	assert.Equal(t, "es", got[0].ID)

	e.index.results, e.index.err = nil, errors.New("es down")
	got = decodeProducts(t, e.do(http.MethodGet, "/api/products/search?q=hemat", ""))
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}

func TestUploadImage(t *testing.T) {
	e := setup(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="Foto.PNG"`)
	hdr.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, _ = part.Write([]byte("png"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, e.images.uploaded, 1)
	assert.True(t, strings.HasSuffix(e.images.uploaded[0], ".png"))
}
