package product

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"toko_back_end/internal/cache"
	"toko_back_end/internal/models"
	"toko_back_end/internal/services"
	"toko_back_end/internal/store"
)

// ImageUploader stocke les images produits et renvoie leur URL publique.
type ImageUploader interface {
	UploadDataURL(ctx context.Context, productID, dataURL string) (string, error)
	Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error)
}

type SearchIndex interface {
	Index(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]models.Product, error)
}

type Handler struct {
	store  store.ProductStore
	cache  *cache.ProductCache
	images ImageUploader
	index  SearchIndex
	logger *zap.Logger
	now    func() time.Time
}

// New : images et index peuvent être nil quand MinIO ou Elasticsearch ne
// sont pas configurés.
func New(s store.ProductStore, c *cache.ProductCache, images ImageUploader, index SearchIndex, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: s, cache: c, images: images, index: index, logger: logger, now: time.Now}
}

func (h *Handler) all(ctx context.Context) ([]models.Product, error) {
	if cached, ok := h.cache.Get(ctx); ok {
		return cached, nil
	}
	products, err := h.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.cache.Set(ctx, products); err != nil {
		h.logger.Warn("⚠️ Mise en cache des produits impossible", zap.Error(err))
	}
	return products, nil
}

// GetAllProducts : GET /api/products[?q=&kategori=]
func (h *Handler) GetAllProducts(c *gin.Context) {
	products, err := h.all(c.Request.Context())
	if err != nil {
		h.logger.Error("❌ Erreur lecture produits", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal memuat produk"})
		return
	}

	term, category := c.Query("q"), c.Query("kategori")
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.MatchesName(term) && p.InCategory(category) {
			out = append(out, p)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.store.GetProduct(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produk tidak ditemukan"})
		return
	}
	if err != nil {
		h.logger.Error("❌ Erreur lecture produit", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal memuat produk"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// SearchProducts interroge Elasticsearch, puis retombe sur un filtre local
// si l'index est absent, en erreur ou vide.
func (h *Handler) SearchProducts(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "parameter 'q' wajib diisi"})
		return
	}
	ctx := c.Request.Context()

	if h.index != nil {
		results, err := h.index.Search(ctx, q)
		if err == nil && len(results) > 0 {
			c.JSON(http.StatusOK, results)
			return
		}
		if err != nil {
			h.logger.Warn("⚠️ Recherche Elastic en échec, filtre local", zap.Error(err))
		}
	}

	products, err := h.all(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal mencari produk"})
		return
	}
	needle := strings.ToLower(q)
	out := []models.Product{}
	for _, p := range products {
		if p.MatchesName(q) || strings.Contains(strings.ToLower(p.Description), needle) {
			out = append(out, p)
		}
	}
	c.JSON(http.StatusOK, out)
}

func validate(p models.Product) string {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return "Nama produk wajib diisi"
	case p.Price <= 0:
		return "Harga harus lebih dari 0"
	}
	return ""
}

func normalize(p *models.Product) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.ToLower(strings.TrimSpace(p.Category))
	p.Description = strings.TrimSpace(p.Description)
}

// storeImage remplace une data URL par l'URL MinIO. Sans MinIO, l'image
// reste telle quelle.
func (h *Handler) storeImage(ctx context.Context, p *models.Product) error {
	if h.images == nil || !services.IsDataURL(p.Image) {
		return nil
	}
	url, err := h.images.UploadDataURL(ctx, p.ID, p.Image)
	if err != nil {
		return err
	}
	p.Image = url
	return nil
}

// afterWrite invalide le cache et met l'index à jour.
func (h *Handler) afterWrite(ctx context.Context, p *models.Product, deleted string) {
	if err := h.cache.Invalidate(ctx); err != nil {
		h.logger.Warn("⚠️ Invalidation cache produits impossible", zap.Error(err))
	}
	if h.index == nil {
		return
	}
	var err error
	if p != nil {
		err = h.index.Index(ctx, *p)
	} else {
		err = h.index.Delete(ctx, deleted)
	}
	if err != nil {
		h.logger.Warn("⚠️ Indexation Elastic impossible", zap.Error(err))
	}
}

// CreateProduct : POST /api/products (admin)
func (h *Handler) CreateProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data produk tidak valid: " + err.Error()})
		return
	}
	normalize(&p)
	if msg := validate(p); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	ctx := c.Request.Context()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := h.now()
	p.CreatedAt, p.UpdatedAt = &now, &now

	if err := h.storeImage(ctx, &p); err != nil {
		h.logger.Error("❌ Erreur upload image", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Gambar tidak valid"})
		return
	}

	if err := h.store.CreateProduct(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "ID produk sudah digunakan"})
			return
		}
		h.logger.Error("❌ Erreur création produit", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal menambahkan produk"})
		return
	}

	h.afterWrite(ctx, &p, "")
	h.logger.Info("✅ Produit créé", zap.String("id", p.ID), zap.String("name", p.Name))
	c.JSON(http.StatusCreated, p)
}

// productID lit l'id dans l'URL, puis dans le body {"id": ...}.
func productID(c *gin.Context, bodyID string) string {
	if id := c.Param("id"); id != "" {
		return id
	}
	if bodyID != "" {
		return bodyID
	}
	return c.Query("id")
}

// UpdateProduct : PUT /api/products[/:id] (admin). Remplace les champs
// envoyés ; les champs vides gardent leur valeur.
func (h *Handler) UpdateProduct(c *gin.Context) {
	var in models.Product
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data produk tidak valid: " + err.Error()})
		return
	}
	id := productID(c, in.ID)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produk wajib diisi"})
		return
	}

	ctx := c.Request.Context()
	p, err := h.store.GetProduct(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produk tidak ditemukan"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal memperbarui produk"})
		return
	}

	normalize(&in)
	if in.Name != "" {
		p.Name = in.Name
	}
	if in.Price != 0 {
		p.Price = in.Price
	}
	if in.Image != "" {
		p.Image = in.Image
	}
	if in.Category != "" {
		p.Category = in.Category
	}
	if in.Description != "" {
		p.Description = in.Description
	}
	if msg := validate(p); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	now := h.now()
	p.UpdatedAt = &now

	if err := h.storeImage(ctx, &p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Gambar tidak valid"})
		return
	}
	if err := h.store.UpdateProduct(ctx, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produk tidak ditemukan"})
			return
		}
		h.logger.Error("❌ Erreur mise à jour produit", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal memperbarui produk"})
		return
	}

	h.afterWrite(ctx, &p, "")
	c.JSON(http.StatusOK, p)
}

// DeleteProduct : DELETE /api/products[/:id] (admin), id aussi accepté
// dans le body ou en query.
func (h *Handler) DeleteProduct(c *gin.Context) {
	var in struct {
		ID string `json:"id"`
	}
	_ = c.ShouldBindJSON(&in)
	id := productID(c, in.ID)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produk wajib diisi"})
		return
	}

	ctx := c.Request.Context()
	if err := h.store.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produk tidak ditemukan"})
			return
		}
		h.logger.Error("❌ Erreur suppression produit", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal menghapus produk"})
		return
	}

	h.afterWrite(ctx, nil, id)
	h.logger.Info("🗑️ Produit supprimé", zap.String("id", id))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Produk berhasil dihapus"})
}

// UploadImage : POST /api/products/images (admin, multipart "file").
func (h *Handler) UploadImage(c *gin.Context) {
	if h.images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Penyimpanan gambar tidak tersedia"})
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File tidak ditemukan"})
		return
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File harus berupa gambar"})
		return
	}
	if fh.Size > services.MaxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Gambar terlalu besar"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal membaca file"})
		return
	}
	defer f.Close()

	name := "products/" + uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	url, err := h.images.Upload(c.Request.Context(), name, f, fh.Size, contentType)
	if err != nil {
		h.logger.Error("❌ Erreur upload MinIO", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal mengunggah gambar"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
