package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

var ErrNotDataURL = errors.New("image non encodée en data URL")

// MaxImageSize borne la taille d'une image décodée.
const MaxImageSize = 5 << 20

// IsDataURL reconnaît "data:<mime>;base64,<...>".
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// ParseDataURL décode une image envoyée par le formulaire produit.
func ParseDataURL(s string) (string, []byte, error) {
	if !IsDataURL(s) {
		return "", nil, ErrNotDataURL
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: virgule manquante", ErrNotDataURL)
	}
	if !strings.HasSuffix(meta, ";base64") {
		return "", nil, fmt.Errorf("%w: seul le base64 est accepté", ErrNotDataURL)
	}
	contentType := strings.TrimSuffix(meta, ";base64")
	if !strings.HasPrefix(contentType, "image/") {
		return "", nil, fmt.Errorf("%w: type %q", ErrNotDataURL, contentType)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrNotDataURL, err)
	}
	if len(data) > MaxImageSize {
		return "", nil, fmt.Errorf("image trop grande (%d octets)", len(data))
	}
	return contentType, data, nil
}

func extension(contentType string) string {
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	if _, sub, ok := strings.Cut(contentType, "/"); ok {
		return "." + sub
	}
	return ""
}

// ImageStore envoie les images produits dans un bucket MinIO.
type ImageStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
	now     func() time.Time
}

// NewImageStore : baseURL est le préfixe public des objets, par exemple
// "http://minio:9000/products".
func NewImageStore(client *minio.Client, bucket, baseURL string) *ImageStore {
	return &ImageStore{client: client, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
}

// UploadDataURL stocke l'image sous products/<id>_<timestamp><ext>.
func (s *ImageStore) UploadDataURL(ctx context.Context, productID, dataURL string) (string, error) {
	contentType, data, err := ParseDataURL(dataURL)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("products/%s_%d%s", url.PathEscape(productID), s.now().Unix(), extension(contentType))
	return s.Upload(ctx, name, bytes.NewReader(data), int64(len(data)), contentType)
}

func (s *ImageStore) Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	if s == nil || s.client == nil {
		return "", errors.New("MinIO non initialisé")
	}
	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	return s.baseURL + "/" + objectName, nil
}
