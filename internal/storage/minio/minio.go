// minio реализует storage.Blobs поверх MinIO/S3.
//
// New нормализует endpoint, выбирает Secure по схеме и сразу падает,
// если бакета нет.
package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pribylovaa/school-site/internal/config"
	"github.com/pribylovaa/school-site/internal/storage"
)

// Blobs хранилище загрузок в одном бакете.
type Blobs struct {
	client  *mclient.Client
	bucket  string
	baseURL string
}

// New создаёт клиента и проверяет, что бакет существует.
func New(ctx context.Context, cfg config.S3Config) (*Blobs, error) {
	const op = "storage.minio.New"

	endpoint := cfg.Endpoint
	secure := strings.HasPrefix(endpoint, "https://")

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.RootUser, cfg.RootPassword, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		return nil, fmt.Errorf("%s: bucket %q does not exist", op, cfg.Bucket)
	}

	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		scheme := "http"
		if secure {
			scheme = "https"
		}
		base = scheme + "://" + endpoint + "/" + cfg.Bucket
	}

	return &Blobs{client: client, bucket: cfg.Bucket, baseURL: base}, nil
}

// Put сохраняет r как dir/<uuid><ext>.
func (b *Blobs) Put(ctx context.Context, dir string, r io.Reader, size int64, contentType string) (*storage.Object, error) {
	const op = "storage.minio.Put"

	if size <= 0 || dir == "" {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrInvalidArgument)
	}

	key := path.Join(dir, uuid.NewString()+extFor(contentType))

	_, err := b.client.PutObject(ctx, b.bucket, key, r, size, mclient.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &storage.Object{Key: key, URL: b.baseURL + "/" + key}, nil
}

func (b *Blobs) Remove(ctx context.Context, key string) error {
	const op = "storage.minio.Remove"

	if key == "" {
		return nil
	}

	err := b.client.RemoveObject(ctx, b.bucket, key, mclient.RemoveObjectOptions{})
	if err != nil {
		if resp := mclient.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func extFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ""
	}
}

var _ storage.Blobs = (*Blobs)(nil)
