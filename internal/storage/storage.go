package storage

import (
	"context"
	"fmt"
	"io"
)

// Storage abstracts where recipe and avatar images live. Paths are
// slash-separated keys relative to the store root.
type Storage interface {
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)

	// GetURL returns the public URL the frontend uses for the file.
	GetURL(path string) string
}

type Config struct {
	Type      string // "local" or "cloudflare_r2"
	BasePath  string // local only
	BaseURL   string // public URL base
	Bucket    string // R2 only
	AccessKey string // R2 only
	SecretKey string // R2 only
	Endpoint  string // R2 account endpoint
}

func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "local", "":
		return NewLocalStorage(cfg)
	case "cloudflare_r2":
		return NewCloudflareR2Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
