package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"recipebook_backend/internal/config"
	"recipebook_backend/internal/services/dto"
	"recipebook_backend/internal/storage"
	"recipebook_backend/pkg/apperrors"

	"github.com/google/uuid"
)

// Upload kinds map to key prefixes in the store.
const (
	UploadKindRecipe = "recipes"
	UploadKindAvatar = "avatars"
)

type UploadService interface {
	// UploadImage validates and stores an image, returning its public URL.
	UploadImage(ctx context.Context, kind, userID, filename, contentType string, size int64, reader io.Reader) (*dto.UploadResponse, error)
	DeleteFile(ctx context.Context, storagePath string) error
}

type uploadService struct {
	store storage.Storage
	cfg   *config.Config
}

func NewUploadService(store storage.Storage, cfg *config.Config) UploadService {
	return &uploadService{store: store, cfg: cfg}
}

func (s *uploadService) UploadImage(ctx context.Context, kind, userID, filename, contentType string, size int64, reader io.Reader) (*dto.UploadResponse, error) {
	if kind != UploadKindRecipe && kind != UploadKindAvatar {
		return nil, apperrors.NewBadRequestError("unknown upload kind")
	}
	if size > s.cfg.Upload.MaxSize {
		return nil, apperrors.NewBadRequestError(
			fmt.Sprintf("file exceeds the maximum size of %d bytes", s.cfg.Upload.MaxSize))
	}
	if !s.typeAllowed(contentType) {
		return nil, apperrors.NewBadRequestError(
			fmt.Sprintf("content type %s is not allowed", contentType))
	}

	key := fmt.Sprintf("%s/%s/%s%s",
		kind,
		userID,
		uuid.NewString(),
		strings.ToLower(path.Ext(filename)),
	)

	saveCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := s.store.Save(saveCtx, key, reader, contentType); err != nil {
		return nil, apperrors.InternalError("failed to store file").WithError(err)
	}

	return &dto.UploadResponse{
		Path:        key,
		URL:         s.store.GetURL(key),
		ContentType: contentType,
		Size:        size,
	}, nil
}

func (s *uploadService) DeleteFile(ctx context.Context, storagePath string) error {
	if err := s.store.Delete(ctx, storagePath); err != nil {
		return apperrors.InternalError("failed to delete file").WithError(err)
	}
	return nil
}

func (s *uploadService) typeAllowed(contentType string) bool {
	for _, allowed := range s.cfg.Upload.AllowedTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}
