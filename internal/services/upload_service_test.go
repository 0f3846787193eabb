package services

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"recipebook_backend/internal/config"
	"recipebook_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{files: make(map[string][]byte)}
}

func (s *memoryStorage) Save(ctx context.Context, path string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = data
	return nil
}

func (s *memoryStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return io.NopCloser(strings.NewReader(string(s.files[path]))), nil
}

func (s *memoryStorage) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
	return nil
}

func (s *memoryStorage) Exists(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[path]
	return ok, nil
}

func (s *memoryStorage) GetURL(path string) string {
	return "https://cdn.example.com/" + path
}

func newUploadServiceForTest() (UploadService, *memoryStorage) {
	store := newMemoryStorage()
	cfg := &config.Config{}
	cfg.Upload.MaxSize = 1024
	cfg.Upload.AllowedTypes = []string{"image/jpeg", "image/png", "image/webp"}
	return NewUploadService(store, cfg), store
}

func TestUploadImage_StoresUnderKindAndUser(t *testing.T) {
	t.Parallel()

	svc, store := newUploadServiceForTest()
	resp, err := svc.UploadImage(context.Background(), UploadKindRecipe, "alice",
		"Tarte.JPG", "image/jpeg", 12, strings.NewReader("fake jpg data"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.Path, "recipes/alice/"))
	assert.True(t, strings.HasSuffix(resp.Path, ".jpg"), "extension is lowercased: %s", resp.Path)
	assert.Equal(t, "https://cdn.example.com/"+resp.Path, resp.URL)

	exists, err := store.Exists(context.Background(), resp.Path)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUploadImage_RejectsBadInput(t *testing.T) {
	t.Parallel()

	svc, store := newUploadServiceForTest()
	cases := []struct {
		name        string
		kind        string
		contentType string
		size        int64
	}{
		{"unknown kind", "documents", "image/jpeg", 10},
		{"disallowed type", UploadKindAvatar, "application/pdf", 10},
		{"too large", UploadKindAvatar, "image/png", 4096},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UploadImage(context.Background(), tc.kind, "alice",
				"file.png", tc.contentType, tc.size, strings.NewReader("data"))
			var appErr *apperrors.AppError
			require.True(t, apperrors.As(err, &appErr))
			assert.Equal(t, 400, appErr.HTTPCode)
		})
	}
	assert.Empty(t, store.files)
}

func TestDeleteFile_RemovesFromStore(t *testing.T) {
	t.Parallel()

	svc, store := newUploadServiceForTest()
	resp, err := svc.UploadImage(context.Background(), UploadKindAvatar, "bob",
		"me.png", "image/png", 5, strings.NewReader("png"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteFile(context.Background(), resp.Path))
	exists, err := store.Exists(context.Background(), resp.Path)
	require.NoError(t, err)
	assert.False(t, exists)
}
