package handlers

import (
	"io"
	"net/http"
	"strings"

	"recipebook_backend/internal/middleware"
	"recipebook_backend/internal/models"
	"recipebook_backend/internal/services"
	"recipebook_backend/internal/storage"
	"recipebook_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	*BaseHandler
	uploadService services.UploadService
	store         storage.Storage
}

func NewUploadHandler(base *BaseHandler, uploadService services.UploadService, store storage.Storage) *UploadHandler {
	return &UploadHandler{
		BaseHandler:   base,
		uploadService: uploadService,
		store:         store,
	}
}

func (h *UploadHandler) RegisterRoutes(r *gin.RouterGroup) {
	uploads := r.Group("/uploads")
	uploads.Use(middleware.AuthMiddleware())
	{
		uploads.POST("/:kind", h.Upload)
		uploads.DELETE("/*path", h.Delete)
	}

	// Local storage serves files straight from disk.
	r.GET("/files/*path", h.ServeFile)
}

// Upload accepts a multipart image under the "file" field. The :kind path
// segment selects the key prefix ("recipes" or "avatars").
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.HandleServiceError(c, apperrors.NewBadRequestError("Missing file field"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError("failed to open uploaded file").WithError(err))
		return
	}
	defer file.Close()

	resp, err := h.uploadService.UploadImage(
		c.Request.Context(),
		c.Param("kind"),
		userID,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Delete removes a stored file. Keys are kind/userID/name, so owners can
// only delete their own files; admins can delete anything.
func (h *UploadHandler) Delete(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	path := strings.TrimPrefix(c.Param("path"), "/")
	parts := strings.SplitN(path, "/", 3)
	if len(parts) != 3 {
		h.HandleServiceError(c, apperrors.NewBadRequestError("Invalid file path"))
		return
	}
	if parts[1] != userID && middleware.GetUserRole(c) != models.UserRoleAdmin {
		h.HandleServiceError(c, apperrors.ErrInsufficientPermissions)
		return
	}

	if err := h.uploadService.DeleteFile(c.Request.Context(), path); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File deleted"})
}

func (h *UploadHandler) ServeFile(c *gin.Context) {
	path := c.Param("path")
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}

	reader, err := h.store.Get(c.Request.Context(), path)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	defer reader.Close()

	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}
