package handlers

import (
	"net/http"

	"recipebook_backend/internal/middleware"
	"recipebook_backend/internal/services"
	"recipebook_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	*BaseHandler
	commentService services.CommentService
}

func NewCommentHandler(base *BaseHandler, commentService services.CommentService) *CommentHandler {
	return &CommentHandler{
		BaseHandler:    base,
		commentService: commentService,
	}
}

func (h *CommentHandler) RegisterRoutes(r *gin.RouterGroup) {
	public := r.Group("/recipes/:recipeId/comments")
	public.Use(middleware.OptionalAuthMiddleware())
	{
		public.GET("", h.ListComments)
	}

	protected := r.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/recipes/:recipeId/comments", h.CreateComment)
		protected.PUT("/comments/:commentId", h.UpdateComment)
		protected.DELETE("/comments/:commentId", h.DeleteComment)
	}
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	resp, err := h.commentService.ListComments(h.GetDB(c), middleware.GetUserID(c), c.Param("recipeId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.CreateCommentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.commentService.CreateComment(h.GetDB(c), userID, c.Param("recipeId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CommentHandler) UpdateComment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateCommentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.commentService.UpdateComment(h.GetDB(c), userID, c.Param("commentId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	err := h.commentService.DeleteComment(h.GetDB(c), userID, middleware.GetUserRole(c), c.Param("commentId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}
