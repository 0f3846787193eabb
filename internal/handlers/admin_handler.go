package handlers

import (
	"net/http"

	"recipebook_backend/internal/middleware"
	"recipebook_backend/internal/models"
	"recipebook_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	*BaseHandler
	adminService services.AdminService
}

func NewAdminHandler(base *BaseHandler, adminService services.AdminService) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  base,
		adminService: adminService,
	}
}

func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(models.UserRoleAdmin))
	{
		admin.GET("/stats", h.GetDashboardStats)
		admin.GET("/users", h.ListUsers)
		admin.PUT("/users/:userId/role", h.SetUserRole)
		admin.DELETE("/users/:userId", h.DeleteUser)
		admin.GET("/support", h.ListSupportConversations)
	}
}

func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, pageSize := ParsePagination(c)
	resp, err := h.adminService.ListUsers(h.GetDB(c), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) SetUserRole(c *gin.Context) {
	actorID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req struct {
		Role string `json:"role" validate:"required"`
	}
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	err := h.adminService.SetUserRole(h.GetDB(c), actorID, c.Param("userId"), models.UserRole(req.Role))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actorID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	if err := h.adminService.DeleteUser(h.GetDB(c), actorID, c.Param("userId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

func (h *AdminHandler) ListSupportConversations(c *gin.Context) {
	status := models.ConversationStatus(c.DefaultQuery("status", string(models.ConversationStatusOpen)))
	resp, err := h.adminService.ListSupportConversations(h.GetDB(c), status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
