package handlers

import (
	"net/http"

	"recipebook_backend/internal/middleware"
	"recipebook_backend/internal/repositories"
	"recipebook_backend/internal/services"
	"recipebook_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type RecipeHandler struct {
	*BaseHandler
	recipeService services.RecipeService
}

func NewRecipeHandler(base *BaseHandler, recipeService services.RecipeService) *RecipeHandler {
	return &RecipeHandler{
		BaseHandler:   base,
		recipeService: recipeService,
	}
}

func (h *RecipeHandler) RegisterRoutes(r *gin.RouterGroup) {
	public := r.Group("/recipes")
	public.Use(middleware.OptionalAuthMiddleware())
	{
		public.GET("", h.ListRecipes)
		public.GET("/:recipeId", h.GetRecipe)
	}

	protected := r.Group("/recipes")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("", h.CreateRecipe)
		protected.PUT("/:recipeId", h.UpdateRecipe)
		protected.DELETE("/:recipeId", h.DeleteRecipe)
		protected.POST("/:recipeId/rating", h.RateRecipe)
		protected.POST("/:recipeId/favorite", h.AddFavorite)
		protected.DELETE("/:recipeId/favorite", h.RemoveFavorite)
	}

	favorites := r.Group("/favorites")
	favorites.Use(middleware.AuthMiddleware())
	{
		favorites.GET("", h.ListFavorites)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	var criteria repositories.RecipeCriteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	resp, err := h.recipeService.ListRecipes(h.GetDB(c), middleware.GetUserID(c), criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	resp, err := h.recipeService.GetRecipe(h.GetDB(c), middleware.GetUserID(c), c.Param("recipeId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.CreateRecipeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.recipeService.CreateRecipe(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateRecipeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.recipeService.UpdateRecipe(h.GetDB(c), userID, c.Param("recipeId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	err := h.recipeService.DeleteRecipe(h.GetDB(c), userID, middleware.GetUserRole(c), c.Param("recipeId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted"})
}

func (h *RecipeHandler) RateRecipe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.RateRecipeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.recipeService.RateRecipe(h.GetDB(c), userID, c.Param("recipeId"), req.Stars)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	resp, err := h.recipeService.AddFavorite(h.GetDB(c), userID, c.Param("recipeId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	resp, err := h.recipeService.RemoveFavorite(h.GetDB(c), userID, c.Param("recipeId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) ListFavorites(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	resp, err := h.recipeService.ListFavorites(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
