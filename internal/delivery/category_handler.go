package delivery

import (
	"net/http"

	"shop_service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CategoryHandler struct {
	categoryService CategoryService
	log             *logrus.Logger
}

func NewCategoryHandler(s CategoryService, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: s,
		log:             logger,
	}
}

// RegisterRoutes mounts the public reads on router and the writes on admin.
func (h *CategoryHandler) RegisterRoutes(router, admin gin.IRouter) {
	router.GET("/categories", h.ListCategories)
	router.GET("/categories/:id", h.GetCategory)

	admin.POST("/categories", h.CreateCategory)
	admin.PUT("/categories/:id", h.UpdateCategory)
	admin.DELETE("/categories/:id", h.DeleteCategory)
}

type CategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (r CategoryRequest) input() usecase.CategoryInput {
	return usecase.CategoryInput{Name: r.Name, Description: r.Description}
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "CreateCategory")
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlerLogger.Warnf("Failed to bind request: %v", err)
		writeError(c, handlerLogger, bindingError(err), "")
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, handlerLogger, err, "Server error while creating category")
		return
	}

	SuccessResponse(c, http.StatusCreated, "Category created successfully", category)
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "ListCategories")

	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		writeError(c, handlerLogger, err, "Server error while fetching categories")
		return
	}

	SuccessResponse(c, http.StatusOK, "Categories retrieved successfully", categories)
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "GetCategory")
	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		handlerLogger.Warnf("Invalid category ID parameter: %s", c.Param("id"))
		writeError(c, handlerLogger, err, "")
		return
	}

	category, err := h.categoryService.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, handlerLogger, err, "Server error while fetching category")
		return
	}

	SuccessResponse(c, http.StatusOK, "Category retrieved successfully", category)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "UpdateCategory")
	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		handlerLogger.Warnf("Invalid category ID parameter: %s", c.Param("id"))
		writeError(c, handlerLogger, err, "")
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlerLogger.Warnf("Failed to bind request: %v", err)
		writeError(c, handlerLogger, bindingError(err), "")
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), id, req.input())
	if err != nil {
		writeError(c, handlerLogger, err, "Server error while updating category")
		return
	}

	SuccessResponse(c, http.StatusOK, "Category updated successfully", category)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "DeleteCategory")
	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		handlerLogger.Warnf("Invalid category ID parameter: %s", c.Param("id"))
		writeError(c, handlerLogger, err, "")
		return
	}

	if err := h.categoryService.Delete(c.Request.Context(), id); err != nil {
		writeError(c, handlerLogger, err, "Server error while deleting category")
		return
	}

	SuccessResponse(c, http.StatusOK, "Category deleted successfully", nil)
}
