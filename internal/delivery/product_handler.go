package delivery

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"shop_service/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const imageField = "image"

type ProductHandler struct {
	productService ProductService
	log            *logrus.Logger
}

func NewProductHandler(s ProductService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		productService: s,
		log:            logger,
	}
}

func (h *ProductHandler) RegisterRoutes(router, admin gin.IRouter) {
	router.GET("/products", h.ListProducts)
	router.GET("/products/:id", h.GetProduct)

	admin.POST("/products", h.CreateProduct)
	admin.PUT("/products/:id", h.UpdateProduct)
	admin.DELETE("/products/:id", h.DeleteProduct)
}

// ProductRequest binds either a JSON body or a multipart form. Absent fields
// stay nil.
type ProductRequest struct {
	Name        *string  `json:"name" form:"name"`
	Description *string  `json:"description" form:"description"`
	Price       *float64 `json:"price" form:"price" binding:"omitempty,gte=0"`
	Stock       *int     `json:"stock" form:"stock" binding:"omitempty,gte=0"`
	CategoryID  *string  `json:"categoryId" form:"categoryId" binding:"omitempty,uuid"`
}

type ProductQuery struct {
	Page     int      `form:"page"`
	Limit    int      `form:"limit"`
	Category string   `form:"category"`
	MinPrice *float64 `form:"minPrice"`
	MaxPrice *float64 `form:"maxPrice"`
	Search   string   `form:"search"`
}

type ProductList struct {
	Products   []domain.Product `json:"products"`
	Pagination productPage      `json:"pagination"`
}

// productInput binds the request. The returned closer releases an uploaded
// file and is never nil.
func (h *ProductHandler) productInput(c *gin.Context) (domain.ProductInput, func(), error) {
	noop := func() {}
	var req ProductRequest
	if err := c.ShouldBind(&req); err != nil {
		return domain.ProductInput{}, noop, bindingError(err)
	}

	in := domain.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	}
	if req.CategoryID != nil {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return domain.ProductInput{}, noop, domain.NewValidationError("Validation failed",
				domain.FieldError{Path: "categoryId", Msg: "Must be a valid UUID"})
		}
		in.CategoryID = &id
	}

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return in, noop, nil
	}
	header, err := c.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return in, noop, nil
	}
	if err != nil {
		return domain.ProductInput{}, noop, domain.NewValidationError("Invalid image upload")
	}
	upload, closeFn, err := openUpload(header)
	if err != nil {
		return domain.ProductInput{}, noop, err
	}
	in.Image = upload
	return in, closeFn, nil
}

func openUpload(header *multipart.FileHeader) (*domain.Upload, func(), error) {
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, nil, domain.NewValidationError("Validation failed",
			domain.FieldError{Path: imageField, Msg: "Only image files are allowed"})
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, domain.NewValidationError("Invalid image upload")
	}
	return &domain.Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	}, func() { _ = file.Close() }, nil
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "CreateProduct")
	in, release, err := h.productInput(c)
	defer release()
	if err != nil {
		handlerLogger.Warnf("Failed to bind request: %v", err)
		writeError(c, handlerLogger, err, "")
		return
	}

	product, err := h.productService.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, handlerLogger, err, "Server error while creating product")
		return
	}

	SuccessResponse(c, http.StatusCreated, "Product created successfully", product)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "ListProducts")
	var q ProductQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		handlerLogger.Warnf("Failed to bind query: %v", err)
		writeError(c, handlerLogger, bindingError(err), "")
		return
	}

	products, page, err := h.productService.List(c.Request.Context(), domain.ProductFilter{
		Category: q.Category,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		Search:   q.Search,
		Page:     domain.PageRequest{Page: q.Page, Limit: q.Limit},
	})
	if err != nil {
		writeError(c, handlerLogger, err, "Server error while fetching products")
		return
	}

	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", ProductList{
		Products:   products,
		Pagination: newProductPage(page),
	})
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "GetProduct")
	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		handlerLogger.Warnf("Invalid product ID parameter: %s", c.Param("id"))
		writeError(c, handlerLogger, err, "")
		return
	}

	product, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, handlerLogger, err, "Server error while fetching product")
		return
	}

	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "UpdateProduct")
	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		handlerLogger.Warnf("Invalid product ID parameter: %s", c.Param("id"))
		writeError(c, handlerLogger, err, "")
		return
	}

	in, release, err := h.productInput(c)
	defer release()
	if err != nil {
		handlerLogger.Warnf("Failed to bind request: %v", err)
		writeError(c, handlerLogger, err, "")
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, handlerLogger, err, "Server error while updating product")
		return
	}

	SuccessResponse(c, http.StatusOK, "Product updated successfully", product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "DeleteProduct")
	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		handlerLogger.Warnf("Invalid product ID parameter: %s", c.Param("id"))
		writeError(c, handlerLogger, err, "")
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		writeError(c, handlerLogger, err, "Server error while deleting product")
		return
	}

	SuccessResponse(c, http.StatusOK, "Product deleted successfully", nil)
}
