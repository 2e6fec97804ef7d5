package delivery

import (
	"net/http"

	"shop_service/internal/domain"
	"shop_service/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CartHandler struct {
	cartService CartService
	log         *logrus.Logger
}

func NewCartHandler(s CartService, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		cartService: s,
		log:         logger,
	}
}

// RegisterRoutes expects router to be behind the auth middleware.
func (h *CartHandler) RegisterRoutes(router gin.IRouter) {
	cart := router.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.POST("/add", h.AddItem)
		cart.PUT("/item/:id", h.UpdateItem)
		cart.DELETE("/item/:id", h.RemoveItem)
		cart.DELETE("/clear", h.ClearCart)
	}
}

type AddToCartRequest struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// caller returns the authenticated user; it writes a 401 when there is none.
func caller(c *gin.Context, log logrus.FieldLogger) (uuid.UUID, bool) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		writeError(c, log, domain.NewAuthError("Authentication required"), "")
		return uuid.Nil, false
	}
	return identity.UserID, true
}

func (h *CartHandler) GetCart(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "GetCart")
	userID, ok := caller(c, handlerLogger)
	if !ok {
		return
	}

	cart, err := h.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		writeError(c, handlerLogger, err, "Server error while fetching cart")
		return
	}

	SuccessResponse(c, http.StatusOK, "Cart retrieved successfully", cart)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "AddItem")
	userID, ok := caller(c, handlerLogger)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlerLogger.Warnf("Failed to bind request: %v", err)
		writeError(c, handlerLogger, bindingError(err), "")
		return
	}
	productID, err := parseID(req.ProductID, "productId")
	if err != nil {
		writeError(c, handlerLogger, err, "")
		return
	}

	cart, err := h.cartService.AddItem(c.Request.Context(), userID, productID, req.Quantity)
	if err != nil {
		writeError(c, handlerLogger, err, "Server error while adding to cart")
		return
	}

	SuccessResponse(c, http.StatusCreated, "Product added to cart successfully", cart)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "UpdateItem")
	userID, ok := caller(c, handlerLogger)
	if !ok {
		return
	}

	itemID, err := parseID(c.Param("id"), "id")
	if err != nil {
		writeError(c, handlerLogger, err, "")
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlerLogger.Warnf("Failed to bind request: %v", err)
		writeError(c, handlerLogger, bindingError(err), "")
		return
	}

	cart, err := h.cartService.UpdateItem(c.Request.Context(), userID, itemID, req.Quantity)
	if err != nil {
		writeError(c, handlerLogger, err, "Server error while updating cart item")
		return
	}

	SuccessResponse(c, http.StatusOK, "Cart item updated successfully", cart)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "RemoveItem")
	userID, ok := caller(c, handlerLogger)
	if !ok {
		return
	}

	itemID, err := parseID(c.Param("id"), "id")
	if err != nil {
		writeError(c, handlerLogger, err, "")
		return
	}

	if err := h.cartService.RemoveItem(c.Request.Context(), userID, itemID); err != nil {
		writeError(c, handlerLogger, err, "Server error while removing from cart")
		return
	}

	SuccessResponse(c, http.StatusOK, "Item removed from cart successfully", nil)
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "ClearCart")
	userID, ok := caller(c, handlerLogger)
	if !ok {
		return
	}

	if err := h.cartService.ClearCart(c.Request.Context(), userID); err != nil {
		writeError(c, handlerLogger, err, "Server error while clearing cart")
		return
	}

	SuccessResponse(c, http.StatusOK, "Cart cleared successfully", nil)
}
