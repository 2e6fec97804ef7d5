package delivery

import (
	"net/http"

	"shop_service/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	orderService OrderService
	log          *logrus.Logger
}

func NewOrderHandler(s OrderService, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: s,
		log:          logger,
	}
}

// RegisterRoutes expects router to be behind the auth middleware.
func (h *OrderHandler) RegisterRoutes(router gin.IRouter) {
	orders := router.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
	}
}

type PageQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

type OrderList struct {
	Orders     []domain.Order `json:"orders"`
	Pagination orderPage      `json:"pagination"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "CreateOrder")
	userID, ok := caller(c, handlerLogger)
	if !ok {
		return
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), userID)
	if err != nil {
		writeError(c, handlerLogger, err, "Server error while creating order")
		return
	}

	SuccessResponse(c, http.StatusCreated, "Order created successfully", order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "ListOrders")
	userID, ok := caller(c, handlerLogger)
	if !ok {
		return
	}

	var q PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, handlerLogger, bindingError(err), "")
		return
	}

	orders, page, err := h.orderService.ListOrders(c.Request.Context(), userID, domain.PageRequest{Page: q.Page, Limit: q.Limit})
	if err != nil {
		writeError(c, handlerLogger, err, "Server error while fetching orders")
		return
	}

	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", OrderList{
		Orders:     orders,
		Pagination: newOrderPage(page),
	})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "GetOrder")
	userID, ok := caller(c, handlerLogger)
	if !ok {
		return
	}

	orderID, err := parseID(c.Param("id"), "id")
	if err != nil {
		writeError(c, handlerLogger, err, "")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		writeError(c, handlerLogger, err, "Server error while fetching order")
		return
	}

	SuccessResponse(c, http.StatusOK, "Order retrieved successfully", order)
}
