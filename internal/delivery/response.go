package delivery

import (
	"shop_service/internal/domain"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

type productPage struct {
	CurrentPage   int  `json:"currentPage"`
	TotalPages    int  `json:"totalPages"`
	TotalProducts int  `json:"totalProducts"`
	HasNext       bool `json:"hasNext"`
	HasPrev       bool `json:"hasPrev"`
}

type orderPage struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalOrders int  `json:"totalOrders"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

func newProductPage(p domain.Pagination) productPage {
	return productPage{p.CurrentPage, p.TotalPages, p.Total, p.HasNext, p.HasPrev}
}

func newOrderPage(p domain.Pagination) orderPage {
	return orderPage{p.CurrentPage, p.TotalPages, p.Total, p.HasNext, p.HasPrev}
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func FailResponse(c *gin.Context, statusCode int, message string, fields ...domain.FieldError) {
	c.JSON(statusCode, ErrorResponse{
		Success: false,
		Error:   message,
		Errors:  fields,
	})
}
