package controllers

import (
	"net/http"

	apperrors "pcstore/errors"
	"pcstore/middleware"
	"pcstore/models"
	"pcstore/services"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orderService *services.OrderService
}

func NewOrderController(orderService *services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// CreateOrder handles order creation requests
func (oc *OrderController) CreateOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	resp, err := oc.orderService.CreateOrder(c.Request.Context(), userID, req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetOrders returns paginated orders for the authenticated user
func (oc *OrderController) GetOrders(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, limit := parsePaginationParams(c)
	orders, total, err := oc.orderService.GetUserOrders(c.Request.Context(), userID, page, limit)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginated(orders, total, page, limit))
}

// GetOrderByID returns a specific order for the authenticated user
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order, err := oc.orderService.GetOrderForUser(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CapturePayment completes an approved gateway payment
func (oc *OrderController) CapturePayment(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order, err := oc.orderService.CapturePayment(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// RetryPayment opens a fresh gateway payment
func (oc *OrderController) RetryPayment(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := oc.orderService.RetryPayment(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitSlip uploads a bank-transfer slip for the order
func (oc *OrderController) SubmitSlip(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	fileHeader, err := c.FormFile("slip")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slip file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read slip file"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	order, err := oc.orderService.SubmitSlip(c.Request.Context(), userID, c.Param("id"), contentType, file)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CancelOrder cancels an unpaid order
func (oc *OrderController) CancelOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order, err := oc.orderService.CancelOrder(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// RequestRefund opens a refund request on a paid order
func (oc *OrderController) RequestRefund(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order, err := oc.orderService.RequestRefund(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
