package controllers

import (
	"net/http"

	apperrors "pcstore/errors"
	"pcstore/models"
	"pcstore/services"

	"github.com/gin-gonic/gin"
)

// AdminOrderController exposes the admin side of the order lifecycle.
type AdminOrderController struct {
	orderService     *services.OrderService
	dashboardService *services.DashboardService
}

func NewAdminOrderController(orderService *services.OrderService, dashboardService *services.DashboardService) *AdminOrderController {
	return &AdminOrderController{
		orderService:     orderService,
		dashboardService: dashboardService,
	}
}

// GetAllOrders returns paginated orders for all users
func (ac *AdminOrderController) GetAllOrders(c *gin.Context) {
	page, limit := parsePaginationParams(c)
	status := models.OrderStatus(c.Query("status"))

	orders, total, err := ac.orderService.ListOrders(c.Request.Context(), status, page, limit)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginated(orders, total, page, limit))
}

// GetOrder returns any order by id
func (ac *AdminOrderController) GetOrder(c *gin.Context) {
	order, err := ac.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":               order,
		"valid_next_statuses": ac.orderService.ValidNextStatuses(order),
	})
}

// ApproveSlip confirms a bank-transfer payment
func (ac *AdminOrderController) ApproveSlip(c *gin.Context) {
	order, err := ac.orderService.ApproveSlip(c.Request.Context(), c.Param("id"))
	ac.respond(c, order, err)
}

// RejectSlip sends the order back for a new slip
func (ac *AdminOrderController) RejectSlip(c *gin.Context) {
	order, err := ac.orderService.RejectSlip(c.Request.Context(), c.Param("id"))
	ac.respond(c, order, err)
}

// RevertApproval undoes a mistaken slip approval
func (ac *AdminOrderController) RevertApproval(c *gin.Context) {
	order, err := ac.orderService.RevertApproval(c.Request.Context(), c.Param("id"))
	ac.respond(c, order, err)
}

// ApproveRefund refunds the payment and restores stock
func (ac *AdminOrderController) ApproveRefund(c *gin.Context) {
	order, err := ac.orderService.ApproveRefund(c.Request.Context(), c.Param("id"))
	ac.respond(c, order, err)
}

// RejectRefund declines a refund request
func (ac *AdminOrderController) RejectRefund(c *gin.Context) {
	order, err := ac.orderService.RejectRefund(c.Request.Context(), c.Param("id"))
	ac.respond(c, order, err)
}

// ForceRefund refunds without a user request
func (ac *AdminOrderController) ForceRefund(c *gin.Context) {
	order, err := ac.orderService.ForceRefund(c.Request.Context(), c.Param("id"))
	ac.respond(c, order, err)
}

// ShipOrder records the carrier handoff
func (ac *AdminOrderController) ShipOrder(c *gin.Context) {
	var req models.ShipOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	order, err := ac.orderService.ShipOrder(c.Request.Context(), c.Param("id"), req)
	ac.respond(c, order, err)
}

// UpdateShipping corrects carrier or tracking details
func (ac *AdminOrderController) UpdateShipping(c *gin.Context) {
	var req models.UpdateShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	order, err := ac.orderService.UpdateShipping(c.Request.Context(), c.Param("id"), req)
	ac.respond(c, order, err)
}

// OverrideStatus applies a manual fulfillment correction
func (ac *AdminOrderController) OverrideStatus(c *gin.Context) {
	var req models.StatusOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	order, err := ac.orderService.OverrideStatus(c.Request.Context(), c.Param("id"), req.Status)
	ac.respond(c, order, err)
}

// GetDashboard returns the admin overview
func (ac *AdminOrderController) GetDashboard(c *gin.Context) {
	summary, err := ac.dashboardService.Summary(c.Request.Context(), 10, 10)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (ac *AdminOrderController) respond(c *gin.Context, order *models.Order, err error) {
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
