package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"pcstore/aws"
	apperrors "pcstore/errors"
	"pcstore/kafka"
	"pcstore/logger"
	"pcstore/models"
	repositories "pcstore/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService drives orders through the lifecycle. Every action loads
// the order, consults the transition table, applies the effect and
// persists; a guard violation is a conflict with no side effects.
type OrderService struct {
	orders     repositories.OrderRepository
	components repositories.ComponentRepository
	builds     repositories.BuildRepository
	inventory  repositories.InventoryRepository
	gateway    PaymentGateway
	files      aws.FileStorage
	events     kafka.EventPublisher
	taxRate    decimal.Decimal
	currency   string
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	orders repositories.OrderRepository,
	components repositories.ComponentRepository,
	builds repositories.BuildRepository,
	inventory repositories.InventoryRepository,
	gateway PaymentGateway,
	files aws.FileStorage,
	events kafka.EventPublisher,
	taxRate decimal.Decimal,
	currency string,
) *OrderService {
	return &OrderService{
		orders:     orders,
		components: components,
		builds:     builds,
		inventory:  inventory,
		gateway:    gateway,
		files:      files,
		events:     events,
		taxRate:    taxRate,
		currency:   currency,
	}
}

// CreateOrder snapshots the requested products, validates stock
// availability and opens the order at (PENDING_PAYMENT, PENDING).
// Stock is not decremented yet; that happens at capture or slip
// approval. For PayPal orders a gateway payment is opened and the
// approval link returned.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, req models.CreateOrderRequest) (*models.CreateOrderResponse, error) {
	if req.PaymentMethod != models.MethodPaypal && req.PaymentMethod != models.MethodBankTransfer {
		return nil, apperrors.Validation(fmt.Sprintf("unknown payment method %s", req.PaymentMethod))
	}

	lineItems, subtotal, err := s.buildLineItems(ctx, req.LineItems)
	if err != nil {
		return nil, err
	}
	if err := s.ensureStockAvailable(ctx, stockRequirements(lineItems)); err != nil {
		return nil, err
	}

	tax := subtotal.Mul(s.taxRate).Round(2)
	order := &models.Order{
		ID:            uuid.NewString(),
		UserID:        userID,
		UserAddress:   req.UserAddress,
		PhoneNumber:   req.PhoneNumber,
		Email:         req.Email,
		LineItems:     lineItems,
		TotalAmount:   subtotal.Add(tax),
		TaxAmount:     tax,
		Currency:      s.currency,
		OrderStatus:   models.OrderPendingPayment,
		PaymentStatus: models.PaymentPending,
		Payment:       &models.PaymentDetails{Method: req.PaymentMethod},
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	resp := &models.CreateOrderResponse{OrderID: order.ID}
	if req.PaymentMethod == models.MethodPaypal {
		payment, err := s.gateway.CreatePayment(ctx, order.ID, order.TotalAmount, order.Currency)
		if err != nil {
			// The order stays; the user can retry payment.
			order.PaymentStatus = models.PaymentFailed
			if saveErr := s.orders.Update(ctx, order); saveErr != nil {
				logger.Error(ctx, "failed to mark payment failed", saveErr,
					zap.String("order_id", order.ID))
			}
			return nil, err
		}
		order.Payment.GatewayTransactionID = payment.TransactionID
		if err := s.orders.Update(ctx, order); err != nil {
			return nil, err
		}
		resp.ApprovalLink = payment.ApprovalLink
	}

	s.publishEvent(ctx, order, "ORDER_CREATED")
	return resp, nil
}

// CapturePayment completes an approved gateway payment. Stock is
// decremented before the gateway capture so a racing order that would
// oversell is rejected here without charging anyone; if the gateway
// then fails, the decrement is compensated and the payment marked
// FAILED. A second capture attempt is rejected by the PENDING guard.
func (s *OrderService) CapturePayment(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.loadOwnedOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if err := CanApply(ActionCapturePayment, order); err != nil {
		return nil, err
	}
	if order.Payment.GatewayTransactionID == "" {
		return nil, apperrors.Conflict("order has no gateway payment to capture")
	}

	required := stockRequirements(order.LineItems)
	if err := s.applyStockDelta(ctx, required, -1); err != nil {
		return nil, err
	}

	capture, err := s.gateway.ExecutePayment(ctx, order.Payment.GatewayTransactionID)
	if err != nil {
		s.applyStockDeltaBestEffort(ctx, required, +1)
		order.PaymentStatus = models.PaymentFailed
		if saveErr := s.orders.Update(ctx, order); saveErr != nil {
			logger.Error(ctx, "failed to mark payment failed", saveErr,
				zap.String("order_id", order.ID))
		}
		return nil, err
	}

	order.OrderStatus = models.OrderProcessing
	order.PaymentStatus = models.PaymentCompleted
	order.Payment.GatewayCaptureID = capture.CaptureID
	order.Payment.PayerID = capture.PayerID
	order.Payment.PayerEmail = capture.PayerEmail
	order.Payment.ProviderStatus = capture.Status
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, order, "PAYMENT_CAPTURED")
	return order, nil
}

// SubmitSlip attaches a bank-transfer slip to the order. A previously
// uploaded slip is replaced and its file deleted.
func (s *OrderService) SubmitSlip(ctx context.Context, userID, orderID, contentType string, file io.Reader) (*models.Order, error) {
	order, err := s.loadOwnedOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if err := CanApply(ActionSubmitSlip, order); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("slips/%s/%s", order.ID, uuid.NewString())
	slipURL, err := s.files.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, err
	}

	if order.Payment.SlipURL != "" {
		if oldKey := objectKeyFromURL(order.Payment.SlipURL); oldKey != "" {
			if err := s.files.Delete(ctx, oldKey); err != nil {
				logger.Warn(ctx, "failed to delete replaced slip",
					zap.String("order_id", order.ID), zap.String("key", oldKey), zap.Error(err))
			}
		}
	}

	order.Payment.SlipURL = slipURL
	order.OrderStatus = models.OrderPendingPayment
	order.PaymentStatus = models.PaymentPendingApproval
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, order, "SLIP_SUBMITTED")
	return order, nil
}

// ApproveSlip confirms a bank-transfer payment and decrements stock.
func (s *OrderService) ApproveSlip(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := CanApply(ActionApproveSlip, order); err != nil {
		return nil, err
	}

	if err := s.applyStockDelta(ctx, stockRequirements(order.LineItems), -1); err != nil {
		return nil, err
	}

	order.OrderStatus = models.OrderProcessing
	order.PaymentStatus = models.PaymentCompleted
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, order, "SLIP_APPROVED")
	return order, nil
}

// RejectSlip sends the order back for a new slip. Stock was never
// decremented, so nothing to restore.
func (s *OrderService) RejectSlip(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := CanApply(ActionRejectSlip, order); err != nil {
		return nil, err
	}

	order.OrderStatus = models.OrderRejectedSlip
	order.PaymentStatus = models.PaymentPending
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, order, "SLIP_REJECTED")
	return order, nil
}

// RevertApproval undoes a mistaken slip approval, restoring stock.
func (s *OrderService) RevertApproval(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := CanApply(ActionRevertApproval, order); err != nil {
		return nil, err
	}

	if err := s.applyStockDelta(ctx, stockRequirements(order.LineItems), +1); err != nil {
		return nil, err
	}

	order.OrderStatus = models.OrderRejectedSlip
	order.PaymentStatus = models.PaymentPending
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, order, "APPROVAL_REVERTED")
	return order, nil
}

// CancelOrder lets the user abandon an unpaid order.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.loadOwnedOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if err := CanApply(ActionCancel, order); err != nil {
		return nil, err
	}

	order.OrderStatus = models.OrderCancelled
	order.PaymentStatus = models.PaymentFailed
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, order, "ORDER_CANCELLED")
	return order, nil
}

// RetryPayment opens a fresh gateway payment for an order whose
// previous attempt never completed.
func (s *OrderService) RetryPayment(ctx context.Context, userID, orderID string) (*models.CreateOrderResponse, error) {
	order, err := s.loadOwnedOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if err := CanApply(ActionRetryPayment, order); err != nil {
		return nil, err
	}

	payment, err := s.gateway.CreatePayment(ctx, order.ID, order.TotalAmount, order.Currency)
	if err != nil {
		return nil, err
	}

	order.Payment.GatewayTransactionID = payment.TransactionID
	order.PaymentStatus = models.PaymentPending
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, order, "PAYMENT_RETRIED")
	return &models.CreateOrderResponse{OrderID: order.ID, ApprovalLink: payment.ApprovalLink}, nil
}

// RequestRefund opens a refund request on a paid order.
func (s *OrderService) RequestRefund(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.loadOwnedOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if err := CanApply(ActionRequestRefund, order); err != nil {
		return nil, err
	}

	order.OrderStatus = models.OrderRefundRequested
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, order, "REFUND_REQUESTED")
	return order, nil
}

// ApproveRefund refunds the payment and restores stock.
func (s *OrderService) ApproveRefund(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := CanApply(ActionApproveRefund, order); err != nil {
		return nil, err
	}
	return s.executeRefund(ctx, order, "REFUND_APPROVED")
}

// RejectRefund declines the refund request. No stock or payment change.
func (s *OrderService) RejectRefund(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := CanApply(ActionRejectRefund, order); err != nil {
		return nil, err
	}

	order.OrderStatus = models.OrderRefundRejected
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, order, "REFUND_REJECTED")
	return order, nil
}

// ForceRefund refunds without a user request, for support escalations.
func (s *OrderService) ForceRefund(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := CanApply(ActionForceRefund, order); err != nil {
		return nil, err
	}
	return s.executeRefund(ctx, order, "REFUND_FORCED")
}

// executeRefund dispatches the gateway refund for PayPal orders, marks
// bank transfers as manually refunded, restores stock and settles the
// order at (REFUNDED, REFUNDED). The gateway call runs first so a
// provider failure leaves order and stock untouched.
func (s *OrderService) executeRefund(ctx context.Context, order *models.Order, eventType string) (*models.Order, error) {
	if order.Payment.Method == models.MethodPaypal {
		if order.Payment.GatewayCaptureID == "" {
			return nil, apperrors.DataInconsistency(fmt.Sprintf(
				"order %s has no capture to refund", order.ID))
		}
		refundID, err := s.gateway.RefundPayment(ctx, order.Payment.GatewayCaptureID, order.TotalAmount, order.Currency)
		if err != nil {
			return nil, err
		}
		order.Payment.RefundID = refundID
	} else {
		order.Payment.ProviderStatus = "MANUALLY_REFUNDED"
	}

	if err := s.applyStockDelta(ctx, stockRequirements(order.LineItems), +1); err != nil {
		return nil, err
	}

	order.OrderStatus = models.OrderRefunded
	order.PaymentStatus = models.PaymentRefunded
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, order, eventType)
	return order, nil
}

// ShipOrder records the carrier handoff.
func (s *OrderService) ShipOrder(ctx context.Context, orderID string, req models.ShipOrderRequest) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := CanApply(ActionShip, order); err != nil {
		return nil, err
	}

	order.Shipping = &models.ShippingDetails{
		Carrier:        req.Carrier,
		TrackingNumber: req.TrackingNumber,
		ShippedAt:      time.Now().UTC(),
	}
	order.OrderStatus = models.OrderShipped
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, order, "ORDER_SHIPPED")
	return order, nil
}

// UpdateShipping corrects carrier or tracking details in place. The
// original ship timestamp is kept.
func (s *OrderService) UpdateShipping(ctx context.Context, orderID string, req models.UpdateShippingRequest) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := CanApply(ActionUpdateShipping, order); err != nil {
		return nil, err
	}
	if order.Shipping == nil {
		return nil, apperrors.DataInconsistency(fmt.Sprintf(
			"order %s has no shipping record", order.ID))
	}

	order.Shipping.Carrier = req.Carrier
	order.Shipping.TrackingNumber = req.TrackingNumber
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// OverrideStatus applies a manual fulfillment correction from the
// restricted override table.
func (s *OrderService) OverrideStatus(ctx context.Context, orderID string, target models.OrderStatus) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := CanOverrideStatus(order, target); err != nil {
		return nil, err
	}

	order.OrderStatus = target
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, order, "STATUS_OVERRIDDEN")
	return order, nil
}

// ValidNextStatuses lists the manual override targets for the order's
// current status.
func (s *OrderService) ValidNextStatuses(order *models.Order) []models.OrderStatus {
	targets := manualOverrides[order.OrderStatus]
	out := make([]models.OrderStatus, len(targets))
	copy(out, targets)
	return out
}

// GetUserOrders lists the user's orders, newest first.
func (s *OrderService) GetUserOrders(ctx context.Context, userID string, page, limit int) ([]models.Order, int64, error) {
	return s.orders.FindByUserID(ctx, userID, page, limit)
}

// GetOrderForUser fetches one order with an ownership check.
func (s *OrderService) GetOrderForUser(ctx context.Context, userID, orderID string) (*models.Order, error) {
	return s.loadOwnedOrder(ctx, orderID, userID)
}

// GetOrder fetches any order, for admins.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return s.loadOrder(ctx, orderID)
}

// ListOrders lists all orders, optionally filtered by status.
func (s *OrderService) ListOrders(ctx context.Context, status models.OrderStatus, page, limit int) ([]models.Order, int64, error) {
	return s.orders.FindAll(ctx, status, page, limit)
}

func (s *OrderService) loadOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("order %s not found", orderID))
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) loadOwnedOrder(ctx context.Context, orderID, userID string) (*models.Order, error) {
	order, err := s.orders.FindByIDAndUserID(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("order %s not found", orderID))
		}
		return nil, err
	}
	return order, nil
}

// applyStockDeltaBestEffort compensates a prior adjustment where
// failure can only be logged, e.g. restoring stock after a gateway
// error.
func (s *OrderService) applyStockDeltaBestEffort(ctx context.Context, required map[string]int, sign int) {
	if err := s.applyStockDelta(ctx, required, sign); err != nil {
		logger.Error(ctx, "failed to compensate stock adjustment", err)
	}
}
