package services

import (
	"fmt"

	apperrors "pcstore/errors"
	"pcstore/models"
)

// OrderAction identifies a lifecycle trigger.
type OrderAction string

const (
	ActionCapturePayment OrderAction = "CAPTURE_PAYMENT"
	ActionSubmitSlip     OrderAction = "SUBMIT_SLIP"
	ActionApproveSlip    OrderAction = "APPROVE_SLIP"
	ActionRejectSlip     OrderAction = "REJECT_SLIP"
	ActionRevertApproval OrderAction = "REVERT_APPROVAL"
	ActionCancel         OrderAction = "CANCEL"
	ActionRetryPayment   OrderAction = "RETRY_PAYMENT"
	ActionRequestRefund  OrderAction = "REQUEST_REFUND"
	ActionApproveRefund  OrderAction = "APPROVE_REFUND"
	ActionRejectRefund   OrderAction = "REJECT_REFUND"
	ActionForceRefund    OrderAction = "FORCE_REFUND"
	ActionShip           OrderAction = "SHIP"
	ActionUpdateShipping OrderAction = "UPDATE_SHIPPING"
)

// transitionRule lists the states and payment methods an action is
// allowed from. An empty slice means the dimension is unconstrained.
type transitionRule struct {
	orderStatuses   []models.OrderStatus
	paymentStatuses []models.PaymentStatus
	methods         []models.PaymentMethod
}

// transitionTable is the single source of truth for lifecycle guards.
// Every action not listed here, or attempted from a state outside its
// rule, is a conflict. Effects (stock, gateway calls) live with the
// actions in OrderService; the table only answers "allowed from here?".
var transitionTable = map[OrderAction]transitionRule{
	ActionCapturePayment: {
		paymentStatuses: []models.PaymentStatus{models.PaymentPending},
		methods:         []models.PaymentMethod{models.MethodPaypal},
	},
	ActionSubmitSlip: {
		orderStatuses:   []models.OrderStatus{models.OrderPendingPayment, models.OrderRejectedSlip},
		paymentStatuses: []models.PaymentStatus{models.PaymentPending},
		methods:         []models.PaymentMethod{models.MethodBankTransfer},
	},
	ActionApproveSlip: {
		paymentStatuses: []models.PaymentStatus{models.PaymentPendingApproval},
		methods:         []models.PaymentMethod{models.MethodBankTransfer},
	},
	ActionRejectSlip: {
		paymentStatuses: []models.PaymentStatus{models.PaymentPendingApproval},
		methods:         []models.PaymentMethod{models.MethodBankTransfer},
	},
	ActionRevertApproval: {
		orderStatuses: []models.OrderStatus{models.OrderProcessing},
		methods:       []models.PaymentMethod{models.MethodBankTransfer},
	},
	ActionCancel: {
		orderStatuses:   []models.OrderStatus{models.OrderPendingPayment},
		paymentStatuses: []models.PaymentStatus{models.PaymentPending},
	},
	ActionRetryPayment: {
		paymentStatuses: []models.PaymentStatus{models.PaymentPending, models.PaymentFailed},
		methods:         []models.PaymentMethod{models.MethodPaypal},
	},
	ActionRequestRefund: {
		orderStatuses: []models.OrderStatus{models.OrderProcessing, models.OrderShipped, models.OrderCompleted},
	},
	ActionApproveRefund: {
		orderStatuses: []models.OrderStatus{models.OrderRefundRequested},
	},
	ActionRejectRefund: {
		orderStatuses: []models.OrderStatus{models.OrderRefundRequested},
	},
	ActionForceRefund: {
		orderStatuses: []models.OrderStatus{
			models.OrderProcessing, models.OrderShipped, models.OrderCompleted,
			models.OrderDeliveryFailed, models.OrderReturnedToSender, models.OrderRefundRejected,
		},
	},
	ActionShip: {
		orderStatuses: []models.OrderStatus{models.OrderProcessing, models.OrderReturnedToSender},
	},
	ActionUpdateShipping: {
		orderStatuses: []models.OrderStatus{models.OrderShipped, models.OrderCompleted},
	},
}

// manualOverrides restricts the admin status-override endpoint to
// fulfillment corrections. Everything else must go through its action.
var manualOverrides = map[models.OrderStatus][]models.OrderStatus{
	models.OrderProcessing:       {models.OrderCompleted, models.OrderDeliveryFailed, models.OrderReturnedToSender},
	models.OrderShipped:          {models.OrderCompleted, models.OrderDeliveryFailed, models.OrderReturnedToSender},
	models.OrderDeliveryFailed:   {models.OrderCompleted, models.OrderDeliveryFailed, models.OrderReturnedToSender},
	models.OrderReturnedToSender: {models.OrderProcessing},
	models.OrderRefundRejected:   {models.OrderCompleted, models.OrderProcessing},
}

// CanApply reports whether the action is allowed from the order's
// current state. A violation is a conflict, never a silent no-op.
func CanApply(action OrderAction, order *models.Order) error {
	rule, ok := transitionTable[action]
	if !ok {
		return apperrors.Conflict(fmt.Sprintf("unknown order action %s", action))
	}

	if len(rule.orderStatuses) > 0 && !containsOrderStatus(rule.orderStatuses, order.OrderStatus) {
		return apperrors.Conflict(fmt.Sprintf(
			"action %s is not allowed while the order is %s", action, order.OrderStatus))
	}
	if len(rule.paymentStatuses) > 0 && !containsPaymentStatus(rule.paymentStatuses, order.PaymentStatus) {
		return apperrors.Conflict(fmt.Sprintf(
			"action %s is not allowed while payment is %s", action, order.PaymentStatus))
	}
	if len(rule.methods) > 0 {
		method := models.PaymentMethod("")
		if order.Payment != nil {
			method = order.Payment.Method
		}
		if !containsMethod(rule.methods, method) {
			return apperrors.Conflict(fmt.Sprintf(
				"action %s is not allowed for payment method %s", action, method))
		}
	}
	return nil
}

// CanOverrideStatus reports whether the admin may manually move the
// order from its current status to the target.
func CanOverrideStatus(order *models.Order, target models.OrderStatus) error {
	allowed, ok := manualOverrides[order.OrderStatus]
	if !ok {
		return apperrors.Conflict(fmt.Sprintf(
			"order status %s cannot be overridden manually", order.OrderStatus))
	}
	if !containsOrderStatus(allowed, target) {
		return apperrors.Conflict(fmt.Sprintf(
			"cannot move order from %s to %s manually", order.OrderStatus, target))
	}
	return nil
}

func containsOrderStatus(list []models.OrderStatus, s models.OrderStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsPaymentStatus(list []models.PaymentStatus, s models.PaymentStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsMethod(list []models.PaymentMethod, m models.PaymentMethod) bool {
	for _, v := range list {
		if v == m {
			return true
		}
	}
	return false
}
