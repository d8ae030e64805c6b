package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	apperrors "pcstore/errors"
	"pcstore/logger"
	"pcstore/models"
	repositories "pcstore/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// buildLineItems resolves the requested products into priced,
// immutable line-item snapshots and returns them with the subtotal.
// Prices come from the inventory ledger at this moment and never
// change afterwards.
func (s *OrderService) buildLineItems(ctx context.Context, lines []models.OrderLineRequest) (models.OrderLineItems, decimal.Decimal, error) {
	items := make(models.OrderLineItems, 0, len(lines))
	subtotal := decimal.Zero

	for _, line := range lines {
		switch line.ItemType {
		case models.LineItemComponent:
			item, err := s.componentLineItem(ctx, line)
			if err != nil {
				return nil, decimal.Zero, err
			}
			items = append(items, *item)
			subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		case models.LineItemBuild:
			item, err := s.buildLineItem(ctx, line)
			if err != nil {
				return nil, decimal.Zero, err
			}
			items = append(items, *item)
			subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		default:
			return nil, decimal.Zero, apperrors.Validation(fmt.Sprintf("unknown line item type %s", line.ItemType))
		}
	}

	return items, subtotal, nil
}

func (s *OrderService) componentLineItem(ctx context.Context, line models.OrderLineRequest) (*models.OrderLineItem, error) {
	component, err := s.components.FindByID(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("component %s not found", line.ProductID))
		}
		return nil, err
	}
	if !component.IsActive {
		return nil, apperrors.Conflict(fmt.Sprintf("component %s is not available", component.Name))
	}

	inventory, err := s.inventory.FindByComponentID(ctx, component.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.DataInconsistency(fmt.Sprintf("component %s has no inventory record", component.ID))
		}
		return nil, err
	}

	return &models.OrderLineItem{
		ItemType:    models.LineItemComponent,
		Name:        component.Name,
		Quantity:    line.Quantity,
		UnitPrice:   inventory.Price,
		ComponentID: component.ID,
		Mpn:         component.Mpn,
	}, nil
}

func (s *OrderService) buildLineItem(ctx context.Context, line models.OrderLineRequest) (*models.OrderLineItem, error) {
	build, err := s.builds.FindByID(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("build %s not found", line.ProductID))
		}
		return nil, err
	}

	refs := buildComponentRefs(build)
	if len(refs) == 0 {
		return nil, apperrors.Validation(fmt.Sprintf("build %s has no parts", build.Name))
	}

	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ComponentID)
	}

	components, err := s.components.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	componentByID := make(map[string]*models.Component, len(components))
	for i := range components {
		componentByID[components[i].ID] = &components[i]
	}

	inventories, err := s.inventory.FindByComponentIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	priceByID := make(map[string]decimal.Decimal, len(inventories))
	for _, inv := range inventories {
		priceByID[inv.ComponentID] = inv.Price
	}

	contained := make([]models.OrderItemSnapshot, 0, len(refs))
	unitPrice := decimal.Zero
	for _, ref := range refs {
		component, ok := componentByID[ref.ComponentID]
		if !ok {
			return nil, apperrors.DataInconsistency(fmt.Sprintf(
				"build %s references missing component %s", build.ID, ref.ComponentID))
		}
		if !component.IsActive {
			return nil, apperrors.Conflict(fmt.Sprintf(
				"component %s in build %s is not available", component.Name, build.Name))
		}
		price, ok := priceByID[ref.ComponentID]
		if !ok {
			return nil, apperrors.DataInconsistency(fmt.Sprintf(
				"component %s has no inventory record", ref.ComponentID))
		}

		contained = append(contained, models.OrderItemSnapshot{
			ComponentID: component.ID,
			Name:        component.Name,
			Mpn:         component.Mpn,
			Quantity:    ref.Quantity,
			ImageURL:    component.ImageURL,
			UnitPrice:   price,
		})
		unitPrice = unitPrice.Add(price.Mul(decimal.NewFromInt(int64(ref.Quantity))))
	}

	return &models.OrderLineItem{
		ItemType:       models.LineItemBuild,
		Name:           build.Name,
		Quantity:       line.Quantity,
		UnitPrice:      unitPrice,
		BuildID:        build.ID,
		ContainedItems: contained,
	}, nil
}

// buildComponentRefs flattens a build into component references with
// quantities, single-instance slots counting once.
func buildComponentRefs(build *models.ComputerBuild) []models.PartRef {
	var refs []models.PartRef
	for _, id := range []string{build.CpuID, build.MotherboardID, build.PsuID, build.CaseID, build.CoolerID} {
		if id != "" {
			refs = append(refs, models.PartRef{ComponentID: id, Quantity: 1})
		}
	}
	for _, list := range []models.PartRefs{build.RamKits, build.Gpus, build.StorageDrives} {
		refs = append(refs, list...)
	}
	return refs
}

// stockRequirements totals how many units of each component the order
// consumes. Build lines multiply contained quantities by the line
// quantity.
func stockRequirements(items models.OrderLineItems) map[string]int {
	required := make(map[string]int)
	for _, item := range items {
		switch item.ItemType {
		case models.LineItemComponent:
			required[item.ComponentID] += item.Quantity
		case models.LineItemBuild:
			for _, contained := range item.ContainedItems {
				required[contained.ComponentID] += contained.Quantity * item.Quantity
			}
		}
	}
	return required
}

// ensureStockAvailable is the read-only availability check at order
// creation. It does not reserve anything; the capture-time decrement
// is the authoritative guard.
func (s *OrderService) ensureStockAvailable(ctx context.Context, required map[string]int) error {
	for _, componentID := range sortedKeys(required) {
		inventory, err := s.inventory.FindByComponentID(ctx, componentID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperrors.DataInconsistency(fmt.Sprintf(
					"component %s has no inventory record", componentID))
			}
			return err
		}
		if inventory.Quantity < required[componentID] {
			return apperrors.Conflict(fmt.Sprintf(
				"insufficient stock for component %s: need %d, have %d",
				componentID, required[componentID], inventory.Quantity))
		}
	}
	return nil
}

// applyStockDelta adjusts every component by sign×quantity. If any
// adjustment fails the already-applied ones are compensated in reverse
// so the action leaves no partial effect.
func (s *OrderService) applyStockDelta(ctx context.Context, required map[string]int, sign int) error {
	applied := make([]string, 0, len(required))

	for _, componentID := range sortedKeys(required) {
		delta := sign * required[componentID]
		newQuantity, err := s.inventory.AdjustQuantity(ctx, componentID, delta)
		if err != nil {
			s.rollbackStock(ctx, required, applied, sign)
			if errors.Is(err, repositories.ErrInsufficientStock) {
				return apperrors.Conflict(fmt.Sprintf(
					"insufficient stock for component %s", componentID))
			}
			if errors.Is(err, repositories.ErrNotFound) {
				return apperrors.DataInconsistency(fmt.Sprintf(
					"component %s has no inventory record", componentID))
			}
			return err
		}
		applied = append(applied, componentID)
		s.syncComponentActivation(ctx, componentID, newQuantity)
	}

	return nil
}

func (s *OrderService) rollbackStock(ctx context.Context, required map[string]int, applied []string, sign int) {
	for i := len(applied) - 1; i >= 0; i-- {
		componentID := applied[i]
		if _, err := s.inventory.AdjustQuantity(ctx, componentID, -sign*required[componentID]); err != nil {
			logger.Error(ctx, "failed to roll back stock adjustment", err,
				zap.String("component_id", componentID))
		}
	}
}

// syncComponentActivation hides a component from the storefront when
// it sells out and brings it back when stock returns. Best effort, the
// triggering action does not fail on it.
func (s *OrderService) syncComponentActivation(ctx context.Context, componentID string, quantity int) {
	var err error
	if quantity == 0 {
		err = s.components.SetActive(ctx, componentID, false)
	} else {
		err = s.components.SetActive(ctx, componentID, true)
	}
	if err != nil {
		logger.Error(ctx, "failed to sync component activation", err,
			zap.String("component_id", componentID))
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// publishEvent emits a lifecycle event. Best effort: a broker outage
// never fails the state change that already committed.
func (s *OrderService) publishEvent(ctx context.Context, order *models.Order, eventType string) {
	if s.events == nil {
		return
	}
	evt := models.OrderEvent{
		OrderID:       order.ID,
		UserID:        order.UserID,
		EventType:     eventType,
		OrderStatus:   order.OrderStatus,
		PaymentStatus: order.PaymentStatus,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.events.PublishOrderEvent(ctx, evt); err != nil {
		logger.Error(ctx, "failed to publish order event", err,
			zap.String("order_id", order.ID), zap.String("event_type", eventType))
	}
}

// objectKeyFromURL derives the S3 object key from a stored file URL so
// a replacement can delete the old object.
func objectKeyFromURL(fileURL string) string {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Path, "/")
}
