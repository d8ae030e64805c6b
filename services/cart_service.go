package services

import (
	"context"
	"fmt"

	apperrors "pcstore/errors"
	"pcstore/models"
	repositories "pcstore/repository"

	"github.com/google/uuid"
)

// CartService manages the Redis-backed cart. Item prices are display
// snapshots refreshed on every mutation; the authoritative snapshot is
// taken again at checkout when the order is created.
type CartService struct {
	carts  repositories.CartRepository
	orders *OrderService
}

// NewCartService creates a new instance of CartService
func NewCartService(carts repositories.CartRepository, orders *OrderService) *CartService {
	return &CartService{carts: carts, orders: orders}
}

// GetCart returns the user's cart, empty if none exists yet.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	}
	return cart, nil
}

// AddItem puts a component or build in the cart, merging quantities
// when the product is already there. Stock is validated for the
// resulting quantity.
func (s *CartService) AddItem(ctx context.Context, userID string, req models.AddCartItemRequest) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	quantity := req.Quantity
	existing := -1
	for i, item := range cart.Items {
		if item.ProductID == req.ProductID && item.ItemType == req.ItemType {
			quantity += item.Quantity
			existing = i
			break
		}
	}

	item, err := s.priceItem(ctx, req.ItemType, req.ProductID, quantity)
	if err != nil {
		return nil, err
	}

	if existing >= 0 {
		item.CartItemID = cart.Items[existing].CartItemID
		cart.Items[existing] = *item
	} else {
		cart.Items = append(cart.Items, *item)
	}

	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateItem changes the quantity of a cart entry.
func (s *CartService) UpdateItem(ctx context.Context, userID, cartItemID string, quantity int) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i, item := range cart.Items {
		if item.CartItemID != cartItemID {
			continue
		}
		repriced, err := s.priceItem(ctx, item.ItemType, item.ProductID, quantity)
		if err != nil {
			return nil, err
		}
		repriced.CartItemID = item.CartItemID
		cart.Items[i] = *repriced

		if err := s.carts.SaveCart(ctx, cart); err != nil {
			return nil, err
		}
		return cart, nil
	}

	return nil, apperrors.NotFound(fmt.Sprintf("cart item %s not found", cartItemID))
}

// RemoveItem drops one entry from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, cartItemID string) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i, item := range cart.Items {
		if item.CartItemID == cartItemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			if err := s.carts.SaveCart(ctx, cart); err != nil {
				return nil, err
			}
			return cart, nil
		}
	}

	return nil, apperrors.NotFound(fmt.Sprintf("cart item %s not found", cartItemID))
}

// ClearCart empties the cart.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	return s.carts.DeleteCart(ctx, userID)
}

// Checkout converts the cart into an order and clears the cart once
// the order exists.
func (s *CartService) Checkout(ctx context.Context, userID string, req models.CheckoutRequest) (*models.CreateOrderResponse, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, apperrors.Validation("cart is empty")
	}

	lines := make([]models.OrderLineRequest, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, models.OrderLineRequest{
			ItemType:  item.ItemType,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	resp, err := s.orders.CreateOrder(ctx, userID, models.CreateOrderRequest{
		LineItems:     lines,
		PaymentMethod: req.PaymentMethod,
		UserAddress:   req.UserAddress,
		PhoneNumber:   req.PhoneNumber,
		Email:         req.Email,
	})
	if err != nil {
		return nil, err
	}

	if err := s.carts.DeleteCart(ctx, userID); err != nil {
		// The order exists; an undeleted cart is an annoyance, not a
		// failure.
		return resp, nil
	}
	return resp, nil
}

// priceItem resolves the product into a fresh cart entry with current
// price and availability, validating stock for the requested quantity.
func (s *CartService) priceItem(ctx context.Context, itemType models.LineItemType, productID string, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, apperrors.Validation("quantity must be at least 1")
	}

	line := models.OrderLineRequest{ItemType: itemType, ProductID: productID, Quantity: quantity}
	items, _, err := s.orders.buildLineItems(ctx, []models.OrderLineRequest{line})
	if err != nil {
		return nil, err
	}
	snapshot := items[0]

	if err := s.orders.ensureStockAvailable(ctx, stockRequirements(items)); err != nil {
		return nil, err
	}

	item := &models.CartItem{
		CartItemID:     uuid.NewString(),
		ProductID:      productID,
		ItemType:       itemType,
		Name:           snapshot.Name,
		Quantity:       quantity,
		UnitPrice:      snapshot.UnitPrice,
		ContainedItems: snapshot.ContainedItems,
	}
	if itemType == models.LineItemComponent {
		if component, err := s.orders.components.FindByID(ctx, productID); err == nil {
			item.ImageURL = component.ImageURL
		}
	}
	return item, nil
}
