package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	apperrors "pcstore/errors"
	"pcstore/models"
	repositories "pcstore/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// ---- in-memory fakes ----

type fakeOrderRepo struct {
	orders map[string]models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]models.Order)}
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id string) (*models.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := order
	return &copied, nil
}

func (r *fakeOrderRepo) FindByIDAndUserID(_ context.Context, id, userID string) (*models.Order, error) {
	order, ok := r.orders[id]
	if !ok || order.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	copied := order
	return &copied, nil
}

func (r *fakeOrderRepo) FindByUserID(_ context.Context, userID string, _, _ int) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) FindAll(_ context.Context, status models.OrderStatus, _, _ int) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range r.orders {
		if status == "" || o.OrderStatus == status {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) Create(_ context.Context, order *models.Order) error {
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) Update(_ context.Context, order *models.Order) error {
	if _, ok := r.orders[order.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) CountByStatus(_ context.Context) ([]repositories.StatusCount, error) {
	counts := make(map[models.OrderStatus]int64)
	for _, o := range r.orders {
		counts[o.OrderStatus]++
	}
	out := make([]repositories.StatusCount, 0, len(counts))
	for status, n := range counts {
		out = append(out, repositories.StatusCount{OrderStatus: status, Count: n})
	}
	return out, nil
}

func (r *fakeOrderRepo) TotalRevenue(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, o := range r.orders {
		if o.PaymentStatus == models.PaymentCompleted || o.PaymentStatus == models.PaymentRefunded {
			total = total.Add(o.TotalAmount)
		}
	}
	return total, nil
}

func (r *fakeOrderRepo) FindRecent(_ context.Context, limit int) ([]models.Order, error) {
	var out []models.Order
	for _, o := range r.orders {
		if len(out) == limit {
			break
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *fakeOrderRepo) stored(id string) models.Order {
	return r.orders[id]
}

type fakeComponentRepo struct {
	components map[string]models.Component
	activeSets map[string]bool
}

func newFakeComponentRepo() *fakeComponentRepo {
	return &fakeComponentRepo{
		components: make(map[string]models.Component),
		activeSets: make(map[string]bool),
	}
}

func (r *fakeComponentRepo) add(c models.Component) {
	r.components[c.ID] = c
}

func (r *fakeComponentRepo) FindByID(_ context.Context, id string) (*models.Component, error) {
	c, ok := r.components[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := c
	return &copied, nil
}

func (r *fakeComponentRepo) FindByIDs(_ context.Context, ids []string) ([]models.Component, error) {
	var out []models.Component
	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if c, ok := r.components[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeComponentRepo) FindAll(_ context.Context, _ repositories.ComponentFilter, _, _ int) ([]models.Component, int64, error) {
	return nil, 0, nil
}

func (r *fakeComponentRepo) Create(_ context.Context, c *models.Component) error {
	r.components[c.ID] = *c
	return nil
}

func (r *fakeComponentRepo) Update(_ context.Context, c *models.Component) error {
	r.components[c.ID] = *c
	return nil
}

func (r *fakeComponentRepo) Delete(_ context.Context, id string) error {
	delete(r.components, id)
	return nil
}

func (r *fakeComponentRepo) SetActive(_ context.Context, id string, active bool) error {
	c, ok := r.components[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c.IsActive = active
	r.components[id] = c
	r.activeSets[id] = active
	return nil
}

func (r *fakeComponentRepo) CountReferencingLookup(_ context.Context, _ string) (int64, error) {
	return 0, nil
}

type fakeBuildRepo struct {
	builds map[string]models.ComputerBuild
}

func newFakeBuildRepo() *fakeBuildRepo {
	return &fakeBuildRepo{builds: make(map[string]models.ComputerBuild)}
}

func (r *fakeBuildRepo) FindByID(_ context.Context, id string) (*models.ComputerBuild, error) {
	b, ok := r.builds[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := b
	return &copied, nil
}

func (r *fakeBuildRepo) FindByUserID(_ context.Context, userID string, _, _ int) ([]models.ComputerBuild, int64, error) {
	var out []models.ComputerBuild
	for _, b := range r.builds {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBuildRepo) Create(_ context.Context, b *models.ComputerBuild) error {
	r.builds[b.ID] = *b
	return nil
}

func (r *fakeBuildRepo) Update(_ context.Context, b *models.ComputerBuild) error {
	r.builds[b.ID] = *b
	return nil
}

func (r *fakeBuildRepo) Delete(_ context.Context, id string) error {
	delete(r.builds, id)
	return nil
}

func (r *fakeBuildRepo) CountReferencingComponent(_ context.Context, _ string) (int64, error) {
	return 0, nil
}

type fakeInventoryRepo struct {
	rows map[string]models.Inventory
	// adjustErr forces AdjustQuantity to fail for one component, for
	// compensation tests.
	adjustErr map[string]error
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{
		rows:      make(map[string]models.Inventory),
		adjustErr: make(map[string]error),
	}
}

func (r *fakeInventoryRepo) stock(componentID string, quantity int, price string) {
	r.rows[componentID] = models.Inventory{
		ID:          "inv-" + componentID,
		ComponentID: componentID,
		Quantity:    quantity,
		Price:       decimal.RequireFromString(price),
	}
}

func (r *fakeInventoryRepo) FindByComponentID(_ context.Context, componentID string) (*models.Inventory, error) {
	row, ok := r.rows[componentID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := row
	return &copied, nil
}

func (r *fakeInventoryRepo) FindByComponentIDs(_ context.Context, componentIDs []string) ([]models.Inventory, error) {
	var out []models.Inventory
	for _, id := range componentIDs {
		if row, ok := r.rows[id]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) Create(_ context.Context, inv *models.Inventory) error {
	r.rows[inv.ComponentID] = *inv
	return nil
}

func (r *fakeInventoryRepo) UpdatePrice(_ context.Context, componentID string, price decimal.Decimal) error {
	row, ok := r.rows[componentID]
	if !ok {
		return repositories.ErrNotFound
	}
	row.Price = price
	r.rows[componentID] = row
	return nil
}

func (r *fakeInventoryRepo) AdjustQuantity(_ context.Context, componentID string, delta int) (int, error) {
	if err, ok := r.adjustErr[componentID]; ok {
		return 0, err
	}
	row, ok := r.rows[componentID]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	if row.Quantity+delta < 0 {
		return 0, repositories.ErrInsufficientStock
	}
	row.Quantity += delta
	r.rows[componentID] = row
	return row.Quantity, nil
}

func (r *fakeInventoryRepo) DeleteByComponentID(_ context.Context, componentID string) error {
	delete(r.rows, componentID)
	return nil
}

func (r *fakeInventoryRepo) quantity(componentID string) int {
	return r.rows[componentID].Quantity
}

type fakeGateway struct {
	createErr  error
	executeErr error
	refundErr  error

	createCalls  int
	executeCalls int
	refundCalls  []string

	lastAmount decimal.Decimal
}

func (g *fakeGateway) CreatePayment(_ context.Context, orderID string, amount decimal.Decimal, _ string) (*GatewayPayment, error) {
	g.createCalls++
	g.lastAmount = amount
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &GatewayPayment{
		TransactionID: fmt.Sprintf("txn-%s-%d", orderID, g.createCalls),
		ApprovalLink:  "https://paypal.test/approve/" + orderID,
	}, nil
}

func (g *fakeGateway) ExecutePayment(_ context.Context, transactionID string) (*GatewayCapture, error) {
	g.executeCalls++
	if g.executeErr != nil {
		return nil, g.executeErr
	}
	return &GatewayCapture{
		CaptureID:  "cap-" + transactionID,
		PayerID:    "payer-1",
		PayerEmail: "buyer@example.com",
		Status:     "COMPLETED",
	}, nil
}

func (g *fakeGateway) RefundPayment(_ context.Context, captureID string, _ decimal.Decimal, _ string) (string, error) {
	g.refundCalls = append(g.refundCalls, captureID)
	if g.refundErr != nil {
		return "", g.refundErr
	}
	return "refund-" + captureID, nil
}

type fakeFileStorage struct {
	uploads []string
	deletes []string
}

func (f *fakeFileStorage) Upload(_ context.Context, key, _ string, _ io.Reader) (string, error) {
	f.uploads = append(f.uploads, key)
	return "https://files.test/" + key, nil
}

func (f *fakeFileStorage) Delete(_ context.Context, key string) error {
	f.deletes = append(f.deletes, key)
	return nil
}

type fakeEventPublisher struct {
	events []models.OrderEvent
}

func (p *fakeEventPublisher) PublishOrderEvent(_ context.Context, evt models.OrderEvent) error {
	p.events = append(p.events, evt)
	return nil
}

func (p *fakeEventPublisher) Close() error { return nil }

func (p *fakeEventPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

// ---- wiring ----

type orderFixture struct {
	svc        *OrderService
	orders     *fakeOrderRepo
	components *fakeComponentRepo
	builds     *fakeBuildRepo
	inventory  *fakeInventoryRepo
	gateway    *fakeGateway
	files      *fakeFileStorage
	events     *fakeEventPublisher
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:     newFakeOrderRepo(),
		components: newFakeComponentRepo(),
		builds:     newFakeBuildRepo(),
		inventory:  newFakeInventoryRepo(),
		gateway:    &fakeGateway{},
		files:      &fakeFileStorage{},
		events:     &fakeEventPublisher{},
	}
	f.svc = NewOrderService(
		f.orders, f.components, f.builds, f.inventory,
		f.gateway, f.files, f.events,
		decimal.RequireFromString("0.07"), "USD",
	)
	return f
}

// stockComponent registers an active component with stock and a price.
func (f *orderFixture) stockComponent(id, name string, quantity int, price string) {
	f.components.add(models.Component{
		ID: id, Kind: models.KindCpu, Mpn: "MPN-" + id, Name: name, IsActive: true,
	})
	f.inventory.stock(id, quantity, price)
}

// placedOrder seeds an order directly in the given state.
func (f *orderFixture) placedOrder(id string, os models.OrderStatus, ps models.PaymentStatus, payment models.PaymentDetails, items models.OrderLineItems) {
	f.orders.orders[id] = models.Order{
		ID:            id,
		UserID:        "user-1",
		LineItems:     items,
		TotalAmount:   decimal.RequireFromString("214.00"),
		TaxAmount:     decimal.RequireFromString("14.00"),
		Currency:      "USD",
		OrderStatus:   os,
		PaymentStatus: ps,
		Payment:       &payment,
	}
}

func componentLines(componentID string, quantity int) models.OrderLineItems {
	return models.OrderLineItems{{
		ItemType:    models.LineItemComponent,
		Name:        "part",
		Quantity:    quantity,
		UnitPrice:   decimal.RequireFromString("100.00"),
		ComponentID: componentID,
	}}
}

func assertAppError(t *testing.T, err error, code int) {
	t.Helper()
	var appErr *apperrors.Error
	if assert.True(t, errors.As(err, &appErr)) {
		assert.Equal(t, code, appErr.Code)
	}
}

// ---- tests ----

func TestCreateOrder_Paypal(t *testing.T) {
	f := newOrderFixture()
	f.stockComponent("c1", "Ryzen 7", 10, "100.00")

	resp, err := f.svc.CreateOrder(context.Background(), "user-1", models.CreateOrderRequest{
		LineItems:     []models.OrderLineRequest{{ItemType: models.LineItemComponent, ProductID: "c1", Quantity: 2}},
		PaymentMethod: models.MethodPaypal,
		UserAddress:   "1 Main St",
		PhoneNumber:   "555-0100",
		Email:         "buyer@example.com",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.OrderID)
	assert.Contains(t, resp.ApprovalLink, "paypal.test")

	order := f.orders.stored(resp.OrderID)
	assert.Equal(t, models.OrderPendingPayment, order.OrderStatus)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("214.00")))
	assert.True(t, order.TaxAmount.Equal(decimal.RequireFromString("14.00")))
	assert.NotEmpty(t, order.Payment.GatewayTransactionID)
	assert.True(t, f.gateway.lastAmount.Equal(decimal.RequireFromString("214")))

	// Stock is only checked, never decremented, at creation.
	assert.Equal(t, 10, f.inventory.quantity("c1"))
	assert.Equal(t, []string{"ORDER_CREATED"}, f.events.types())
}

func TestCreateOrder_BankTransferSkipsGateway(t *testing.T) {
	f := newOrderFixture()
	f.stockComponent("c1", "Ryzen 7", 5, "100.00")

	resp, err := f.svc.CreateOrder(context.Background(), "user-1", models.CreateOrderRequest{
		LineItems:     []models.OrderLineRequest{{ItemType: models.LineItemComponent, ProductID: "c1", Quantity: 1}},
		PaymentMethod: models.MethodBankTransfer,
		UserAddress:   "1 Main St",
		PhoneNumber:   "555-0100",
		Email:         "buyer@example.com",
	})

	assert.NoError(t, err)
	assert.Empty(t, resp.ApprovalLink)
	assert.Equal(t, 0, f.gateway.createCalls)
}

func TestCreateOrder_BuildLineSnapshotsParts(t *testing.T) {
	f := newOrderFixture()
	f.stockComponent("cpu-1", "Ryzen 7", 5, "300.00")
	f.stockComponent("ram-1", "Fury 32GB", 10, "80.00")
	f.builds.builds["build-1"] = models.ComputerBuild{
		ID: "build-1", UserID: "user-1", Name: "Gaming Rig",
		CpuID:   "cpu-1",
		RamKits: models.PartRefs{{ComponentID: "ram-1", Quantity: 2}},
	}

	resp, err := f.svc.CreateOrder(context.Background(), "user-1", models.CreateOrderRequest{
		LineItems:     []models.OrderLineRequest{{ItemType: models.LineItemBuild, ProductID: "build-1", Quantity: 1}},
		PaymentMethod: models.MethodBankTransfer,
		UserAddress:   "1 Main St",
		PhoneNumber:   "555-0100",
		Email:         "buyer@example.com",
	})

	assert.NoError(t, err)
	order := f.orders.stored(resp.OrderID)
	assert.Len(t, order.LineItems, 1)
	line := order.LineItems[0]
	assert.Equal(t, models.LineItemBuild, line.ItemType)
	assert.Equal(t, "Gaming Rig", line.Name)
	// 300 + 2*80, plus 7% tax on the order
	assert.True(t, line.UnitPrice.Equal(decimal.RequireFromString("460.00")))
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("492.20")))
	assert.Len(t, line.ContainedItems, 2)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	f := newOrderFixture()
	f.stockComponent("c1", "Ryzen 7", 1, "100.00")

	_, err := f.svc.CreateOrder(context.Background(), "user-1", models.CreateOrderRequest{
		LineItems:     []models.OrderLineRequest{{ItemType: models.LineItemComponent, ProductID: "c1", Quantity: 3}},
		PaymentMethod: models.MethodPaypal,
		UserAddress:   "1 Main St",
		PhoneNumber:   "555-0100",
		Email:         "buyer@example.com",
	})

	assertAppError(t, err, http.StatusConflict)
	assert.Empty(t, f.orders.orders)
}

func TestCreateOrder_InactiveComponent(t *testing.T) {
	f := newOrderFixture()
	f.components.add(models.Component{ID: "c1", Kind: models.KindCpu, Mpn: "MPN-c1", Name: "Old CPU", IsActive: false})
	f.inventory.stock("c1", 5, "100.00")

	_, err := f.svc.CreateOrder(context.Background(), "user-1", models.CreateOrderRequest{
		LineItems:     []models.OrderLineRequest{{ItemType: models.LineItemComponent, ProductID: "c1", Quantity: 1}},
		PaymentMethod: models.MethodPaypal,
		UserAddress:   "1 Main St",
		PhoneNumber:   "555-0100",
		Email:         "buyer@example.com",
	})

	assertAppError(t, err, http.StatusConflict)
}

func TestCreateOrder_GatewayFailureKeepsOrder(t *testing.T) {
	f := newOrderFixture()
	f.stockComponent("c1", "Ryzen 7", 10, "100.00")
	f.gateway.createErr = errors.New("paypal down")

	_, err := f.svc.CreateOrder(context.Background(), "user-1", models.CreateOrderRequest{
		LineItems:     []models.OrderLineRequest{{ItemType: models.LineItemComponent, ProductID: "c1", Quantity: 1}},
		PaymentMethod: models.MethodPaypal,
		UserAddress:   "1 Main St",
		PhoneNumber:   "555-0100",
		Email:         "buyer@example.com",
	})

	assert.Error(t, err)
	assert.Len(t, f.orders.orders, 1)
	for _, order := range f.orders.orders {
		assert.Equal(t, models.PaymentFailed, order.PaymentStatus)
	}
}

func TestCapturePayment(t *testing.T) {
	t.Run("decrements stock and completes the payment", func(t *testing.T) {
		f := newOrderFixture()
		f.stockComponent("c1", "Ryzen 7", 5, "100.00")
		f.placedOrder("order-1", models.OrderPendingPayment, models.PaymentPending,
			models.PaymentDetails{Method: models.MethodPaypal, GatewayTransactionID: "txn-1"},
			componentLines("c1", 2))

		order, err := f.svc.CapturePayment(context.Background(), "user-1", "order-1")

		assert.NoError(t, err)
		assert.Equal(t, models.OrderProcessing, order.OrderStatus)
		assert.Equal(t, models.PaymentCompleted, order.PaymentStatus)
		assert.Equal(t, "cap-txn-1", order.Payment.GatewayCaptureID)
		assert.Equal(t, "payer-1", order.Payment.PayerID)
		assert.Equal(t, 3, f.inventory.quantity("c1"))
		assert.Equal(t, []string{"PAYMENT_CAPTURED"}, f.events.types())
	})

	t.Run("second capture is a conflict", func(t *testing.T) {
		f := newOrderFixture()
		f.stockComponent("c1", "Ryzen 7", 5, "100.00")
		f.placedOrder("order-1", models.OrderProcessing, models.PaymentCompleted,
			models.PaymentDetails{Method: models.MethodPaypal, GatewayTransactionID: "txn-1"},
			componentLines("c1", 2))

		_, err := f.svc.CapturePayment(context.Background(), "user-1", "order-1")

		assertAppError(t, err, http.StatusConflict)
		assert.Equal(t, 5, f.inventory.quantity("c1"))
		assert.Equal(t, 0, f.gateway.executeCalls)
	})

	t.Run("oversell race is rejected before charging", func(t *testing.T) {
		f := newOrderFixture()
		f.stockComponent("c1", "Ryzen 7", 1, "100.00")
		f.placedOrder("order-1", models.OrderPendingPayment, models.PaymentPending,
			models.PaymentDetails{Method: models.MethodPaypal, GatewayTransactionID: "txn-1"},
			componentLines("c1", 2))

		_, err := f.svc.CapturePayment(context.Background(), "user-1", "order-1")

		assertAppError(t, err, http.StatusConflict)
		assert.Equal(t, 0, f.gateway.executeCalls)
		assert.Equal(t, 1, f.inventory.quantity("c1"))
	})

	t.Run("gateway failure restores stock and marks failed", func(t *testing.T) {
		f := newOrderFixture()
		f.stockComponent("c1", "Ryzen 7", 5, "100.00")
		f.gateway.executeErr = errors.New("capture declined")
		f.placedOrder("order-1", models.OrderPendingPayment, models.PaymentPending,
			models.PaymentDetails{Method: models.MethodPaypal, GatewayTransactionID: "txn-1"},
			componentLines("c1", 2))

		_, err := f.svc.CapturePayment(context.Background(), "user-1", "order-1")

		assert.Error(t, err)
		assert.Equal(t, 5, f.inventory.quantity("c1"))
		assert.Equal(t, models.PaymentFailed, f.orders.stored("order-1").PaymentStatus)
	})

	t.Run("missing gateway transaction is a conflict", func(t *testing.T) {
		f := newOrderFixture()
		f.stockComponent("c1", "Ryzen 7", 5, "100.00")
		f.placedOrder("order-1", models.OrderPendingPayment, models.PaymentPending,
			models.PaymentDetails{Method: models.MethodPaypal},
			componentLines("c1", 2))

		_, err := f.svc.CapturePayment(context.Background(), "user-1", "order-1")

		assertAppError(t, err, http.StatusConflict)
	})

	t.Run("selling out deactivates the component", func(t *testing.T) {
		f := newOrderFixture()
		f.stockComponent("c1", "Ryzen 7", 2, "100.00")
		f.placedOrder("order-1", models.OrderPendingPayment, models.PaymentPending,
			models.PaymentDetails{Method: models.MethodPaypal, GatewayTransactionID: "txn-1"},
			componentLines("c1", 2))

		_, err := f.svc.CapturePayment(context.Background(), "user-1", "order-1")

		assert.NoError(t, err)
		assert.Equal(t, 0, f.inventory.quantity("c1"))
		active, set := f.components.activeSets["c1"]
		assert.True(t, set)
		assert.False(t, active)
	})

	t.Run("another user's order is not found", func(t *testing.T) {
		f := newOrderFixture()
		f.stockComponent("c1", "Ryzen 7", 5, "100.00")
		f.placedOrder("order-1", models.OrderPendingPayment, models.PaymentPending,
			models.PaymentDetails{Method: models.MethodPaypal, GatewayTransactionID: "txn-1"},
			componentLines("c1", 2))

		_, err := f.svc.CapturePayment(context.Background(), "user-2", "order-1")

		assertAppError(t, err, http.StatusNotFound)
	})
}

func TestPartialStockFailureIsCompensated(t *testing.T) {
	f := newOrderFixture()
	f.stockComponent("a1", "Part A", 5, "50.00")
	f.stockComponent("b1", "Part B", 5, "50.00")
	f.inventory.adjustErr["b1"] = repositories.ErrInsufficientStock
	f.placedOrder("order-1", models.OrderPendingPayment, models.PaymentPending,
		models.PaymentDetails{Method: models.MethodPaypal, GatewayTransactionID: "txn-1"},
		models.OrderLineItems{
			{ItemType: models.LineItemComponent, Name: "Part A", Quantity: 2, UnitPrice: decimal.RequireFromString("50.00"), ComponentID: "a1"},
			{ItemType: models.LineItemComponent, Name: "Part B", Quantity: 2, UnitPrice: decimal.RequireFromString("50.00"), ComponentID: "b1"},
		})

	_, err := f.svc.CapturePayment(context.Background(), "user-1", "order-1")

	assertAppError(t, err, http.StatusConflict)
	// a1 was decremented first and must be rolled back.
	assert.Equal(t, 5, f.inventory.quantity("a1"))
}

func TestSlipFlow(t *testing.T) {
	slip := func() io.Reader { return strings.NewReader("slip-bytes") }

	t.Run("submit uploads and moves to pending approval", func(t *testing.T) {
		f := newOrderFixture()
		f.stockComponent("c1", "Ryzen 7", 5, "100.00")
		f.placedOrder("order-1", models.OrderPendingPayment, models.PaymentPending,
			models.PaymentDetails{Method: models.MethodBankTransfer},
			componentLines("c1", 2))

		order, err := f.svc.SubmitSlip(context.Background(), "user-1", "order-1", "image/png", slip())

		assert.NoError(t, err)
		assert.Equal(t, models.PaymentPendingApproval, order.PaymentStatus)
		assert.Contains(t, order.Payment.SlipURL, "slips/order-1/")
		assert.Len(t, f.files.uploads, 1)
		assert.Empty(t, f.files.deletes)
	})

	t.Run("resubmission replaces the old slip file", func(t *testing.T) {
		f := newOrderFixture()
		f.stockComponent("c1", "Ryzen 7", 5, "100.00")
		f.placedOrder("order-1", models.OrderRejectedSlip, models.PaymentPending,
			models.PaymentDetails{Method: models.MethodBankTransfer, SlipURL: "https://files.test/slips/order-1/old"},
			componentLines("c1", 2))

		_, err := f.svc.SubmitSlip(context.Background(), "user-1", "order-1", "image/png", slip())

		assert.NoError(t, err)
		assert.Equal(t, []string{"slips/order-1/old"}, f.files.deletes)
	})

	t.Run("approval decrements stock", func(t *testing.T) {
		f := newOrderFixture()
		f.stockComponent("c1", "Ryzen 7", 5, "100.00")
		f.placedOrder("order-1", models.OrderPendingPayment, models.PaymentPendingApproval,
			models.PaymentDetails{Method: models.MethodBankTransfer, SlipURL: "https://files.test/slips/order-1/s"},
			componentLines("c1", 2))

		order, err := f.svc.ApproveSlip(context.Background(), "order-1")

		assert.NoError(t, err)
		assert.Equal(t, models.OrderProcessing, order.OrderStatus)
		assert.Equal(t, models.PaymentCompleted, order.PaymentStatus)
		assert.Equal(t, 3, f.inventory.quantity("c1"))
	})

	t.Run("rejection leaves stock alone", func(t *testing.T) {
		f := newOrderFixture()
		f.stockComponent("c1", "Ryzen 7", 5, "100.00")
		f.placedOrder("order-1", models.OrderPendingPayment, models.PaymentPendingApproval,
			models.PaymentDetails{Method: models.MethodBankTransfer},
			componentLines("c1", 2))

		order, err := f.svc.RejectSlip(context.Background(), "order-1")

		assert.NoError(t, err)
		assert.Equal(t, models.OrderRejectedSlip, order.OrderStatus)
		assert.Equal(t, models.PaymentPending, order.PaymentStatus)
		assert.Equal(t, 5, f.inventory.quantity("c1"))
	})

	t.Run("reverting an approval restores stock", func(t *testing.T) {
		f := newOrderFixture()
		f.stockComponent("c1", "Ryzen 7", 3, "100.00")
		f.placedOrder("order-1", models.OrderProcessing, models.PaymentCompleted,
			models.PaymentDetails{Method: models.MethodBankTransfer},
			componentLines("c1", 2))

		order, err := f.svc.RevertApproval(context.Background(), "order-1")

		assert.NoError(t, err)
		assert.Equal(t, models.OrderRejectedSlip, order.OrderStatus)
		assert.Equal(t, models.PaymentPending, order.PaymentStatus)
		assert.Equal(t, 5, f.inventory.quantity("c1"))
	})
}

func TestCancelOrder(t *testing.T) {
	f := newOrderFixture()
	f.stockComponent("c1", "Ryzen 7", 5, "100.00")
	f.placedOrder("order-1", models.OrderPendingPayment, models.PaymentPending,
		models.PaymentDetails{Method: models.MethodPaypal},
		componentLines("c1", 2))

	order, err := f.svc.CancelOrder(context.Background(), "user-1", "order-1")

	assert.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, order.OrderStatus)
	assert.Equal(t, models.PaymentFailed, order.PaymentStatus)
	assert.Equal(t, 5, f.inventory.quantity("c1"))
}

func TestRetryPayment(t *testing.T) {
	f := newOrderFixture()
	f.stockComponent("c1", "Ryzen 7", 5, "100.00")
	f.placedOrder("order-1", models.OrderPendingPayment, models.PaymentFailed,
		models.PaymentDetails{Method: models.MethodPaypal, GatewayTransactionID: "txn-old"},
		componentLines("c1", 2))

	resp, err := f.svc.RetryPayment(context.Background(), "user-1", "order-1")

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.ApprovalLink)
	order := f.orders.stored("order-1")
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.NotEqual(t, "txn-old", order.Payment.GatewayTransactionID)
}

func TestRefundFlow(t *testing.T) {
	t.Run("approving a paypal refund calls the gateway and restores stock", func(t *testing.T) {
		f := newOrderFixture()
		f.stockComponent("c1", "Ryzen 7", 3, "100.00")
		f.placedOrder("order-1", models.OrderRefundRequested, models.PaymentCompleted,
			models.PaymentDetails{Method: models.MethodPaypal, GatewayTransactionID: "txn-1", GatewayCaptureID: "cap-1"},
			componentLines("c1", 2))

		order, err := f.svc.ApproveRefund(context.Background(), "order-1")

		assert.NoError(t, err)
		assert.Equal(t, models.OrderRefunded, order.OrderStatus)
		assert.Equal(t, models.PaymentRefunded, order.PaymentStatus)
		assert.Equal(t, "refund-cap-1", order.Payment.RefundID)
		assert.Equal(t, []string{"cap-1"}, f.gateway.refundCalls)
		assert.Equal(t, 5, f.inventory.quantity("c1"))
	})

	t.Run("bank transfer refund is marked manual without a gateway call", func(t *testing.T) {
		f := newOrderFixture()
		f.stockComponent("c1", "Ryzen 7", 3, "100.00")
		f.placedOrder("order-1", models.OrderRefundRequested, models.PaymentCompleted,
			models.PaymentDetails{Method: models.MethodBankTransfer},
			componentLines("c1", 2))

		order, err := f.svc.ApproveRefund(context.Background(), "order-1")

		assert.NoError(t, err)
		assert.Equal(t, "MANUALLY_REFUNDED", order.Payment.ProviderStatus)
		assert.Empty(t, f.gateway.refundCalls)
		assert.Equal(t, 5, f.inventory.quantity("c1"))
	})

	t.Run("gateway refund failure leaves order and stock untouched", func(t *testing.T) {
		f := newOrderFixture()
		f.stockComponent("c1", "Ryzen 7", 3, "100.00")
		f.gateway.refundErr = errors.New("refund rejected by provider")
		f.placedOrder("order-1", models.OrderRefundRequested, models.PaymentCompleted,
			models.PaymentDetails{Method: models.MethodPaypal, GatewayCaptureID: "cap-1"},
			componentLines("c1", 2))

		_, err := f.svc.ApproveRefund(context.Background(), "order-1")

		assert.Error(t, err)
		assert.Equal(t, 3, f.inventory.quantity("c1"))
		assert.Equal(t, models.OrderRefundRequested, f.orders.stored("order-1").OrderStatus)
	})

	t.Run("paypal order without a capture is a data inconsistency", func(t *testing.T) {
		f := newOrderFixture()
		f.stockComponent("c1", "Ryzen 7", 3, "100.00")
		f.placedOrder("order-1", models.OrderRefundRequested, models.PaymentCompleted,
			models.PaymentDetails{Method: models.MethodPaypal},
			componentLines("c1", 2))

		_, err := f.svc.ApproveRefund(context.Background(), "order-1")

		assertAppError(t, err, http.StatusInternalServerError)
	})

	t.Run("rejecting the request changes nothing else", func(t *testing.T) {
		f := newOrderFixture()
		f.stockComponent("c1", "Ryzen 7", 3, "100.00")
		f.placedOrder("order-1", models.OrderRefundRequested, models.PaymentCompleted,
			models.PaymentDetails{Method: models.MethodPaypal, GatewayCaptureID: "cap-1"},
			componentLines("c1", 2))

		order, err := f.svc.RejectRefund(context.Background(), "order-1")

		assert.NoError(t, err)
		assert.Equal(t, models.OrderRefundRejected, order.OrderStatus)
		assert.Equal(t, models.PaymentCompleted, order.PaymentStatus)
		assert.Empty(t, f.gateway.refundCalls)
		assert.Equal(t, 3, f.inventory.quantity("c1"))
	})

	t.Run("force refund works without a prior request", func(t *testing.T) {
		f := newOrderFixture()
		f.stockComponent("c1", "Ryzen 7", 3, "100.00")
		f.placedOrder("order-1", models.OrderShipped, models.PaymentCompleted,
			models.PaymentDetails{Method: models.MethodPaypal, GatewayCaptureID: "cap-1"},
			componentLines("c1", 2))

		order, err := f.svc.ForceRefund(context.Background(), "order-1")

		assert.NoError(t, err)
		assert.Equal(t, models.OrderRefunded, order.OrderStatus)
		assert.Equal(t, 5, f.inventory.quantity("c1"))
	})
}

func TestRequestRefund(t *testing.T) {
	f := newOrderFixture()
	f.stockComponent("c1", "Ryzen 7", 3, "100.00")
	f.placedOrder("order-1", models.OrderCompleted, models.PaymentCompleted,
		models.PaymentDetails{Method: models.MethodPaypal, GatewayCaptureID: "cap-1"},
		componentLines("c1", 2))

	order, err := f.svc.RequestRefund(context.Background(), "user-1", "order-1")

	assert.NoError(t, err)
	assert.Equal(t, models.OrderRefundRequested, order.OrderStatus)
	// Requesting never touches the payment or stock.
	assert.Equal(t, models.PaymentCompleted, order.PaymentStatus)
	assert.Equal(t, 3, f.inventory.quantity("c1"))
}

func TestShipping(t *testing.T) {
	t.Run("shipping records carrier and timestamp", func(t *testing.T) {
		f := newOrderFixture()
		f.placedOrder("order-1", models.OrderProcessing, models.PaymentCompleted,
			models.PaymentDetails{Method: models.MethodPaypal}, nil)

		order, err := f.svc.ShipOrder(context.Background(), "order-1", models.ShipOrderRequest{
			Carrier: "DHL", TrackingNumber: "DHL-123",
		})

		assert.NoError(t, err)
		assert.Equal(t, models.OrderShipped, order.OrderStatus)
		assert.Equal(t, "DHL", order.Shipping.Carrier)
		assert.False(t, order.Shipping.ShippedAt.IsZero())
	})

	t.Run("updating shipping keeps the original timestamp", func(t *testing.T) {
		f := newOrderFixture()
		f.placedOrder("order-1", models.OrderProcessing, models.PaymentCompleted,
			models.PaymentDetails{Method: models.MethodPaypal}, nil)

		shipped, err := f.svc.ShipOrder(context.Background(), "order-1", models.ShipOrderRequest{
			Carrier: "DHL", TrackingNumber: "DHL-123",
		})
		assert.NoError(t, err)

		updated, err := f.svc.UpdateShipping(context.Background(), "order-1", models.UpdateShippingRequest{
			Carrier: "UPS", TrackingNumber: "UPS-456",
		})

		assert.NoError(t, err)
		assert.Equal(t, "UPS", updated.Shipping.Carrier)
		assert.Equal(t, "UPS-456", updated.Shipping.TrackingNumber)
		assert.Equal(t, shipped.Shipping.ShippedAt, updated.Shipping.ShippedAt)
	})
}

func TestOverrideStatus(t *testing.T) {
	f := newOrderFixture()
	f.placedOrder("order-1", models.OrderShipped, models.PaymentCompleted,
		models.PaymentDetails{Method: models.MethodPaypal}, nil)

	order, err := f.svc.OverrideStatus(context.Background(), "order-1", models.OrderDeliveryFailed)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderDeliveryFailed, order.OrderStatus)

	_, err = f.svc.OverrideStatus(context.Background(), "order-1", models.OrderRefunded)
	assertAppError(t, err, http.StatusConflict)
}

func TestValidNextStatuses(t *testing.T) {
	f := newOrderFixture()

	targets := f.svc.ValidNextStatuses(&models.Order{OrderStatus: models.OrderReturnedToSender})
	assert.Equal(t, []models.OrderStatus{models.OrderProcessing}, targets)

	targets = f.svc.ValidNextStatuses(&models.Order{OrderStatus: models.OrderRefunded})
	assert.Empty(t, targets)
}
