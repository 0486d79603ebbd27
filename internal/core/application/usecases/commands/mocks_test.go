package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/store"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/clock"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindExpiredQueued(ctx context.Context, now time.Time, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindScheduledDue(ctx context.Context, day time.Time, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, day, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindRecentByPhone(
	ctx context.Context,
	organizationID kernel.UUID,
	phone kernel.Phone,
	since time.Time,
	excludeID *kernel.UUID,
) ([]*order.Order, error) {
	args := m.Called(ctx, organizationID, phone, since, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockCustomerRepository struct{ mock.Mock }

func (m *MockCustomerRepository) Add(ctx context.Context, c *customer.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomerRepository) GetByPhoneForUpdate(
	ctx context.Context,
	organizationID kernel.UUID,
	phone kernel.Phone,
) (*customer.Customer, error) {
	args := m.Called(ctx, organizationID, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

type MockStoreRepository struct{ mock.Mock }

func (m *MockStoreRepository) Get(ctx context.Context, id kernel.UUID) (store.Store, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(store.Store), args.Error(1)
}

func (m *MockStoreRepository) NextOrderNumber(ctx context.Context, id kernel.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

type MockUpsellCatalog struct{ mock.Mock }

func (m *MockUpsellCatalog) Get(ctx context.Context, storeID, upsellID kernel.UUID) (store.UpsellOffer, error) {
	args := m.Called(ctx, storeID, upsellID)
	return args.Get(0).(store.UpsellOffer), args.Error(1)
}

// MockUoW serves both the order-only and the cross-aggregate unit of work.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) CustomerRepository() ports.CustomerRepository {
	args := m.Called()
	return args.Get(0).(ports.CustomerRepository)
}

func (m *MockUoW) StoreRepository() ports.StoreRepository {
	args := m.Called()
	return args.Get(0).(ports.StoreRepository)
}

type MockUoWFactory struct{ uow *MockUoW }

func (f MockUoWFactory) Create() commands.UoW {
	return f.uow
}

type MockOrderUoWFactory struct{ uow *MockUoW }

func (f MockOrderUoWFactory) Create() commands.OrderUoW {
	return f.uow
}

type MockGateway struct{ mock.Mock }

func (m *MockGateway) CreateOrder(ctx context.Context, o *order.Order) (string, error) {
	args := m.Called(ctx, o)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) GetStatus(ctx context.Context, externalID string) (ports.RemoteStatus, error) {
	args := m.Called(ctx, externalID)
	return args.Get(0).(ports.RemoteStatus), args.Error(1)
}

func (m *MockGateway) UpdateOrder(ctx context.Context, externalID string, o *order.Order) error {
	args := m.Called(ctx, externalID, o)
	return args.Error(0)
}

func (m *MockGateway) SetHold(ctx context.Context, externalID, note string) error {
	args := m.Called(ctx, externalID, note)
	return args.Error(0)
}

func (m *MockGateway) SetUnhold(ctx context.Context, externalID string) error {
	args := m.Called(ctx, externalID)
	return args.Error(0)
}

func (m *MockGateway) Cancel(ctx context.Context, externalID, note string) error {
	args := m.Called(ctx, externalID, note)
	return args.Error(0)
}

func (m *MockGateway) Uncancel(ctx context.Context, externalID string) error {
	args := m.Called(ctx, externalID)
	return args.Error(0)
}

type MockGatewayFactory struct{ mock.Mock }

func (m *MockGatewayFactory) ForOrganization(ctx context.Context, organizationID kernel.UUID) (ports.FulfillmentGateway, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.FulfillmentGateway), args.Error(1)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) NotifyPurchase(ctx context.Context, s store.Store, o *order.Order) error {
	args := m.Called(ctx, s, o)
	return args.Error(0)
}

type MockSweepLocker struct{ mock.Mock }

func (m *MockSweepLocker) TryLock(
	ctx context.Context,
	name string,
	ttl time.Duration,
) (func(context.Context) error, bool, error) {
	args := m.Called(ctx, name, ttl)
	release, _ := args.Get(0).(func(context.Context) error)
	return release, args.Bool(1), args.Error(2)
}

// inlineDispatcher runs background tasks synchronously so tests can assert on their effects.
type inlineDispatcher struct {
	mu     sync.Mutex
	names  []string
	errors []error
}

func (d *inlineDispatcher) Submit(name string, task func(ctx context.Context) error) error {
	err := task(context.Background())

	d.mu.Lock()
	defer d.mu.Unlock()
	d.names = append(d.names, name)
	if err != nil {
		d.errors = append(d.errors, err)
	}
	return nil
}

// fixture wires a coordinator around mocks. Every unit of work created during a test is
// the same MockUoW.
type fixture struct {
	uow        *MockUoW
	orders     *MockOrderRepository
	customers  *MockCustomerRepository
	stores     *MockStoreRepository
	gateway    *MockGateway
	gateways   *MockGatewayFactory
	notifier   *MockNotifier
	dispatcher *inlineDispatcher
	clock      *clock.Fixed
	sync       *commands.SyncCoordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		uow:        new(MockUoW),
		orders:     new(MockOrderRepository),
		customers:  new(MockCustomerRepository),
		stores:     new(MockStoreRepository),
		gateway:    new(MockGateway),
		gateways:   new(MockGatewayFactory),
		notifier:   new(MockNotifier),
		dispatcher: &inlineDispatcher{},
		clock:      clock.NewFixed(testNow),
	}
	f.uow.On("OrderRepository").Return(f.orders).Maybe()
	f.uow.On("CustomerRepository").Return(f.customers).Maybe()
	f.uow.On("StoreRepository").Return(f.stores).Maybe()
	f.uow.On("Rollback", mock.Anything).Return(nil).Maybe()
	f.sync = commands.NewSyncCoordinator(f.orderUoWFactory(), f.gateways, f.notifier, f.dispatcher, f.clock, zap.NewNop())

	t.Cleanup(func() {
		f.uow.AssertExpectations(t)
		f.orders.AssertExpectations(t)
		f.customers.AssertExpectations(t)
		f.stores.AssertExpectations(t)
		f.gateway.AssertExpectations(t)
		f.gateways.AssertExpectations(t)
		f.notifier.AssertExpectations(t)
	})
	return f
}

func (f *fixture) uowFactory() commands.UoWFactory {
	return MockUoWFactory{uow: f.uow}
}

func (f *fixture) orderUoWFactory() commands.OrderUoWFactory {
	return MockOrderUoWFactory{uow: f.uow}
}

// expectGateway resolves every organization to the mocked gateway.
func (f *fixture) expectGateway() {
	f.gateways.On("ForOrganization", mock.Anything, mock.Anything).Return(f.gateway, nil)
}

// expectTx expects n committed transactions.
func (f *fixture) expectTx(n int) {
	f.uow.On("Begin", mock.Anything).Return(nil).Times(n)
	f.uow.On("Commit", mock.Anything).Return(nil).Times(n)
}

func testPhone(t *testing.T) kernel.Phone {
	t.Helper()
	phone, err := kernel.NewPhone("0722 123 456")
	require.NoError(t, err)
	return phone
}

func testDelivery(t *testing.T) order.Delivery {
	t.Helper()
	d, err := order.NewDelivery("Ion Popescu", testPhone(t), "Cluj", "Cluj-Napoca", "Str. Memorandumului 1", "400114")
	require.NoError(t, err)
	return d
}

func testLineItem(t *testing.T) order.LineItem {
	t.Helper()
	item, err := order.NewLineItem("Lampa de veghe", "LMP-01", 1)
	require.NoError(t, err)
	return item
}

// restoreOrder builds a persisted order of organizationID with status, optionally adjusted.
func restoreOrder(
	t *testing.T,
	organizationID kernel.UUID,
	status order.Status,
	adjust ...func(s *order.Snapshot),
) *order.Order {
	t.Helper()

	s := order.Snapshot{
		ID:             kernel.NewUUID(),
		OrganizationID: organizationID,
		StoreID:        kernel.NewUUID(),
		CustomerID:     kernel.NewUUID(),
		OrderNumber:    "JMR-00042",
		LineItem:       testLineItem(t),
		Subtotal:       decimal.RequireFromString("100.00"),
		ShippingCost:   decimal.Zero,
		Total:          decimal.RequireFromString("100.00"),
		Delivery:       testDelivery(t),
		Status:         status,
		CreatedAt:      testNow.Add(-time.Hour),
		UpdatedAt:      testNow.Add(-time.Hour),
	}
	for _, fn := range adjust {
		fn(&s)
	}

	o, err := order.RestoreOrder(s)
	require.NoError(t, err)
	return o
}

func linked(id string) func(s *order.Snapshot) {
	return func(s *order.Snapshot) {
		s.HelpshipOrderID = id
	}
}

func queuedUntil(expiresAt time.Time) func(s *order.Snapshot) {
	return func(s *order.Snapshot) {
		s.QueueExpiresAt = &expiresAt
	}
}

func testCustomer(t *testing.T, organizationID kernel.UUID) *customer.Customer {
	t.Helper()
	c, err := customer.NewCustomer(kernel.NewUUID(), organizationID, testPhone(t), "Ion Popescu")
	require.NoError(t, err)
	return c
}
