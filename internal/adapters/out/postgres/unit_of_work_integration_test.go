package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	postgres_adapter "orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/settingsrepo"
	"orderflow/internal/adapters/out/postgres/storerepo"
	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []order.StatusChanged
	err    error
}

func (p *recordingPublisher) PublishStatusChanges(_ context.Context, events []order.StatusChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

func (p *recordingPublisher) published() []order.StatusChanged {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]order.StatusChanged(nil), p.events...)
}

// UnitOfWorkIntegrationTestSuite tests the unit of work and the repositories it hands out
// against a real PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	publisher *recordingPublisher
	factory   ports.UnitOfWorkFactory
	store     storerepo.StoreDTO
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30*time.Second)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(db))
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE orders, customers, stores, upsell_offers, fulfillment_settings").Error
	suite.Require().NoError(err)

	suite.publisher = &recordingPublisher{}
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(suite.db, suite.publisher, nil, zap.NewNop())

	suite.store = storerepo.StoreDTO{
		ID:                 kernel.NewUUID().Bytes(),
		OrganizationID:     kernel.NewUUID().Bytes(),
		Name:               "Jamira",
		OrderSeriesPrefix:  "JMR",
		OrderSequence:      41,
		UpsellOfferMinutes: 15,
		AdPixelID:          "1234567890",
		AdAccessToken:      "token",
	}
	suite.Require().NoError(suite.db.Create(&suite.store).Error)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "Begin on an active transaction is a no-op")
	suite.Require().NoError(uow.Commit(ctx))

	suite.ErrorIs(uow.Commit(ctx), gorm.ErrInvalidTransaction)
	suite.ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Rollback(ctx))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_IntakeCommitsAndPublishes() {
	ctx := context.Background()
	storeID := suite.storeID()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	number, err := uow.StoreRepository().NextOrderNumber(ctx, storeID)
	suite.Require().NoError(err)
	suite.Equal("JMR-00042", number)

	c := suite.newCustomer()
	suite.Require().NoError(uow.CustomerRepository().Add(ctx, c))
	o := suite.newOrder(number, c.ID())
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))

	suite.Empty(suite.publisher.published(), "nothing is published before commit")
	suite.Require().NoError(uow.Commit(ctx))

	events := suite.publisher.published()
	suite.Require().Len(events, 1)
	suite.Equal(o.ID(), events[0].OrderID)
	suite.Equal(order.Unknown, events[0].From)
	suite.Equal(order.Queue, events[0].To)
	suite.Empty(o.DomainEvents(), "published events are cleared from the aggregate")

	var count int64
	suite.Require().NoError(suite.db.Table("orders").Count(&count).Error)
	suite.Equal(int64(1), count)

	next, err := suite.factory.Create().StoreRepository().NextOrderNumber(ctx, storeID)
	suite.Require().NoError(err)
	suite.Equal("JMR-00043", next)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RollbackDiscardsWritesAndEvents() {
	ctx := context.Background()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	number, err := uow.StoreRepository().NextOrderNumber(ctx, suite.storeID())
	suite.Require().NoError(err)
	suite.Require().NoError(uow.OrderRepository().Add(ctx, suite.newOrder(number, kernel.NewUUID())))
	suite.Require().NoError(uow.Rollback(ctx))

	var count int64
	suite.Require().NoError(suite.db.Table("orders").Count(&count).Error)
	suite.Zero(count)
	suite.Empty(suite.publisher.published())

	var st storerepo.StoreDTO
	suite.Require().NoError(suite.db.First(&st, "id = ?", suite.store.ID).Error)
	suite.Equal(int64(41), st.OrderSequence, "the sequence increment is rolled back with the order")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransitionPublishesOnce() {
	ctx := context.Background()
	o := suite.addOrder()

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	locked, err := uow.OrderRepository().GetForUpdate(ctx, o.ID())
	suite.Require().NoError(err)
	_, err = locked.Finalize(time.Now(), true)
	suite.Require().NoError(err)
	suite.Require().NoError(uow.OrderRepository().Update(ctx, locked))
	suite.Require().NoError(locked.MarkSynced("HS-1001", time.Now()))
	suite.Require().NoError(uow.OrderRepository().Update(ctx, locked))
	suite.Require().NoError(uow.Commit(ctx))

	events := suite.publisher.published()
	suite.Require().Len(events, 1)
	suite.Equal(order.Queue, events[0].From)
	suite.Equal(order.Pending, events[0].To)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_PublishFailureDoesNotFailCommit() {
	ctx := context.Background()
	suite.publisher.err = errors.New("broker down")

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	number, err := uow.StoreRepository().NextOrderNumber(ctx, suite.storeID())
	suite.Require().NoError(err)
	suite.Require().NoError(uow.OrderRepository().Add(ctx, suite.newOrder(number, kernel.NewUUID())))

	suite.Require().NoError(uow.Commit(ctx))
	suite.Len(suite.publisher.published(), 1)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCustomerRepository_LocksByPhone() {
	ctx := context.Background()
	c := suite.newCustomer()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.CustomerRepository().Add(ctx, c))

	suite.Require().NoError(uow.Begin(ctx))
	loaded, err := uow.CustomerRepository().GetByPhoneForUpdate(ctx, c.OrganizationID(), c.Phone())
	suite.Require().NoError(err)
	suite.Require().NoError(loaded.RecordOrder(decimal.RequireFromString("149.99"), "Ion Popescu", time.Now()))
	suite.Require().NoError(uow.CustomerRepository().Update(ctx, loaded))
	suite.Require().NoError(uow.Commit(ctx))

	reloaded, err := suite.factory.Create().CustomerRepository().GetByPhoneForUpdate(ctx, c.OrganizationID(), c.Phone())
	suite.Require().NoError(err)
	suite.Equal(1, reloaded.TotalOrders())
	suite.Equal("149.99", reloaded.TotalSpent().StringFixed(2))
	suite.NotNil(reloaded.FirstOrderDate())

	otherPhone, err := kernel.NewPhone("0733000000")
	suite.Require().NoError(err)
	_, err = suite.factory.Create().CustomerRepository().GetByPhoneForUpdate(ctx, c.OrganizationID(), otherPhone)
	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCustomerRepository_PhoneIsUniquePerOrganization() {
	ctx := context.Background()
	repo := suite.factory.Create().CustomerRepository()
	suite.Require().NoError(repo.Add(ctx, suite.newCustomer()))

	suite.Error(repo.Add(ctx, suite.newCustomer()))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestStoreRepository_Get() {
	ctx := context.Background()
	repo := suite.factory.Create().StoreRepository()

	st, err := repo.Get(ctx, suite.storeID())
	suite.Require().NoError(err)
	suite.Equal("JMR", st.OrderSeriesPrefix)
	suite.Equal(15*time.Minute, st.OfferWindow())
	suite.True(st.AdTracking.Enabled())

	_, err = repo.Get(ctx, kernel.NewUUID())
	suite.ErrorIs(err, errs.ErrObjectNotFound)

	_, err = repo.NextOrderNumber(ctx, kernel.NewUUID())
	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUpsellCatalog_Get() {
	ctx := context.Background()
	offer := storerepo.UpsellOfferDTO{
		ID:       kernel.NewUUID().Bytes(),
		StoreID:  suite.store.ID,
		Title:    "Garantie extinsa",
		Price:    decimal.RequireFromString("49.99"),
		Quantity: 1,
		Type:     string(order.Postsale),
		Active:   true,
	}
	suite.Require().NoError(suite.db.Create(&offer).Error)
	catalog := storerepo.NewGormUpsellCatalog(suite.db)
	offerID, err := kernel.UUIDFromBytes(offer.ID[:])
	suite.Require().NoError(err)

	found, err := catalog.Get(ctx, suite.storeID(), offerID)
	suite.Require().NoError(err)
	suite.Equal("Garantie extinsa", found.Title)
	suite.Equal(order.Postsale, found.Type)
	suite.True(found.Active)

	_, err = catalog.Get(ctx, kernel.NewUUID(), offerID)
	suite.ErrorIs(err, errs.ErrObjectNotFound, "offers of another store are not visible")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestFulfillmentSettingsRepository_Get() {
	ctx := context.Background()
	organizationID := kernel.NewUUID()
	suite.Require().NoError(suite.db.Create(&settingsrepo.FulfillmentSettingsDTO{
		OrganizationID: organizationID.Bytes(),
		Environment:    "production",
		ClientID:       "client",
		ClientSecret:   "secret",
	}).Error)
	repo := settingsrepo.NewGormFulfillmentSettingsRepository(suite.db)

	settings, err := repo.Get(ctx, organizationID)
	suite.Require().NoError(err)
	suite.Equal(ports.FulfillmentProduction, settings.Environment)
	suite.Equal("client", settings.ClientID)

	_, err = repo.Get(ctx, kernel.NewUUID())
	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) storeID() kernel.UUID {
	id, err := kernel.UUIDFromBytes(suite.store.ID[:])
	suite.Require().NoError(err)
	return id
}

func (suite *UnitOfWorkIntegrationTestSuite) organizationID() kernel.UUID {
	id, err := kernel.UUIDFromBytes(suite.store.OrganizationID[:])
	suite.Require().NoError(err)
	return id
}

func (suite *UnitOfWorkIntegrationTestSuite) phone() kernel.Phone {
	phone, err := kernel.NewPhone("0722 123 456")
	suite.Require().NoError(err)
	return phone
}

func (suite *UnitOfWorkIntegrationTestSuite) newCustomer() *customer.Customer {
	c, err := customer.NewCustomer(kernel.NewUUID(), suite.organizationID(), suite.phone(), "Ion Popescu")
	suite.Require().NoError(err)
	return c
}

func (suite *UnitOfWorkIntegrationTestSuite) newOrder(number string, customerID kernel.UUID) *order.Order {
	item, err := order.NewLineItem("Lampa de veghe", "LMP-01", 1)
	suite.Require().NoError(err)
	delivery, err := order.NewDelivery("Ion Popescu", suite.phone(), "Cluj", "Cluj-Napoca", "Str. Memorandumului 1", "400114")
	suite.Require().NoError(err)

	o, err := order.NewOrder(order.NewOrderParams{
		ID:             kernel.NewUUID(),
		OrganizationID: suite.organizationID(),
		StoreID:        suite.storeID(),
		CustomerID:     customerID,
		OrderNumber:    number,
		LineItem:       item,
		Subtotal:       decimal.RequireFromString("100.00"),
		ShippingCost:   decimal.Zero,
		Delivery:       delivery,
		OfferWindow:    15 * time.Minute,
		Now:            time.Now().UTC(),
	})
	suite.Require().NoError(err)
	return o
}

func (suite *UnitOfWorkIntegrationTestSuite) addOrder() *order.Order {
	ctx := context.Background()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	number, err := uow.StoreRepository().NextOrderNumber(ctx, suite.storeID())
	suite.Require().NoError(err)
	o := suite.newOrder(number, kernel.NewUUID())
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.Commit(ctx))
	suite.publisher.events = nil
	return o
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
