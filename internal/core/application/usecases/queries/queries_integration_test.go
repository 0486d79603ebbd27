package queries_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/adapters/out/postgres/storerepo"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/clock"
	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type noopTracker struct{}

func (noopTracker) TrackAggregate(kernel.UUID, interface{}) {}

type QueriesIntegrationTestSuite struct {
	suite.Suite
	container      *postgres.PostgresContainer
	db             *gorm.DB
	orderRepo      *orderrepo.GormOrderRepository
	clock          *clock.Fixed
	organizationID kernel.UUID
	storeID        kernel.UUID
}

func (suite *QueriesIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(db))
	suite.orderRepo = orderrepo.NewGormOrderRepository(db, noopTracker{})
}

func (suite *QueriesIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *QueriesIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders, stores").Error)

	suite.clock = clock.NewFixed(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))
	suite.organizationID = kernel.NewUUID()
	suite.storeID = kernel.NewUUID()
	suite.Require().NoError(suite.db.Create(&storerepo.StoreDTO{
		ID:                  suite.storeID.Bytes(),
		OrganizationID:      suite.organizationID.Bytes(),
		Name:                "Jamira",
		OrderSeriesPrefix:   "JMR",
		DuplicateWindowDays: 7,
	}).Error)
}

func (suite *QueriesIntegrationTestSuite) TestGetOrder() {
	ctx := context.Background()
	o := suite.addOrder("JMR-00001", order.Hold, suite.clock.Now(), func(s *order.Snapshot) {
		from := order.Pending
		s.HoldFromStatus = &from
		s.HelpshipOrderID = "HS-1001"
		s.OrderNote = "call after 18"
		upsell, err := order.NewUpsell(kernel.NewUUID(), "Baterii", 2, decimal.RequireFromString("9.50"), order.Presale)
		suite.Require().NoError(err)
		s.Upsells = []order.Upsell{upsell}
	})
	handler := queries.NewGetOrderQueryHandler(suite.db)

	query, err := queries.NewGetOrderQuery(o.ID(), suite.organizationID)
	suite.Require().NoError(err)
	view, err := handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Equal(o.ID(), view.ID)
	suite.Equal("JMR-00001", view.OrderNumber)
	suite.Equal("hold", view.Status)
	suite.Require().NotNil(view.HoldFromStatus)
	suite.Equal("pending", *view.HoldFromStatus)
	suite.Require().NotNil(view.HelpshipOrderID)
	suite.Equal("HS-1001", *view.HelpshipOrderID)
	suite.Equal("LMP-01", view.SKU)
	suite.Equal("0722123456", view.Delivery.Phone)
	suite.Require().Len(view.Upsells, 1)
	suite.Equal("Baterii", view.Upsells[0].Title)
	suite.Equal("100.00", view.Total.StringFixed(2))
}

func (suite *QueriesIntegrationTestSuite) TestGetOrder_OtherOrganization() {
	o := suite.addOrder("JMR-00001", order.Pending, suite.clock.Now())
	handler := queries.NewGetOrderQueryHandler(suite.db)

	query, err := queries.NewGetOrderQuery(o.ID(), kernel.NewUUID())
	suite.Require().NoError(err)
	_, err = handler.Handle(context.Background(), query)

	suite.ErrorIs(err, errs.ErrForbidden)
}

func (suite *QueriesIntegrationTestSuite) TestGetOrder_NotFound() {
	handler := queries.NewGetOrderQueryHandler(suite.db)

	query, err := queries.NewGetOrderQuery(kernel.NewUUID(), suite.organizationID)
	suite.Require().NoError(err)
	_, err = handler.Handle(context.Background(), query)

	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *QueriesIntegrationTestSuite) TestFindDuplicateOrders_UsesStoreWindow() {
	ctx := context.Background()
	now := suite.clock.Now()
	current := suite.addOrder("JMR-00010", order.Pending, now)
	yesterday := suite.addOrder("JMR-00009", order.Confirmed, now.Add(-24*time.Hour))
	lastWeek := suite.addOrder("JMR-00008", order.Cancelled, now.AddDate(0, 0, -6))
	suite.addOrder("JMR-00007", order.Confirmed, now.AddDate(0, 0, -8))
	handler := queries.NewFindDuplicateOrdersQueryHandler(suite.db, suite.clock)

	query, err := queries.NewFindDuplicateOrdersQuery(current.ID(), suite.organizationID)
	suite.Require().NoError(err)
	result, err := handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Equal(7, result.WindowDays)
	suite.Equal("0722123456", result.Phone)
	suite.Require().Len(result.Orders, 2)
	suite.Equal(yesterday.ID(), result.Orders[0].ID)
	suite.Equal(lastWeek.ID(), result.Orders[1].ID)
}

func (suite *QueriesIntegrationTestSuite) TestFindDuplicateOrders_StatusFilter() {
	ctx := context.Background()
	now := suite.clock.Now()
	current := suite.addOrder("JMR-00010", order.Pending, now)
	confirmed := suite.addOrder("JMR-00009", order.Confirmed, now.Add(-time.Hour))
	suite.addOrder("JMR-00008", order.Cancelled, now.Add(-2*time.Hour))
	handler := queries.NewFindDuplicateOrdersQueryHandler(suite.db, suite.clock)

	query, err := queries.NewFindDuplicateOrdersQuery(current.ID(), suite.organizationID, order.Confirmed, order.Pending)
	suite.Require().NoError(err)
	result, err := handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Require().Len(result.Orders, 1)
	suite.Equal(confirmed.ID(), result.Orders[0].ID)
	suite.Equal("confirmed", result.Orders[0].Status)
}

func (suite *QueriesIntegrationTestSuite) TestFindDuplicateOrders_NotFound() {
	handler := queries.NewFindDuplicateOrdersQueryHandler(suite.db, suite.clock)

	query, err := queries.NewFindDuplicateOrdersQuery(kernel.NewUUID(), suite.organizationID)
	suite.Require().NoError(err)
	_, err = handler.Handle(context.Background(), query)

	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *QueriesIntegrationTestSuite) addOrder(
	number string,
	status order.Status,
	createdAt time.Time,
	adjust ...func(s *order.Snapshot),
) *order.Order {
	phone, err := kernel.NewPhone("0722 123 456")
	suite.Require().NoError(err)
	item, err := order.NewLineItem("Lampa de veghe", "LMP-01", 1)
	suite.Require().NoError(err)
	delivery, err := order.NewDelivery("Ion Popescu", phone, "Cluj", "Cluj-Napoca", "Str. Memorandumului 1", "400114")
	suite.Require().NoError(err)

	s := order.Snapshot{
		ID:             kernel.NewUUID(),
		OrganizationID: suite.organizationID,
		StoreID:        suite.storeID,
		CustomerID:     kernel.NewUUID(),
		OrderNumber:    number,
		LineItem:       item,
		Subtotal:       decimal.RequireFromString("100.00"),
		ShippingCost:   decimal.Zero,
		Total:          decimal.RequireFromString("100.00"),
		Delivery:       delivery,
		Status:         status,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
	for _, fn := range adjust {
		fn(&s)
	}
	o, err := order.RestoreOrder(s)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.orderRepo.Add(context.Background(), o))
	return o
}

func TestQueriesIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(QueriesIntegrationTestSuite))
}
