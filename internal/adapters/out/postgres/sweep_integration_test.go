package postgres_test

import (
	"context"
	"sync"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/store"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/clock"

	"go.uber.org/zap"
)

type countingGateway struct {
	mu      sync.Mutex
	creates int
}

func (g *countingGateway) ForOrganization(context.Context, kernel.UUID) (ports.FulfillmentGateway, error) {
	return g, nil
}

func (g *countingGateway) CreateOrder(context.Context, *order.Order) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.creates++
	return "HS-1001", nil
}

func (g *countingGateway) createCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.creates
}

func (g *countingGateway) GetStatus(context.Context, string) (ports.RemoteStatus, error) {
	return ports.RemotePending, nil
}

func (g *countingGateway) UpdateOrder(context.Context, string, *order.Order) error { return nil }
func (g *countingGateway) SetHold(context.Context, string, string) error         { return nil }
func (g *countingGateway) SetUnhold(context.Context, string) error               { return nil }
func (g *countingGateway) Cancel(context.Context, string, string) error          { return nil }
func (g *countingGateway) Uncancel(context.Context, string) error                { return nil }

type countingNotifier struct {
	mu    sync.Mutex
	calls int
}

func (n *countingNotifier) NotifyPurchase(context.Context, store.Store, *order.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	return nil
}

type syncDispatcher struct{}

func (syncDispatcher) Submit(_ string, task func(ctx context.Context) error) error {
	return task(context.Background())
}

type orderUoWFactory struct{ factory ports.UnitOfWorkFactory }

func (f orderUoWFactory) Create() commands.OrderUoW { return f.factory.Create() }

type uowFactory struct{ factory ports.UnitOfWorkFactory }

func (f uowFactory) Create() commands.UoW { return f.factory.Create() }

func (suite *UnitOfWorkIntegrationTestSuite) TestExpireQueuedOrders_ConcurrentSweepsFinalizeOnce() {
	ctx := context.Background()

	c := suite.newCustomer()
	suite.Require().NoError(suite.factory.Create().CustomerRepository().Add(ctx, c))

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	number, err := uow.StoreRepository().NextOrderNumber(ctx, suite.storeID())
	suite.Require().NoError(err)
	o := suite.newOrder(number, c.ID())
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.Commit(ctx))
	suite.publisher.events = nil

	gateway := &countingGateway{}
	notifier := &countingNotifier{}
	now := clock.NewFixed(time.Now().UTC().Add(time.Hour))
	syncer := commands.NewSyncCoordinator(orderUoWFactory{suite.factory}, gateway, notifier, syncDispatcher{}, now, zap.NewNop())
	finalizer := commands.NewFinalizeOrderCommandHandler(uowFactory{suite.factory}, syncer, now)
	handler := commands.NewExpireQueuedOrdersCommandHandler(orderUoWFactory{suite.factory}, finalizer, nil, 0, now, zap.NewNop())

	cmd, err := commands.NewExpireQueuedOrdersCommand(0)
	suite.Require().NoError(err)

	var wg sync.WaitGroup
	summaries := make([]commands.SweepSummary, 2)
	sweepErrs := make([]error, 2)
	for i := range summaries {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			summaries[i], sweepErrs[i] = handler.Handle(ctx, cmd)
		}(i)
	}
	wg.Wait()

	for i := range summaries {
		suite.Require().NoError(sweepErrs[i])
		suite.Zero(summaries[i].Failed, "a sweep losing the race finds the order already finalized")
	}
	suite.GreaterOrEqual(summaries[0].Success+summaries[1].Success, 1)

	stored, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Pending, stored.Status())
	suite.Equal("HS-1001", stored.HelpshipOrderID())

	events := suite.publisher.published()
	suite.Require().Len(events, 1)
	suite.Equal(order.Queue, events[0].From)
	suite.Equal(order.Pending, events[0].To)

	suite.Equal(1, gateway.createCalls())
	suite.Equal(1, notifier.calls)

	reloaded, err := suite.factory.Create().CustomerRepository().GetByPhoneForUpdate(ctx, c.OrganizationID(), c.Phone())
	suite.Require().NoError(err)
	suite.Equal(1, reloaded.TotalOrders())
}
