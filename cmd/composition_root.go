package cmd

import (
	"context"
	"errors"
	"time"

	httpin "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/out/adtracking"
	"orderflow/internal/adapters/out/eventbus"
	"orderflow/internal/adapters/out/helpship"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/settingsrepo"
	"orderflow/internal/adapters/out/postgres/storerepo"
	"orderflow/internal/adapters/out/redislock"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/ports"
	"orderflow/internal/jobs"
	"orderflow/internal/pkg/clock"
	"orderflow/internal/pkg/workerpool"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	configs  Config
	gormDB   *gorm.DB
	logger   *zap.Logger
	location *time.Location
	clock    ports.Clock

	uowFactory *postgres.GormUnitOfWorkFactory
	pool       *workerpool.Pool
	gateways   *helpship.GatewayFactory
	notifier   *adtracking.Notifier
	publisher  *eventbus.Publisher
	redis      redis.UniversalClient
	locker     ports.SweepLocker
	catalog    ports.UpsellCatalog
	sync       *commands.SyncCoordinator
}

// NewCompositionRoot wires the adapters around gormDB. Kafka publishing and the Redis
// sweep lock are enabled only when their addresses are configured.
func NewCompositionRoot(configs Config, gormDB *gorm.DB, logger *zap.Logger) (*CompositionRoot, error) {
	location, err := configs.Location()
	if err != nil {
		return nil, err
	}
	systemClock := clock.System{Location: location}

	c := &CompositionRoot{
		configs:  configs,
		gormDB:   gormDB,
		logger:   logger,
		location: location,
		clock:    systemClock,
		catalog:  storerepo.NewGormUpsellCatalog(gormDB),
	}

	var publisher ports.EventPublisher
	if len(configs.KafkaBrokers) > 0 {
		c.publisher = eventbus.NewPublisher(configs.KafkaBrokers, configs.KafkaOrderStatusTopic)
		publisher = c.publisher
	}

	if configs.RedisAddr != "" {
		c.redis = redis.NewClient(&redis.Options{
			Addr:     configs.RedisAddr,
			Password: configs.RedisPassword,
		})
		c.locker = redislock.New(c.redis)
	}

	c.pool = workerpool.New(workerpool.Config{
		Workers:     configs.WorkerCount,
		QueueSize:   configs.WorkerQueueSize,
		TaskTimeout: configs.WorkerTaskTimeout,
	}, logger)

	c.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB, publisher, c.pool, logger)

	c.gateways = helpship.NewGatewayFactory(
		settingsrepo.NewGormFulfillmentSettingsRepository(gormDB),
		helpship.Config{
			DevelopmentURL: configs.HelpshipDevelopmentURL,
			ProductionURL:  configs.HelpshipProductionURL,
			TokenPath:      configs.HelpshipTokenPath,
			ClientTTL:      configs.HelpshipClientTTL,
			RequestTimeout: configs.HelpshipRequestTimeout,
			RatePerSecond:  configs.HelpshipRatePerSecond,
			Burst:          configs.HelpshipBurst,
		},
		systemClock,
		logger,
	)

	c.notifier = adtracking.NewNotifier(adtracking.Config{
		GraphURL: configs.AdGraphURL,
		Timeout:  configs.AdRequestTimeout,
	}, systemClock, logger)

	c.sync = commands.NewSyncCoordinator(c.orderUoWFactory(), c.gateways, c.notifier, c.pool, systemClock, logger)

	return c, nil
}

// Start launches the background worker pool.
func (c *CompositionRoot) Start(ctx context.Context) {
	c.pool.Start(ctx)
}

// Close drains the worker pool and releases the broker and Redis connections.
func (c *CompositionRoot) Close(ctx context.Context) error {
	var errList []error
	if err := c.pool.Stop(ctx); err != nil {
		errList = append(errList, err)
	}
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			errList = append(errList, err)
		}
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}

func (c *CompositionRoot) Location() *time.Location {
	return c.location
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.uowFactoryAll(), c.catalog, c.sync, c.clock)
}

func (c *CompositionRoot) CreateConfirmOrderCommandHandler() commands.ConfirmOrderCommandHandler {
	return commands.NewConfirmOrderCommandHandler(c.orderUoWFactory(), c.sync, c.clock)
}

func (c *CompositionRoot) CreateHoldOrderCommandHandler() commands.HoldOrderCommandHandler {
	return commands.NewHoldOrderCommandHandler(c.orderUoWFactory(), c.sync, c.clock, c.logger)
}

func (c *CompositionRoot) CreateUnholdOrderCommandHandler() commands.UnholdOrderCommandHandler {
	return commands.NewUnholdOrderCommandHandler(c.orderUoWFactory(), c.sync, c.clock)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.orderUoWFactory(), c.sync, c.clock)
}

func (c *CompositionRoot) CreateUncancelOrderCommandHandler() commands.UncancelOrderCommandHandler {
	return commands.NewUncancelOrderCommandHandler(c.orderUoWFactory(), c.sync, c.clock)
}

func (c *CompositionRoot) CreateScheduleOrderCommandHandler() commands.ScheduleOrderCommandHandler {
	return commands.NewScheduleOrderCommandHandler(c.orderUoWFactory(), c.sync, c.clock)
}

func (c *CompositionRoot) CreateFinalizeOrderCommandHandler() commands.FinalizeOrderCommandHandler {
	return commands.NewFinalizeOrderCommandHandler(c.uowFactoryAll(), c.sync, c.clock)
}

func (c *CompositionRoot) CreatePromoteOrderCommandHandler() commands.PromoteOrderCommandHandler {
	return commands.NewPromoteOrderCommandHandler(c.uowFactoryAll(), c.sync, c.clock)
}

func (c *CompositionRoot) CreateResyncOrderCommandHandler() commands.ResyncOrderCommandHandler {
	return commands.NewResyncOrderCommandHandler(c.orderUoWFactory(), c.sync)
}

func (c *CompositionRoot) CreateAttachPostsaleUpsellCommandHandler() commands.AttachPostsaleUpsellCommandHandler {
	return commands.NewAttachPostsaleUpsellCommandHandler(c.CreateFinalizeOrderCommandHandler(), c.catalog)
}

func (c *CompositionRoot) CreateExpireQueuedOrdersCommandHandler() commands.ExpireQueuedOrdersCommandHandler {
	return commands.NewExpireQueuedOrdersCommandHandler(
		c.orderUoWFactory(),
		c.CreateFinalizeOrderCommandHandler(),
		c.locker,
		c.configs.SweepLockTTL,
		c.clock,
		c.logger,
	)
}

func (c *CompositionRoot) CreateConfirmScheduledOrdersCommandHandler() commands.ConfirmScheduledOrdersCommandHandler {
	return commands.NewConfirmScheduledOrdersCommandHandler(
		c.orderUoWFactory(),
		c.sync,
		c.locker,
		c.configs.SweepLockTTL,
		c.clock,
		c.logger,
	)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateFindDuplicateOrdersQueryHandler() queries.FindDuplicateOrdersQueryHandler {
	return queries.NewFindDuplicateOrdersQueryHandler(c.gormDB, c.clock)
}

// NewHTTPServer builds the API server with every use case wired in.
func (c *CompositionRoot) NewHTTPServer() *httpin.Server {
	return httpin.NewServer(httpin.Handlers{
		CreateOrder:          c.CreateCreateOrderCommandHandler(),
		ConfirmOrder:         c.CreateConfirmOrderCommandHandler(),
		HoldOrder:            c.CreateHoldOrderCommandHandler(),
		UnholdOrder:          c.CreateUnholdOrderCommandHandler(),
		CancelOrder:          c.CreateCancelOrderCommandHandler(),
		UncancelOrder:        c.CreateUncancelOrderCommandHandler(),
		FinalizeOrder:        c.CreateFinalizeOrderCommandHandler(),
		PromoteOrder:         c.CreatePromoteOrderCommandHandler(),
		ResyncOrder:          c.CreateResyncOrderCommandHandler(),
		ScheduleOrder:        c.CreateScheduleOrderCommandHandler(),
		AttachPostsaleUpsell: c.CreateAttachPostsaleUpsellCommandHandler(),
		ExpireQueuedOrders:   c.CreateExpireQueuedOrdersCommandHandler(),
		ConfirmScheduled:     c.CreateConfirmScheduledOrdersCommandHandler(),
		GetOrder:             c.CreateGetOrderQueryHandler(),
		FindDuplicates:       c.CreateFindDuplicateOrdersQueryHandler(),
	}, c.location, c.logger)
}

// NewJobManager builds the in-process sweep triggers.
func (c *CompositionRoot) NewJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateExpireQueuedOrdersCommandHandler(),
		c.CreateConfirmScheduledOrdersCommandHandler(),
		jobs.Schedules{
			QueueExpiry:      c.configs.QueueExpirySchedule,
			ScheduledConfirm: c.configs.ScheduledConfirmSchedule,
		},
		c.location,
		c.logger,
	)
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) uowFactoryAll() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
