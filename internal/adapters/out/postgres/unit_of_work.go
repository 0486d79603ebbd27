// Package postgres provides the GORM-based Unit of Work used by every command.
//
// A unit of work wraps one database transaction. Repositories obtained from it run inside
// that transaction once Begin has been called, and outside of it otherwise. Orders added or
// updated through the order repository are tracked; after a successful Commit the status
// changes they recorded are cleared from the aggregates and handed to the event publisher
// through the task dispatcher, so Commit never waits on the broker.
//
// Usage:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	o, err := uow.OrderRepository().GetForUpdate(ctx, id)
//	if err != nil {
//	    return err
//	}
//	// mutate o
//	if err := uow.OrderRepository().Update(ctx, o); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Rollback after a successful Commit returns gorm.ErrInvalidTransaction and is ignored by
// the deferred call.
package postgres

import (
	"context"

	"orderflow/internal/adapters/out/postgres/customerrepo"
	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/adapters/out/postgres/storerepo"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// trackedAggregate represents an aggregate modified during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate interface{}
}

// GormUnitOfWorkFactory creates UnitOfWork instances using GORM database connections.
// Each business operation gets a fresh unit of work with its own transaction state.
type GormUnitOfWorkFactory struct {
	db         *gorm.DB
	publisher  ports.EventPublisher
	dispatcher ports.TaskDispatcher
	logger     *zap.Logger
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work instances.
// publisher may be nil, in which case committed status changes are only cleared. With a nil
// dispatcher the changes are published inline after the commit.
func NewGormUnitOfWorkFactory(
	db *gorm.DB,
	publisher ports.EventPublisher,
	dispatcher ports.TaskDispatcher,
	logger *zap.Logger,
) *GormUnitOfWorkFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormUnitOfWorkFactory{
		db:         db,
		publisher:  publisher,
		dispatcher: dispatcher,
		logger:     logger.With(zap.String("component", "unit_of_work")),
	}
}

// Create produces a new UnitOfWork instance ready for business transaction management.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		publisher:         f.publisher,
		dispatcher:        f.dispatcher,
		logger:            f.logger,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one database transaction and tracks the orders saved through it.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	publisher         ports.EventPublisher
	dispatcher        ports.TaskDispatcher
	logger            *zap.Logger
	trackedAggregates []trackedAggregate
}

// Begin initiates a new database transaction for the unit of work.
// Calling Begin while a transaction is active is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	uow.trackedAggregates = uow.trackedAggregates[:0]
	return nil
}

// Commit makes the transaction permanent and then queues the status changes of the tracked
// orders for publishing. Publishing failures are logged; the commit has already happened.
//
// Returns gorm.ErrInvalidTransaction if no transaction is active.
func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	if err != nil {
		uow.trackedAggregates = uow.trackedAggregates[:0]
		return err
	}

	uow.publishTracked(ctx)
	return nil
}

// Rollback discards all changes made within the current transaction.
//
// Returns gorm.ErrInvalidTransaction if no transaction is active.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

// OrderRepository provides order persistence within the unit of work.
// Orders added or updated through it are tracked for event publishing.
func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) CustomerRepository() ports.CustomerRepository {
	return customerrepo.NewGormCustomerRepository(uow.conn())
}

func (uow *GormUnitOfWork) StoreRepository() ports.StoreRepository {
	return storerepo.NewGormStoreRepository(uow.conn())
}

// TrackAggregate registers an aggregate as modified within this unit of work.
// An aggregate saved twice is tracked once.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate interface{}) {
	for _, tracked := range uow.trackedAggregates {
		if tracked.ID.IsEqual(id) {
			return
		}
	}
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

func (uow *GormUnitOfWork) publishTracked(ctx context.Context) {
	tracked := uow.trackedAggregates
	uow.trackedAggregates = make([]trackedAggregate, 0)

	var events []order.StatusChanged
	for _, t := range tracked {
		o, ok := t.Aggregate.(*order.Order)
		if !ok {
			continue
		}
		events = append(events, o.DomainEvents()...)
		o.ClearDomainEvents()
	}

	if len(events) == 0 || uow.publisher == nil {
		return
	}

	if uow.dispatcher == nil {
		uow.publish(ctx, events)
		return
	}
	if err := uow.dispatcher.Submit("publish status changes", func(ctx context.Context) error {
		uow.publish(ctx, events)
		return nil
	}); err != nil {
		uow.logger.Warn("status changes were not queued for publishing",
			zap.Int("events", len(events)),
			zap.Error(err),
		)
	}
}

func (uow *GormUnitOfWork) publish(ctx context.Context, events []order.StatusChanged) {
	if err := uow.publisher.PublishStatusChanges(ctx, events); err != nil {
		uow.logger.Warn("failed to publish status changes",
			zap.Int("events", len(events)),
			zap.Error(err),
		)
	}
}
