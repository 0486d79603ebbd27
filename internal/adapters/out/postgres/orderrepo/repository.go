package orderrepo

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker collects the orders saved through a unit of work so that their status
// changes can be published after commit.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes every column, so cleared fields (hold bookkeeping, notes) are persisted too.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(ctx, r.db.WithContext(ctx), id)
}

func (r *GormOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}), id)
}

func (r *GormOrderRepository) get(_ context.Context, db *gorm.DB, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormOrderRepository) FindExpiredQueued(ctx context.Context, now time.Time, limit int) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Where("status = ? AND queue_expires_at < ?", order.Queue.String(), now).
		Order("queue_expires_at").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

func (r *GormOrderRepository) FindScheduledDue(ctx context.Context, day time.Time, limit int) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_date <= ?", order.Scheduled.String(), day.Format(time.DateOnly)).
		Order("scheduled_date, created_at").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

func (r *GormOrderRepository) FindRecentByPhone(
	ctx context.Context,
	organizationID kernel.UUID,
	phone kernel.Phone,
	since time.Time,
	excludeID *kernel.UUID,
) ([]*order.Order, error) {
	query := r.db.WithContext(ctx).
		Where("organization_id = ? AND delivery_phone = ? AND created_at >= ?",
			organizationID.Bytes(), phone.String(), since)
	if excludeID != nil {
		query = query.Where("id <> ?", excludeID.Bytes())
	}

	var dtos []OrderDTO
	if err := query.Order("created_at DESC").Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

func toDomainSlice(dtos []OrderDTO) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
