package customerrepo

import (
	"context"
	"errors"

	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCustomerRepository implements CustomerRepository using GORM.
type GormCustomerRepository struct {
	db *gorm.DB
}

func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) Add(ctx context.Context, aggregate *customer.Customer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

func (r *GormCustomerRepository) Update(ctx context.Context, aggregate *customer.Customer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&CustomerDTO{}).
		Where("id = ?", dto.ID).
		Select("full_name", "total_orders", "total_spent", "first_order_date", "last_order_date", "updated_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("customer", aggregate.ID().String())
	}
	return nil
}

func (r *GormCustomerRepository) GetByPhoneForUpdate(
	ctx context.Context,
	organizationID kernel.UUID,
	phone kernel.Phone,
) (*customer.Customer, error) {
	if err := organizationID.Validate(); err != nil {
		return nil, err
	}
	if phone.IsZero() {
		return nil, errs.NewValueIsRequiredError("phone")
	}

	var dto CustomerDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&dto, "organization_id = ? AND phone = ?", organizationID.Bytes(), phone.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("customer", phone.String())
		}
		return nil, err
	}

	return toDomain(dto)
}
