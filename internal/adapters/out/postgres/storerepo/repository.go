package storerepo

import (
	"context"
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/store"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormStoreRepository implements StoreRepository using GORM.
type GormStoreRepository struct {
	db *gorm.DB
}

func NewGormStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

func (r *GormStoreRepository) Get(ctx context.Context, id kernel.UUID) (store.Store, error) {
	if err := id.Validate(); err != nil {
		return store.Store{}, err
	}

	var dto StoreDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.Store{}, errs.NewObjectNotFoundError("store", id.String())
		}
		return store.Store{}, err
	}

	return storeToDomain(dto)
}

// NextOrderNumber increments the sequence and reads it back. The UPDATE keeps the store row
// locked until the surrounding transaction ends, so concurrent intakes get distinct numbers.
func (r *GormStoreRepository) NextOrderNumber(ctx context.Context, id kernel.UUID) (string, error) {
	if err := id.Validate(); err != nil {
		return "", err
	}

	db := r.db.WithContext(ctx)
	result := db.Model(&StoreDTO{}).
		Where("id = ?", id.Bytes()).
		UpdateColumn("order_sequence", gorm.Expr("order_sequence + 1"))
	if result.Error != nil {
		return "", result.Error
	}

	if result.RowsAffected == 0 {
		return "", errs.NewObjectNotFoundError("store", id.String())
	}

	var dto StoreDTO
	if err := db.Select("order_series_prefix", "order_sequence").First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		return "", err
	}

	return store.FormatOrderNumber(dto.OrderSeriesPrefix, dto.OrderSequence), nil
}

// GormUpsellCatalog implements UpsellCatalog using GORM.
type GormUpsellCatalog struct {
	db *gorm.DB
}

func NewGormUpsellCatalog(db *gorm.DB) *GormUpsellCatalog {
	return &GormUpsellCatalog{db: db}
}

// Get returns the offer only when it belongs to the store.
func (c *GormUpsellCatalog) Get(ctx context.Context, storeID, upsellID kernel.UUID) (store.UpsellOffer, error) {
	if err := errors.Join(storeID.Validate(), upsellID.Validate()); err != nil {
		return store.UpsellOffer{}, err
	}

	var dto UpsellOfferDTO
	err := c.db.WithContext(ctx).
		First(&dto, "id = ? AND store_id = ?", upsellID.Bytes(), storeID.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.UpsellOffer{}, errs.NewObjectNotFoundError("upsell", upsellID.String())
		}
		return store.UpsellOffer{}, err
	}

	return upsellOfferToDomain(dto)
}
