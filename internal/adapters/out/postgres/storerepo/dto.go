// Package storerepo reads store configuration and the upsell catalog. Stores are managed by
// another service; the only write made here is the order sequence increment.
package storerepo

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type StoreDTO struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrganizationID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Name                string    `gorm:"size:255;not null"`
	OrderSeriesPrefix   string    `gorm:"size:16"`
	OrderSequence       int64     `gorm:"not null;default:0"`
	DuplicateWindowDays int       `gorm:"not null;default:14"`
	UpsellOfferMinutes  int       `gorm:"not null;default:0"`
	Currency            string    `gorm:"size:3"`
	AdPixelID           string    `gorm:"size:64"`
	AdAccessToken       string    `gorm:"size:512"`
	AdEventSourceURL    string    `gorm:"size:512"`
	AdTestEventCode     string    `gorm:"size:64"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (StoreDTO) TableName() string {
	return "stores"
}

type UpsellOfferDTO struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey"`
	StoreID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title    string          `gorm:"size:255;not null"`
	Price    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantity int             `gorm:"not null;default:1"`
	Type     string          `gorm:"size:16;not null"`
	Active   bool            `gorm:"not null;default:true"`
}

func (UpsellOfferDTO) TableName() string {
	return "upsell_offers"
}

func storeToDomain(dto StoreDTO) (store.Store, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return store.Store{}, err
	}
	organizationID, err := kernel.UUIDFromBytes(dto.OrganizationID[:])
	if err != nil {
		return store.Store{}, err
	}

	return store.Store{
		ID:                  id,
		OrganizationID:      organizationID,
		Name:                dto.Name,
		OrderSeriesPrefix:   dto.OrderSeriesPrefix,
		DuplicateWindowDays: dto.DuplicateWindowDays,
		UpsellOfferMinutes:  dto.UpsellOfferMinutes,
		Currency:            dto.Currency,
		AdTracking: store.AdTracking{
			PixelID:        dto.AdPixelID,
			AccessToken:    dto.AdAccessToken,
			EventSourceURL: dto.AdEventSourceURL,
			TestEventCode:  dto.AdTestEventCode,
		},
	}, nil
}

func upsellOfferToDomain(dto UpsellOfferDTO) (store.UpsellOffer, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return store.UpsellOffer{}, err
	}
	storeID, err := kernel.UUIDFromBytes(dto.StoreID[:])
	if err != nil {
		return store.UpsellOffer{}, err
	}

	return store.UpsellOffer{
		ID:       id,
		StoreID:  storeID,
		Title:    dto.Title,
		Price:    dto.Price,
		Quantity: dto.Quantity,
		Type:     order.UpsellType(dto.Type),
		Active:   dto.Active,
	}, nil
}
