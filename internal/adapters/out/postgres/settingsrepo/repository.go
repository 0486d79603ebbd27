// Package settingsrepo reads the per organization fulfillment credentials.
package settingsrepo

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FulfillmentSettingsDTO struct {
	OrganizationID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Environment    string    `gorm:"size:16;not null;default:development"`
	ClientID       string    `gorm:"size:255;not null"`
	ClientSecret   string    `gorm:"size:512;not null"`
	UpdatedAt      time.Time
}

func (FulfillmentSettingsDTO) TableName() string {
	return "fulfillment_settings"
}

// GormFulfillmentSettingsRepository implements FulfillmentSettingsRepository using GORM.
type GormFulfillmentSettingsRepository struct {
	db *gorm.DB
}

func NewGormFulfillmentSettingsRepository(db *gorm.DB) *GormFulfillmentSettingsRepository {
	return &GormFulfillmentSettingsRepository{db: db}
}

func (r *GormFulfillmentSettingsRepository) Get(ctx context.Context, organizationID kernel.UUID) (ports.FulfillmentSettings, error) {
	if err := organizationID.Validate(); err != nil {
		return ports.FulfillmentSettings{}, err
	}

	var dto FulfillmentSettingsDTO
	if err := r.db.WithContext(ctx).First(&dto, "organization_id = ?", organizationID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.FulfillmentSettings{}, errs.NewObjectNotFoundError("fulfillment settings", organizationID.String())
		}
		return ports.FulfillmentSettings{}, err
	}

	environment := ports.FulfillmentEnvironment(dto.Environment)
	if environment != ports.FulfillmentProduction {
		environment = ports.FulfillmentDevelopment
	}

	return ports.FulfillmentSettings{
		OrganizationID: organizationID,
		Environment:    environment,
		ClientID:       dto.ClientID,
		ClientSecret:   dto.ClientSecret,
	}, nil
}
