package postgres

import (
	"orderflow/internal/adapters/out/postgres/customerrepo"
	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/adapters/out/postgres/settingsrepo"
	"orderflow/internal/adapters/out/postgres/storerepo"

	"gorm.io/gorm"
)

// Migrate creates or updates every table owned by the service.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&storerepo.StoreDTO{},
		&storerepo.UpsellOfferDTO{},
		&settingsrepo.FulfillmentSettingsDTO{},
		&customerrepo.CustomerDTO{},
		&orderrepo.OrderDTO{},
	)
}
