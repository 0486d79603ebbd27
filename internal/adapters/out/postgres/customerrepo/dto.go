package customerrepo

import (
	"time"

	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerDTO represents the database structure for persisting customer aggregates.
type CustomerDTO struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_customers_org_phone,priority:1"`
	Phone          string          `gorm:"size:16;not null;uniqueIndex:idx_customers_org_phone,priority:2"`
	FullName       string          `gorm:"size:255"`
	TotalOrders    int             `gorm:"not null;default:0"`
	TotalSpent     decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	FirstOrderDate *time.Time
	LastOrderDate  *time.Time
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

func (CustomerDTO) TableName() string {
	return "customers"
}

func fromDomain(c *customer.Customer) CustomerDTO {
	return CustomerDTO{
		ID:             c.ID().Bytes(),
		OrganizationID: c.OrganizationID().Bytes(),
		Phone:          c.Phone().String(),
		FullName:       c.FullName(),
		TotalOrders:    c.TotalOrders(),
		TotalSpent:     c.TotalSpent(),
		FirstOrderDate: c.FirstOrderDate(),
		LastOrderDate:  c.LastOrderDate(),
	}
}

func toDomain(dto CustomerDTO) (*customer.Customer, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	organizationID, err := kernel.UUIDFromBytes(dto.OrganizationID[:])
	if err != nil {
		return nil, err
	}
	phone, err := kernel.NewPhone(dto.Phone)
	if err != nil {
		return nil, err
	}

	return customer.RestoreCustomer(
		id,
		organizationID,
		phone,
		dto.FullName,
		dto.TotalOrders,
		dto.TotalSpent,
		dto.FirstOrderDate,
		dto.LastOrderDate,
	)
}
