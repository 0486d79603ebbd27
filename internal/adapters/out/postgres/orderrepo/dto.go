// Package orderrepo persists order aggregates. Upsells are stored as a jsonb array on the order
// row; every other attribute has its own column so the sweeps and the duplicate lookup can
// filter in SQL.
package orderrepo

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderDTO represents the database structure for persisting order aggregates.
type OrderDTO struct {
	ID                  uuid.UUID                       `gorm:"type:uuid;primaryKey"`
	OrganizationID      uuid.UUID                       `gorm:"type:uuid;not null;index:idx_orders_org_phone,priority:1"`
	StoreID             uuid.UUID                       `gorm:"type:uuid;not null;uniqueIndex:idx_orders_store_number,priority:1"`
	CustomerID          uuid.UUID                       `gorm:"type:uuid;not null;index"`
	OrderNumber         string                          `gorm:"size:32;not null;uniqueIndex:idx_orders_store_number,priority:2"`
	OfferCode           string                          `gorm:"size:64"`
	LineItem            LineItemDTO                     `gorm:"embedded;embeddedPrefix:item_"`
	Upsells             datatypes.JSONSlice[UpsellDTO] `gorm:"type:jsonb;not null"`
	Subtotal            decimal.Decimal                 `gorm:"type:numeric(12,2);not null"`
	ShippingCost        decimal.Decimal                 `gorm:"type:numeric(12,2);not null"`
	Total               decimal.Decimal                 `gorm:"type:numeric(12,2);not null"`
	Delivery            DeliveryDTO                     `gorm:"embedded;embeddedPrefix:delivery_"`
	Status              string                          `gorm:"size:16;not null;index"`
	HoldFromStatus      *string                         `gorm:"size:16"`
	CancelledFromStatus *string                         `gorm:"size:16"`
	CancelledNote       string                          `gorm:"size:500"`
	CancellerName       string                          `gorm:"size:128"`
	OrderNote           string                          `gorm:"size:64"`
	HelpshipOrderID     *string                         `gorm:"size:64;uniqueIndex"`
	QueueExpiresAt      *time.Time                      `gorm:"index"`
	ScheduledDate       *time.Time                      `gorm:"type:date;index"`
	FromPartialID       *uuid.UUID                      `gorm:"type:uuid"`
	PromotedFromTesting bool                            `gorm:"not null;default:false"`
	CreatedAt           time.Time                       `gorm:"not null;index:idx_orders_org_phone,priority:3"`
	UpdatedAt           time.Time                       `gorm:"not null"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

type LineItemDTO struct {
	ProductName string `gorm:"size:255;not null"`
	SKU         string `gorm:"size:64"`
	Quantity    int    `gorm:"not null"`
}

type DeliveryDTO struct {
	FullName   string `gorm:"size:255;not null"`
	Phone      string `gorm:"size:16;not null;index:idx_orders_org_phone,priority:2"`
	County     string `gorm:"size:64;not null"`
	City       string `gorm:"size:128;not null"`
	Address    string `gorm:"size:512;not null"`
	PostalCode string `gorm:"size:16"`
}

// UpsellDTO is one element of the upsells jsonb array.
type UpsellDTO struct {
	UpsellID string          `json:"upsellId"`
	Title    string          `json:"title"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Type     string          `json:"type"`
}

func fromDomain(o *order.Order) OrderDTO {
	s := o.Snapshot()

	upsells := make(datatypes.JSONSlice[UpsellDTO], 0, len(s.Upsells))
	for _, u := range s.Upsells {
		upsells = append(upsells, UpsellDTO{
			UpsellID: u.UpsellID.String(),
			Title:    u.Title,
			Quantity: u.Quantity,
			Price:    u.Price,
			Type:     string(u.Type),
		})
	}

	var helpshipOrderID *string
	if s.HelpshipOrderID != "" {
		id := s.HelpshipOrderID
		helpshipOrderID = &id
	}

	var fromPartialID *uuid.UUID
	if s.FromPartialID != nil {
		raw := s.FromPartialID.Bytes()
		fromPartialID = &raw
	}

	return OrderDTO{
		ID:             s.ID.Bytes(),
		OrganizationID: s.OrganizationID.Bytes(),
		StoreID:        s.StoreID.Bytes(),
		CustomerID:     s.CustomerID.Bytes(),
		OrderNumber:    s.OrderNumber,
		OfferCode:      s.OfferCode,
		LineItem: LineItemDTO{
			ProductName: s.LineItem.ProductName,
			SKU:         s.LineItem.SKU,
			Quantity:    s.LineItem.Quantity,
		},
		Upsells:      upsells,
		Subtotal:     s.Subtotal,
		ShippingCost: s.ShippingCost,
		Total:        s.Total,
		Delivery: DeliveryDTO{
			FullName:   s.Delivery.FullName,
			Phone:      s.Delivery.Phone.String(),
			County:     s.Delivery.County,
			City:       s.Delivery.City,
			Address:    s.Delivery.Address,
			PostalCode: s.Delivery.PostalCode,
		},
		Status:              s.Status.String(),
		HoldFromStatus:      statusName(s.HoldFromStatus),
		CancelledFromStatus: statusName(s.CancelledFromStatus),
		CancelledNote:       s.CancelledNote,
		CancellerName:       s.CancellerName,
		OrderNote:           s.OrderNote,
		HelpshipOrderID:     helpshipOrderID,
		QueueExpiresAt:      s.QueueExpiresAt,
		ScheduledDate:       s.ScheduledDate,
		FromPartialID:       fromPartialID,
		PromotedFromTesting: s.PromotedFromTesting,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	ids := make([]kernel.UUID, 0, 4)
	for _, raw := range []uuid.UUID{dto.ID, dto.OrganizationID, dto.StoreID, dto.CustomerID} {
		id, err := kernel.UUIDFromBytes(raw[:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	upsells := make([]order.Upsell, 0, len(dto.Upsells))
	for _, u := range dto.Upsells {
		upsellID, err := kernel.UUIDFromString(u.UpsellID)
		if err != nil {
			return nil, err
		}
		upsells = append(upsells, order.Upsell{
			UpsellID: upsellID,
			Title:    u.Title,
			Quantity: u.Quantity,
			Price:    u.Price,
			Type:     order.UpsellType(u.Type),
		})
	}

	phone, err := kernel.NewPhone(dto.Delivery.Phone)
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	holdFrom, err := parseOptionalStatus(dto.HoldFromStatus)
	if err != nil {
		return nil, err
	}
	cancelledFrom, err := parseOptionalStatus(dto.CancelledFromStatus)
	if err != nil {
		return nil, err
	}

	var fromPartialID *kernel.UUID
	if dto.FromPartialID != nil {
		id, idErr := kernel.UUIDFromBytes(dto.FromPartialID[:])
		if idErr != nil {
			return nil, idErr
		}
		fromPartialID = &id
	}

	var helpshipOrderID string
	if dto.HelpshipOrderID != nil {
		helpshipOrderID = *dto.HelpshipOrderID
	}

	return order.RestoreOrder(order.Snapshot{
		ID:             ids[0],
		OrganizationID: ids[1],
		StoreID:        ids[2],
		CustomerID:     ids[3],
		OrderNumber:    dto.OrderNumber,
		OfferCode:      dto.OfferCode,
		LineItem: order.LineItem{
			ProductName: dto.LineItem.ProductName,
			SKU:         dto.LineItem.SKU,
			Quantity:    dto.LineItem.Quantity,
		},
		Upsells:      upsells,
		Subtotal:     dto.Subtotal,
		ShippingCost: dto.ShippingCost,
		Total:        dto.Total,
		Delivery: order.Delivery{
			FullName:   dto.Delivery.FullName,
			Phone:      phone,
			County:     dto.Delivery.County,
			City:       dto.Delivery.City,
			Address:    dto.Delivery.Address,
			PostalCode: dto.Delivery.PostalCode,
		},
		Status:              status,
		HoldFromStatus:      holdFrom,
		CancelledFromStatus: cancelledFrom,
		CancelledNote:       dto.CancelledNote,
		CancellerName:       dto.CancellerName,
		OrderNote:           dto.OrderNote,
		HelpshipOrderID:     helpshipOrderID,
		QueueExpiresAt:      dto.QueueExpiresAt,
		ScheduledDate:       dto.ScheduledDate,
		FromPartialID:       fromPartialID,
		PromotedFromTesting: dto.PromotedFromTesting,
		CreatedAt:           dto.CreatedAt,
		UpdatedAt:           dto.UpdatedAt,
	})
}

func statusName(s *order.Status) *string {
	if s == nil {
		return nil
	}
	name := s.String()
	return &name
}

func parseOptionalStatus(name *string) (*order.Status, error) {
	if name == nil {
		return nil, nil //nolint:nilnil // absent status
	}
	s, err := order.ParseStatus(*name)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
