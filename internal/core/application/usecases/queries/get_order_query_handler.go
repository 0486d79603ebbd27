package queries

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GetOrderQueryHandler reads a single order. An order of another organization is reported
// as forbidden rather than missing.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// orderRow mirrors the columns of the orders table.
type orderRow struct {
	ID                  uuid.UUID
	OrganizationID      uuid.UUID
	StoreID             uuid.UUID
	CustomerID          uuid.UUID
	OrderNumber         string
	OfferCode           string
	ItemProductName     string
	ItemSKU             string `gorm:"column:item_sku"`
	ItemQuantity        int
	Upsells             datatypes.JSONSlice[UpsellView]
	Subtotal            decimal.Decimal
	ShippingCost        decimal.Decimal
	Total               decimal.Decimal
	DeliveryFullName    string
	DeliveryPhone       string
	DeliveryCounty      string
	DeliveryCity        string
	DeliveryAddress     string
	DeliveryPostalCode  string
	Status              string
	HoldFromStatus      *string
	CancelledFromStatus *string
	CancelledNote       string
	CancellerName       string
	OrderNote           string
	HelpshipOrderID     *string `gorm:"column:helpship_order_id"`
	QueueExpiresAt      *time.Time
	ScheduledDate       *time.Time
	PromotedFromTesting bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderView, error) {
	if err := query.Validate(); err != nil {
		return OrderView{}, err
	}

	var row orderRow
	err := h.db.WithContext(ctx).Table("orders").
		Where("id = ?", query.OrderID().Bytes()).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderView{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
		}
		return OrderView{}, err
	}

	if row.OrganizationID != query.OrganizationID().Bytes() {
		return OrderView{}, errs.ErrForbidden
	}

	return row.toView()
}

func (r orderRow) toView() (OrderView, error) {
	ids := make([]kernel.UUID, 0, 4)
	for _, raw := range []uuid.UUID{r.ID, r.OrganizationID, r.StoreID, r.CustomerID} {
		id, err := kernel.UUIDFromBytes(raw[:])
		if err != nil {
			return OrderView{}, err
		}
		ids = append(ids, id)
	}

	upsells := make([]UpsellView, 0, len(r.Upsells))
	upsells = append(upsells, r.Upsells...)

	return OrderView{
		ID:             ids[0],
		OrganizationID: ids[1],
		StoreID:        ids[2],
		CustomerID:     ids[3],
		OrderNumber:    r.OrderNumber,
		OfferCode:      r.OfferCode,
		ProductName:    r.ItemProductName,
		SKU:            r.ItemSKU,
		Quantity:       r.ItemQuantity,
		Upsells:        upsells,
		Subtotal:       r.Subtotal,
		ShippingCost:   r.ShippingCost,
		Total:          r.Total,
		Delivery: DeliveryView{
			FullName:   r.DeliveryFullName,
			Phone:      r.DeliveryPhone,
			County:     r.DeliveryCounty,
			City:       r.DeliveryCity,
			Address:    r.DeliveryAddress,
			PostalCode: r.DeliveryPostalCode,
		},
		Status:              r.Status,
		HoldFromStatus:      r.HoldFromStatus,
		CancelledFromStatus: r.CancelledFromStatus,
		CancelledNote:       r.CancelledNote,
		CancellerName:       r.CancellerName,
		OrderNote:           r.OrderNote,
		HelpshipOrderID:     r.HelpshipOrderID,
		QueueExpiresAt:      r.QueueExpiresAt,
		ScheduledDate:       r.ScheduledDate,
		PromotedFromTesting: r.PromotedFromTesting,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}, nil
}
