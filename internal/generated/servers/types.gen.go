package servers

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

const (
	CronBearerScopes         = "cronBearer.Scopes"
	OrganizationHeaderScopes = "organizationHeader.Scopes"
)

// Defines values for OrderStatus.
const (
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusHold      OrderStatus = "hold"
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusQueue     OrderStatus = "queue"
	OrderStatusScheduled OrderStatus = "scheduled"
	OrderStatusSyncError OrderStatus = "sync_error"
	OrderStatusTesting   OrderStatus = "testing"
)

// Defines values for UpsellType.
const (
	Postsale UpsellType = "postsale"
	Presale  UpsellType = "presale"
)

// AttachUpsellRequest defines model for AttachUpsellRequest.
type AttachUpsellRequest struct {
	UpsellId openapi_types.UUID `json:"upsellId"`
}

// CancelOrderRequest defines model for CancelOrderRequest.
type CancelOrderRequest struct {
	CancellerName *string `json:"cancellerName,omitempty"`
	Note          *string `json:"note,omitempty"`
}

// CancelOrderResponse defines model for CancelOrderResponse.
type CancelOrderResponse struct {
	AlreadyCancelled bool  `json:"alreadyCancelled"`
	Order            Order `json:"order"`
	Success          bool  `json:"success"`
}

// ConfirmOrderRequest defines model for ConfirmOrderRequest.
type ConfirmOrderRequest struct {
	Delivery *DeliveryPatch `json:"delivery,omitempty"`
}

// CreateOrderRequest defines model for CreateOrderRequest.
type CreateOrderRequest struct {
	Delivery         Delivery              `json:"delivery"`
	FromPartialId    *openapi_types.UUID   `json:"fromPartialId,omitempty"`
	Id               *openapi_types.UUID   `json:"id,omitempty"`
	OfferCode        *string               `json:"offerCode,omitempty"`
	PresaleUpsellIds *[]openapi_types.UUID `json:"presaleUpsellIds,omitempty"`
	ProductName      string                `json:"productName"`
	Quantity         int                   `json:"quantity"`
	ShippingCost     *Money                `json:"shippingCost,omitempty"`
	Sku              *string               `json:"sku,omitempty"`
	StoreId          openapi_types.UUID    `json:"storeId"`
	Subtotal         Money                 `json:"subtotal"`
	TestMode         *bool                 `json:"testMode,omitempty"`
}

// CreateOrderResponse defines model for CreateOrderResponse.
type CreateOrderResponse struct {
	DuplicateCount int   `json:"duplicateCount"`
	Order          Order `json:"order"`
	Success        bool  `json:"success"`
	SyncFailed     bool  `json:"syncFailed"`
}

// CronError defines model for CronError.
type CronError struct {
	Error   string `json:"error"`
	OrderId string `json:"orderId"`
}

// CronResponse defines model for CronResponse.
type CronResponse struct {
	Message string      `json:"message"`
	Results CronResults `json:"results"`
	Skipped *bool       `json:"skipped,omitempty"`
	Success bool        `json:"success"`
}

// CronResults defines model for CronResults.
type CronResults struct {
	Errors  []CronError `json:"errors"`
	Failed  int         `json:"failed"`
	Success int         `json:"success"`
	Total   int         `json:"total"`
}

// Delivery defines model for Delivery.
type Delivery struct {
	Address    string  `json:"address"`
	City       string  `json:"city"`
	County     string  `json:"county"`
	FullName   string  `json:"fullName"`
	Phone      string  `json:"phone"`
	PostalCode *string `json:"postalCode,omitempty"`
}

// DeliveryPatch defines model for DeliveryPatch.
type DeliveryPatch struct {
	Address    *string `json:"address,omitempty"`
	City       *string `json:"city,omitempty"`
	County     *string `json:"county,omitempty"`
	FullName   *string `json:"fullName,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	PostalCode *string `json:"postalCode,omitempty"`
}

// DuplicateOrder defines model for DuplicateOrder.
type DuplicateOrder struct {
	CreatedAt   time.Time          `json:"createdAt"`
	FullName    string             `json:"fullName"`
	Id          openapi_types.UUID `json:"id"`
	OrderNumber string             `json:"orderNumber"`
	Status      OrderStatus        `json:"status"`
	Total       Money              `json:"total"`
}

// DuplicatesResponse defines model for DuplicatesResponse.
type DuplicatesResponse struct {
	Count      int              `json:"count"`
	Orders     []DuplicateOrder `json:"orders"`
	Phone      string           `json:"phone"`
	WindowDays int              `json:"windowDays"`
}

// Error defines model for Error.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// HoldOrderRequest defines model for HoldOrderRequest.
type HoldOrderRequest struct {
	Note *string `json:"note,omitempty"`
}

// Money defines model for Money.
type Money = string

// Order defines model for Order.
type Order struct {
	CancelledFromStatus *OrderStatus        `json:"cancelledFromStatus,omitempty"`
	CancelledNote       *string             `json:"cancelledNote,omitempty"`
	CancellerName       *string             `json:"cancellerName,omitempty"`
	CreatedAt           time.Time           `json:"createdAt"`
	CustomerId          openapi_types.UUID  `json:"customerId"`
	Delivery            Delivery            `json:"delivery"`
	HelpshipOrderId     *string             `json:"helpshipOrderId,omitempty"`
	HoldFromStatus      *OrderStatus        `json:"holdFromStatus,omitempty"`
	Id                  openapi_types.UUID  `json:"id"`
	OfferCode           *string             `json:"offerCode,omitempty"`
	OrderNote           *string             `json:"orderNote,omitempty"`
	OrderNumber         string              `json:"orderNumber"`
	OrganizationId      openapi_types.UUID  `json:"organizationId"`
	ProductName         string              `json:"productName"`
	PromotedFromTesting bool                `json:"promotedFromTesting"`
	Quantity            int                 `json:"quantity"`
	QueueExpiresAt      *time.Time          `json:"queueExpiresAt,omitempty"`
	ScheduledDate       *openapi_types.Date `json:"scheduledDate,omitempty"`
	ShippingCost        Money               `json:"shippingCost"`
	Sku                 *string             `json:"sku,omitempty"`
	Status              OrderStatus         `json:"status"`
	StoreId             openapi_types.UUID  `json:"storeId"`
	Subtotal            Money               `json:"subtotal"`
	Total               Money               `json:"total"`
	UpdatedAt           time.Time           `json:"updatedAt"`
	Upsells             []Upsell            `json:"upsells"`
}

// OrderStatus defines model for OrderStatus.
type OrderStatus string

// ScheduleOrderRequest defines model for ScheduleOrderRequest.
type ScheduleOrderRequest struct {
	Date openapi_types.Date `json:"date"`
}

// TransitionResponse defines model for TransitionResponse.
type TransitionResponse struct {
	NoOp       bool  `json:"noOp"`
	Order      Order `json:"order"`
	Success    bool  `json:"success"`
	SyncFailed bool  `json:"syncFailed"`
}

// Upsell defines model for Upsell.
type Upsell struct {
	Price    Money              `json:"price"`
	Quantity int                `json:"quantity"`
	Title    string             `json:"title"`
	Type     UpsellType         `json:"type"`
	UpsellId openapi_types.UUID `json:"upsellId"`
}

// UpsellType defines model for UpsellType.
type UpsellType string

// BatchSize defines model for BatchSize.
type BatchSize = int

// OrderId defines model for OrderId.
type OrderId = openapi_types.UUID

// GetOrderDuplicatesParams defines parameters for GetOrderDuplicates.
type GetOrderDuplicatesParams struct {
	Status *[]OrderStatus `form:"status,omitempty" json:"status,omitempty"`
}

// RunQueueExpiryParams defines parameters for RunQueueExpiry.
type RunQueueExpiryParams struct {
	BatchSize *BatchSize `form:"batchSize,omitempty" json:"batchSize,omitempty"`
}

// RunScheduledConfirmParams defines parameters for RunScheduledConfirm.
type RunScheduledConfirmParams struct {
	BatchSize *BatchSize `form:"batchSize,omitempty" json:"batchSize,omitempty"`
}

// CreateOrderJSONRequestBody defines body for CreateOrder for application/json ContentType.
type CreateOrderJSONRequestBody = CreateOrderRequest

// CancelOrderJSONRequestBody defines body for CancelOrder for application/json ContentType.
type CancelOrderJSONRequestBody = CancelOrderRequest

// ConfirmOrderJSONRequestBody defines body for ConfirmOrder for application/json ContentType.
type ConfirmOrderJSONRequestBody = ConfirmOrderRequest

// HoldOrderJSONRequestBody defines body for HoldOrder for application/json ContentType.
type HoldOrderJSONRequestBody = HoldOrderRequest

// ScheduleOrderJSONRequestBody defines body for ScheduleOrder for application/json ContentType.
type ScheduleOrderJSONRequestBody = ScheduleOrderRequest

// AttachPostsaleUpsellJSONRequestBody defines body for AttachPostsaleUpsell for application/json ContentType.
type AttachPostsaleUpsellJSONRequestBody = AttachUpsellRequest
