package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// RemoteStatus is the order status reported by the fulfillment system.
type RemoteStatus string

const (
	RemotePending   RemoteStatus = "pending"
	RemoteOnHold    RemoteStatus = "on_hold"
	RemoteArchived  RemoteStatus = "archived"
	RemoteShipped   RemoteStatus = "shipped"
	RemoteDelivered RemoteStatus = "delivered"
)

// FulfillmentGateway talks to the fulfillment system on behalf of one organization.
// Every method except CreateOrder is idempotent: a call that finds the remote order
// already in the requested state succeeds without changing it.
type FulfillmentGateway interface {
	// CreateOrder creates the remote order and returns its id.
	CreateOrder(ctx context.Context, o *order.Order) (string, error)
	GetStatus(ctx context.Context, externalID string) (RemoteStatus, error)
	UpdateOrder(ctx context.Context, externalID string, o *order.Order) error
	SetHold(ctx context.Context, externalID, note string) error
	SetUnhold(ctx context.Context, externalID string) error
	// Cancel archives the remote order.
	Cancel(ctx context.Context, externalID, note string) error
	// Uncancel restores an archived remote order.
	Uncancel(ctx context.Context, externalID string) error
}

// FulfillmentGatewayFactory resolves the gateway configured for an organization.
type FulfillmentGatewayFactory interface {
	ForOrganization(ctx context.Context, organizationID kernel.UUID) (FulfillmentGateway, error)
}

// FulfillmentEnvironment selects the fulfillment system deployment.
type FulfillmentEnvironment string

const (
	FulfillmentDevelopment FulfillmentEnvironment = "development"
	FulfillmentProduction  FulfillmentEnvironment = "production"
)

// FulfillmentSettings are the per organization credentials for the fulfillment system.
type FulfillmentSettings struct {
	OrganizationID kernel.UUID
	Environment    FulfillmentEnvironment
	ClientID       string
	ClientSecret   string
}

// FulfillmentSettingsRepository reads fulfillment credentials.
type FulfillmentSettingsRepository interface {
	Get(ctx context.Context, organizationID kernel.UUID) (FulfillmentSettings, error)
}
