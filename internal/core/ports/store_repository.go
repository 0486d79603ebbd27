package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/store"
)

// StoreRepository reads store configuration and advances the order number series.
type StoreRepository interface {
	Get(ctx context.Context, id kernel.UUID) (store.Store, error)

	// NextOrderNumber increments the store sequence and returns the formatted number.
	// It must run inside the transaction that adds the order.
	NextOrderNumber(ctx context.Context, id kernel.UUID) (string, error)
}

// UpsellCatalog reads the upsell offers of a store.
type UpsellCatalog interface {
	Get(ctx context.Context, storeID, upsellID kernel.UUID) (store.UpsellOffer, error)
}
