package store

import (
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

const (
	DefaultDuplicateWindowDays = 14
	DefaultCurrency            = "RON"
)

// Store is the storefront configuration read by the order lifecycle. The store itself is
// managed elsewhere; only its order sequence is advanced here.
type Store struct {
	ID                  kernel.UUID
	OrganizationID      kernel.UUID
	Name                string
	OrderSeriesPrefix   string
	DuplicateWindowDays int
	UpsellOfferMinutes  int
	Currency            string
	AdTracking          AdTracking
}

// DuplicateWindow is the trailing window searched for orders with the same phone.
func (s Store) DuplicateWindow() time.Duration {
	days := s.DuplicateWindowDays
	if days <= 0 {
		days = DefaultDuplicateWindowDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// OfferWindow is the post-purchase upsell window. Zero disables the queue.
func (s Store) OfferWindow() time.Duration {
	if s.UpsellOfferMinutes <= 0 {
		return 0
	}
	return time.Duration(s.UpsellOfferMinutes) * time.Minute
}

func (s Store) CurrencyCode() string {
	if s.Currency == "" {
		return DefaultCurrency
	}
	return s.Currency
}

// FormatOrderNumber renders the human readable order number, e.g. "JMR-00042".
func FormatOrderNumber(prefix string, sequence int64) string {
	if prefix == "" {
		return fmt.Sprintf("%05d", sequence)
	}
	return fmt.Sprintf("%s-%05d", prefix, sequence)
}

// AdTracking holds the conversion API settings of a store.
type AdTracking struct {
	PixelID        string
	AccessToken    string
	EventSourceURL string
	TestEventCode  string
}

func (a AdTracking) Enabled() bool {
	return a.PixelID != "" && a.AccessToken != ""
}

// UpsellOffer is a catalog entry that can be attached to an order.
type UpsellOffer struct {
	ID       kernel.UUID
	StoreID  kernel.UUID
	Title    string
	Price    decimal.Decimal
	Quantity int
	Type     order.UpsellType
	Active   bool
}

// ToUpsell snapshots the catalog entry onto an order.
func (u UpsellOffer) ToUpsell() (order.Upsell, error) {
	return order.NewUpsell(u.ID, u.Title, u.Quantity, u.Price, u.Type)
}
