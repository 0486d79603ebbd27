// Package store describes the storefront configuration consumed by the order lifecycle:
// order numbering, duplicate and offer windows, ad tracking and the upsell catalog.
package store
