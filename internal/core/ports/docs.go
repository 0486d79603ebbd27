// Package ports defines the contracts between the order lifecycle core and its adapters:
// persistence, the fulfillment system, conversion notifications, event publishing,
// background dispatch and sweep locking.
package ports
