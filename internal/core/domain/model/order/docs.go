// Package order provides the Order aggregate root and its lifecycle state machine.
//
// The package includes:
//   - Order: identity, line item, upsells, totals, delivery details and lifecycle bookkeeping
//   - Status: the closed set of lifecycle states and the explicit transition table
//   - LineItem, Upsell, Delivery and DeliveryPatch value objects
//   - NewOrderNote and NewCancelNote for operator supplied text
//
// Key business rules:
//   - Every status change is checked against the persisted status and the transition table
//   - Hold and cancellation can each be undone once, back to the status they interrupted
//   - A second cancellation is reported with ErrAlreadyCancelled and changes nothing
//   - The fulfillment id is set once and never cleared; orders are never deleted
//   - Totals are recomputed as subtotal + shipping + upsell amounts whenever upsells change
package order
