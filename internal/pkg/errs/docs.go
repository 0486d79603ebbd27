// Package errs provides the error taxonomy shared by the order lifecycle core.
//
// Validation and lookup failures:
//   - ObjectNotFoundError: an order, customer, store or upsell is absent
//   - ValueIsInvalidError, ValueIsOutOfRangeError, ValueIsRequiredError: malformed input
//
// Lifecycle failures:
//   - InvalidTransitionError: the persisted status forbids the requested move
//   - ErrOfferExpired: the post-purchase offer window elapsed on the accept path
//   - ErrSyncUnconfirmed: the fulfillment system did not confirm a hold
//   - ExternalUnavailableError: an external call failed or timed out
//   - ErrUnauthorized, ErrForbidden: the caller lacks organization or ownership
//
// Every typed error unwraps to its sentinel so callers classify failures with errors.Is
// and read details with errors.As.
package errs
