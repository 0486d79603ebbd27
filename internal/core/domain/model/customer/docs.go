// Package customer holds the Customer aggregate: per organization order statistics keyed by
// the normalized phone number. Customers are created lazily and updated on every finalization.
package customer
