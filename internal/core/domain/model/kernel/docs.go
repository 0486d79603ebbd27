// Package kernel provides value objects shared by the order and customer aggregates:
//   - UUID: validated identifier wrapper around github.com/google/uuid
//   - Phone: normalized national phone number used to key customers
//   - Money helpers over github.com/shopspring/decimal
package kernel
