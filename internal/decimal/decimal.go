// Package decimal re-exports shopspring/decimal under the engine's own
// import path so every other internal package depends on this package
// rather than on the third-party module directly.
package decimal

import "github.com/shopspring/decimal"

type Decimal = decimal.Decimal

var Zero = decimal.Zero

// New mirrors decimal.New for integer-backed construction in tests and
// fixtures.
func New(value int64, exp int32) Decimal {
	return decimal.New(value, exp)
}

// NewFromInt builds a Decimal from a plain int64, useful for quantities
// and asset/user ids expressed as whole numbers.
func NewFromInt(value int64) Decimal {
	return decimal.NewFromInt(value)
}

// NewFromString parses a decimal string as received over the wire (spec
// §6: all RPC amounts are decimal strings).
func NewFromString(value string) (Decimal, error) {
	return decimal.NewFromString(value)
}
