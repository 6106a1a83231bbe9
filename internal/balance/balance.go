// Package balance is the user balance ledger: a two-bucket
// (Available/Frozen) store keyed by (user, asset), tightly coupled to
// the matching engine's freeze-on-rest and settle-on-trade sequences.
package balance

import fdecimal "github.com/fenrir-exchange/fenrir/internal/decimal"

type (
	// UserID identifies an account.
	UserID = uint32
	// AssetID identifies a tradable asset (base or quote).
	AssetID = uint32
)

// BucketType is one of the two ledger buckets for a (user, asset) pair.
type BucketType int

const (
	// Available funds are spendable and withdrawable.
	Available BucketType = iota
	// Frozen funds are escrowed against a resting order.
	Frozen
)

func (b BucketType) String() string {
	switch b {
	case Available:
		return "available"
	case Frozen:
		return "frozen"
	default:
		return "unknown"
	}
}

// Status is the full view of one user's balance in one asset.
type Status struct {
	Total     fdecimal.Decimal
	Available fdecimal.Decimal
	Frozen    fdecimal.Decimal
}

// key identifies one (user, asset, bucket) ledger entry.
type key struct {
	userID  UserID
	assetID AssetID
	bucket  BucketType
}
