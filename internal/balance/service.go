package balance

import (
	"fmt"

	"github.com/fenrir-exchange/fenrir/internal/apperrors"
	fdecimal "github.com/fenrir-exchange/fenrir/internal/decimal"
	"github.com/rs/zerolog/log"
)

// BusinessType tags why a balance mutation happened, carried from the
// reference implementation's audit trail even though event sourcing
// itself is out of scope (spec §1).
type BusinessType int

const (
	BusinessWithdraw BusinessType = iota
	BusinessDeposit
	BusinessTrade
)

func (b BusinessType) String() string {
	switch b {
	case BusinessWithdraw:
		return "withdraw"
	case BusinessDeposit:
		return "deposit"
	case BusinessTrade:
		return "trade"
	default:
		return "unknown"
	}
}

// BusinessID correlates a mutation with its cause (a trade id for trade
// settlement, an order id for freezing or releasing an order's escrow,
// or 1 for ad-hoc deposit/withdraw calls).
type BusinessID = uint64

// ChangeInput is one requested ledger mutation.
type ChangeInput struct {
	UserID       UserID
	AssetID      AssetID
	BusinessType BusinessType
	BusinessID   BusinessID
	Bucket       BucketType
	// Amount is signed: positive increases the bucket, negative decreases
	// it. A negative amount larger in magnitude than the current balance
	// is refused with apperrors.ErrUserBalanceExceeds.
	Amount fdecimal.Decimal
}

// ChangeOutput reports the resulting balance status after a mutation,
// for audit logging and RPC responses.
type ChangeOutput struct {
	UserID       UserID
	AssetID      AssetID
	BusinessType BusinessType
	BusinessID   BusinessID
	Bucket       BucketType
	Amount       fdecimal.Decimal
	Status       Status
}

// Service is the balance ledger's public surface: admission checks plus
// the one mutation entry point used by deposits, withdrawals and trade
// settlement alike.
type Service struct {
	store Store
}

// NewService wraps a Store with the ledger's business rules.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// IsAvailableBalanceEnough reports whether the user's Available bucket
// for assetID covers amount (spec §4.4 admission check).
func (s *Service) IsAvailableBalanceEnough(userID UserID, assetID AssetID, amount fdecimal.Decimal) bool {
	return s.store.Get(userID, assetID, Available).GreaterThanOrEqual(amount)
}

// Status returns the full (total, available, frozen) view for a user/asset.
func (s *Service) Status(userID UserID, assetID AssetID) Status {
	return s.store.Status(userID, assetID)
}

// ChangeBalance applies one signed mutation to a single bucket. Ledger
// entries never go negative: a decrease beyond the current balance is
// refused rather than applied.
func (s *Service) ChangeBalance(input ChangeInput) (*ChangeOutput, error) {
	absAmount := input.Amount.Abs()

	if input.Amount.IsPositive() {
		s.store.Increase(input.UserID, input.AssetID, input.Bucket, absAmount)
	} else if input.Amount.IsNegative() {
		current := s.store.Get(input.UserID, input.AssetID, input.Bucket)
		if current.LessThan(absAmount) {
			return nil, apperrors.ErrUserBalanceExceeds
		}
		s.store.Decrease(input.UserID, input.AssetID, input.Bucket, absAmount)
	}

	status := s.store.Status(input.UserID, input.AssetID)

	log.Debug().
		Uint32("userId", input.UserID).
		Uint32("assetId", input.AssetID).
		Str("businessType", input.BusinessType.String()).
		Uint64("businessId", input.BusinessID).
		Str("bucket", input.Bucket.String()).
		Str("amount", input.Amount.String()).
		Msg("balance changed")

	return &ChangeOutput{
		UserID:       input.UserID,
		AssetID:      input.AssetID,
		BusinessType: input.BusinessType,
		BusinessID:   input.BusinessID,
		Bucket:       input.Bucket,
		Amount:       input.Amount,
		Status:       status,
	}, nil
}

// Deposit credits a user's Available balance.
func (s *Service) Deposit(userID UserID, assetID AssetID, amount fdecimal.Decimal) (*ChangeOutput, error) {
	if amount.IsNegative() || amount.IsZero() {
		return nil, fmt.Errorf("deposit amount must be positive: %s", amount)
	}
	return s.ChangeBalance(ChangeInput{
		UserID:       userID,
		AssetID:      assetID,
		BusinessType: BusinessDeposit,
		BusinessID:   1,
		Bucket:       Available,
		Amount:       amount,
	})
}

// Withdraw debits a user's Available balance, failing if insufficient.
func (s *Service) Withdraw(userID UserID, assetID AssetID, amount fdecimal.Decimal) (*ChangeOutput, error) {
	if amount.IsNegative() || amount.IsZero() {
		return nil, fmt.Errorf("withdraw amount must be positive: %s", amount)
	}
	return s.ChangeBalance(ChangeInput{
		UserID:       userID,
		AssetID:      assetID,
		BusinessType: BusinessWithdraw,
		BusinessID:   1,
		Bucket:       Available,
		Amount:       amount.Neg(),
	})
}
