package balance

import (
	"sync"

	fdecimal "github.com/fenrir-exchange/fenrir/internal/decimal"
)

// Store is the ledger backend: get/increase/decrease/status on a single
// (user, asset, bucket) entry. Ledger entries never go negative; callers
// that need an insufficient-funds refusal should check before decreasing
// (see Service.ChangeBalance).
type Store interface {
	Get(userID UserID, assetID AssetID, bucket BucketType) fdecimal.Decimal
	Increase(userID UserID, assetID AssetID, bucket BucketType, amount fdecimal.Decimal)
	Decrease(userID UserID, assetID AssetID, bucket BucketType, amount fdecimal.Decimal)
	Status(userID UserID, assetID AssetID) Status
}

// MemoryStore is an in-memory Store, serialized internally by an
// RWMutex: reads take the read lock, mutations take the write lock.
// There is no persistence; all state is process-memory (spec §6).
type MemoryStore struct {
	mu       sync.RWMutex
	balances map[key]fdecimal.Decimal
}

// NewMemoryStore returns an empty in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		balances: make(map[key]fdecimal.Decimal),
	}
}

func (s *MemoryStore) Get(userID UserID, assetID AssetID, bucket BucketType) fdecimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(userID, assetID, bucket)
}

func (s *MemoryStore) getLocked(userID UserID, assetID AssetID, bucket BucketType) fdecimal.Decimal {
	amount, ok := s.balances[key{userID, assetID, bucket}]
	if !ok {
		return fdecimal.Zero
	}
	return amount
}

func (s *MemoryStore) Increase(userID UserID, assetID AssetID, bucket BucketType, amount fdecimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{userID, assetID, bucket}
	s.balances[k] = s.getLocked(userID, assetID, bucket).Add(amount)
}

func (s *MemoryStore) Decrease(userID UserID, assetID AssetID, bucket BucketType, amount fdecimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{userID, assetID, bucket}
	s.balances[k] = s.getLocked(userID, assetID, bucket).Sub(amount)
}

func (s *MemoryStore) Status(userID UserID, assetID AssetID) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	available := s.getLocked(userID, assetID, Available)
	frozen := s.getLocked(userID, assetID, Frozen)

	return Status{
		Total:     available.Add(frozen),
		Available: available,
		Frozen:    frozen,
	}
}
