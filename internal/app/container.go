package app

import (
	"github.com/fenrir-exchange/fenrir/internal/balance"
	"github.com/fenrir-exchange/fenrir/internal/config"
	"github.com/fenrir-exchange/fenrir/internal/engine"
	"github.com/fenrir-exchange/fenrir/internal/market"
	"github.com/fenrir-exchange/fenrir/internal/rpc"
)

// Container owns every long-lived component for one running process:
// the balance ledger, the matching engine, and the rpc.Service fronting
// both to transport adapters.
type Container struct {
	BalanceService *balance.Service
	Engine         *engine.Engine
	Service        rpc.Service
}

// New builds a Container from a list of market configurations, backed
// by an in-memory balance store.
func New(markets []market.Config) *Container {
	balanceSvc := balance.NewService(balance.NewMemoryStore())
	eng := engine.New(balanceSvc, markets)

	return &Container{
		BalanceService: balanceSvc,
		Engine:         eng,
		Service:        NewService(eng, balanceSvc),
	}
}

// NewFromConfigFile builds a Container from a TOML market configuration
// file (spec §6, internal/config).
func NewFromConfigFile(path string) (*Container, error) {
	markets, err := config.FromFile(path)
	if err != nil {
		return nil, err
	}
	return New(markets), nil
}
