// Package app wires the engine's components together (balance store,
// balance service, engine, rpc-facing service) into one process-level
// container, grounded on the reference implementation's container.rs.
package app

import (
	"github.com/fenrir-exchange/fenrir/internal/balance"
	"github.com/fenrir-exchange/fenrir/internal/book"
	"github.com/fenrir-exchange/fenrir/internal/engine"
	"github.com/fenrir-exchange/fenrir/internal/market"
	"github.com/fenrir-exchange/fenrir/internal/rpc"
)

// service implements rpc.Service over an *engine.Engine and the shared
// *balance.Service.
type service struct {
	engine     *engine.Engine
	balanceSvc *balance.Service
}

// NewService returns the rpc.Service backing the engine's external
// surface.
func NewService(eng *engine.Engine, balanceSvc *balance.Service) rpc.Service {
	return &service{engine: eng, balanceSvc: balanceSvc}
}

func (s *service) GetUserBalance(userID balance.UserID, assetID balance.AssetID) balance.Status {
	return s.balanceSvc.Status(userID, assetID)
}

func (s *service) Deposit(req rpc.DepositRequest) (*balance.ChangeOutput, error) {
	return s.balanceSvc.Deposit(req.UserID, req.AssetID, req.Amount)
}

func (s *service) Withdraw(req rpc.WithdrawRequest) (*balance.ChangeOutput, error) {
	return s.balanceSvc.Withdraw(req.UserID, req.AssetID, req.Amount)
}

func (s *service) PlaceOrder(req rpc.PlaceOrderRequest) (*rpc.PlaceOrderResult, error) {
	out, err := s.engine.PlaceOrder(engine.PlaceOrderInput{
		PairID:     req.PairID,
		UserID:     req.UserID,
		LimitPrice: req.LimitPrice,
		Quantity:   req.Quantity,
		Side:       req.Side,
	})
	if err != nil {
		return nil, err
	}

	return &rpc.PlaceOrderResult{OrderID: out.OrderID, Trades: out.Trades}, nil
}

func (s *service) CancelOrder(req rpc.CancelOrderRequest) error {
	return s.engine.CancelOrder(req.PairID, req.OrderID)
}

func (s *service) GetMarketOrderbook(pairID market.PairID) (*rpc.OrderbookView, error) {
	asks, bids, err := s.engine.GetMarketOrderbook(pairID)
	if err != nil {
		return nil, err
	}

	if asks == nil {
		asks = []book.DepthLevel{}
	}
	if bids == nil {
		bids = []book.DepthLevel{}
	}

	return &rpc.OrderbookView{PairID: pairID, Asks: asks, Bids: bids}, nil
}
