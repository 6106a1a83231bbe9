package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	fdecimal "github.com/fenrir-exchange/fenrir/internal/decimal"
	"github.com/fenrir-exchange/fenrir/internal/rpc"
	"github.com/fenrir-exchange/fenrir/internal/workerpool"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const (
	maxRecvSize        = 4 * 1024
	defaultNWorkers    = 10
	defaultConnTimeout = 30 * time.Second
)

var (
	ErrImproperConversion = errors.New("improper type conversion")
)

// connMessage links a parsed request frame to the connection it arrived
// on, so the session handler can write the response back directly.
type connMessage struct {
	conn    net.Conn
	message Message
}

// Server adapts rpc.Service to clients speaking the package's binary
// TCP protocol: one goroutine accepts connections, a fixed worker pool
// reads and parses frames, and a single session-handler goroutine
// serializes calls into the engine.
type Server struct {
	address  string
	port     int
	service  rpc.Service
	pool     workerpool.Pool
	cancel   context.CancelFunc
	messages chan connMessage
}

// New returns a Server fronting service on address:port.
func New(address string, port int, service rpc.Service) *Server {
	return &Server{
		address:  address,
		port:     port,
		service:  service,
		pool:     workerpool.New(defaultNWorkers),
		messages: make(chan connMessage, 1),
	}
}

// Shutdown cancels the server's running context.
func (s *Server) Shutdown() {
	log.Info().Msg("server shutting down")
	if s.cancel != nil {
		s.cancel()
	}
}

// Run accepts TCP connections on s.address:s.port until ctx is
// cancelled. It blocks; call it from its own goroutine.
func (s *Server) Run(ctx context.Context) {
	defer s.Shutdown()

	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		log.Error().Err(err).Msg("unable to start listener")
		return
	}
	defer func() {
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("unable to close listener")
		}
	}()

	t.Go(func() error {
		s.pool.Setup(t, s.handleConnection)
		return nil
	})

	t.Go(func() error {
		return s.sessionHandler(t)
	})

	log.Info().Str("address", s.address).Int("port", s.port).Msg("server running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := listener.Accept()
			if err != nil {
				log.Error().Err(err).Msg("error accepting client")
				continue
			}

			log.Info().
				Str("address", conn.RemoteAddr().String()).
				Str("sessionId", uuid.NewString()).
				Msg("new client connected")
			s.pool.AddTask(conn)
		}
	}
}

// sessionHandler serializes every parsed request into the engine one at
// a time, so rpc.Service calls never race across connections.
func (s *Server) sessionHandler(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case cm := <-s.messages:
			if err := s.handleMessage(cm); err != nil {
				log.Error().Err(err).Msg("error handling message")
				s.writeReport(cm.conn, errorReport(err))
			}
		}
	}
}

func (s *Server) handleMessage(cm connMessage) error {
	switch m := cm.message.(type) {
	case BaseMessage:
		return nil // heartbeat, no response required
	case NewOrderMessage:
		return s.handleNewOrder(cm.conn, m)
	case CancelOrderMessage:
		return s.handleCancelOrder(cm.conn, m)
	case GetOrderbookMessage:
		return s.handleGetOrderbook(cm.conn, m)
	case DepositMessage:
		return s.handleDeposit(cm.conn, m)
	case WithdrawMessage:
		return s.handleWithdraw(cm.conn, m)
	default:
		return ErrInvalidMessageType
	}
}

func (s *Server) handleNewOrder(conn net.Conn, m NewOrderMessage) error {
	req, err := m.Request()
	if err != nil {
		return err
	}

	out, err := s.service.PlaceOrder(req)
	if err != nil {
		return err
	}

	for _, tr := range out.Trades {
		takerReport, makerReport := tradeExecutionReports(
			m.PairID, tr.ID, out.OrderID, tr.MakerOrder.ID, m.Side, tr.Price, tr.Quantity,
		)
		s.writeReport(conn, takerReport)
		// The maker's own connection, if any, is addressed by its own
		// account's session elsewhere; this adapter only guarantees
		// delivery to the taker that is synchronously waiting on conn.
		_ = makerReport
	}

	return nil
}

func (s *Server) handleCancelOrder(conn net.Conn, m CancelOrderMessage) error {
	if err := s.service.CancelOrder(rpc.CancelOrderRequest{PairID: m.PairID, OrderID: m.OrderID}); err != nil {
		return err
	}
	s.writeReport(conn, Report{MessageType: ExecutionReport, PairID: m.PairID, OrderID: m.OrderID})
	return nil
}

func (s *Server) handleGetOrderbook(conn net.Conn, m GetOrderbookMessage) error {
	view, err := s.service.GetMarketOrderbook(m.PairID)
	if err != nil {
		return err
	}

	var bestAskPrice, bestBidPrice, bestAskQty, bestBidQty string
	if len(view.Asks) > 0 {
		bestAskPrice = view.Asks[0].Price.String()
		bestAskQty = view.Asks[0].Quantity.String()
	}
	if len(view.Bids) > 0 {
		bestBidPrice = view.Bids[0].Price.String()
		bestBidQty = view.Bids[0].Quantity.String()
	}

	s.writeReport(conn, Report{
		MessageType: OrderbookReport,
		PairID:      m.PairID,
		Price:       bestAskPrice + "|" + bestBidPrice,
		Quantity:    bestAskQty + "|" + bestBidQty,
	})
	return nil
}

func (s *Server) handleDeposit(conn net.Conn, m DepositMessage) error {
	amount, err := fdecimal.NewFromString(m.Amount)
	if err != nil {
		return err
	}
	out, err := s.service.Deposit(rpc.DepositRequest{UserID: m.UserID, AssetID: m.AssetID, Amount: amount})
	if err != nil {
		return err
	}
	s.writeReport(conn, Report{MessageType: BalanceReport, Quantity: out.Status.Available.String()})
	return nil
}

func (s *Server) handleWithdraw(conn net.Conn, m WithdrawMessage) error {
	amount, err := fdecimal.NewFromString(m.Amount)
	if err != nil {
		return err
	}
	out, err := s.service.Withdraw(rpc.WithdrawRequest{UserID: m.UserID, AssetID: m.AssetID, Amount: amount})
	if err != nil {
		return err
	}
	s.writeReport(conn, Report{MessageType: BalanceReport, Quantity: out.Status.Available.String()})
	return nil
}

func (s *Server) writeReport(conn net.Conn, r Report) {
	if _, err := conn.Write(r.Serialize()); err != nil {
		log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("unable to send report")
	}
}

// handleConnection is a short-lived worker method: it reads one frame
// off conn, parses it, hands it to the session handler, then re-queues
// conn so the pool keeps servicing it. Any returned error is fatal to
// this pool worker, per workerpool's contract.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return ErrImproperConversion
	}

	if err := conn.SetReadDeadline(time.Now().Add(defaultConnTimeout)); err != nil {
		log.Error().Str("address", conn.RemoteAddr().String()).Err(err).Msg("failed setting read deadline")
		conn.Close()
		return nil
	}

	buffer := make([]byte, maxRecvSize)
	select {
	case <-t.Dying():
		return nil
	default:
		n, err := conn.Read(buffer)
		if err != nil {
			log.Debug().Err(err).Str("address", conn.RemoteAddr().String()).Msg("connection closed")
			conn.Close()
			return nil
		}

		message, err := parseMessage(buffer[:n])
		if err != nil {
			log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("error parsing message")
			s.writeReport(conn, errorReport(err))
			s.pool.AddTask(conn)
			return nil
		}

		s.messages <- connMessage{conn: conn, message: message}
		s.pool.AddTask(conn)
	}
	return nil
}
