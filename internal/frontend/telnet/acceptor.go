package telnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fightbook/internal/config"
)

// SessionHandler runs the command loop for one connected client.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn) error
}

// SessionObserver is notified as sessions open and close.
// *observability.Metrics implements it.
type SessionObserver interface {
	SessionOpened()
	SessionClosed()
}

type nopObserver struct{}

func (nopObserver) SessionOpened() {}
func (nopObserver) SessionClosed() {}

// Acceptor listens for Telnet clients and hands each to a SessionHandler.
type Acceptor struct {
	cfg      config.TelnetConfig
	handler  SessionHandler
	observer SessionObserver
	logger   *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	running  bool
	sessions int

	wg   sync.WaitGroup
	quit chan struct{}
}

// AcceptorOption configures an Acceptor.
type AcceptorOption func(*Acceptor)

// WithSessionObserver reports session open and close events to o.
func WithSessionObserver(o SessionObserver) AcceptorOption {
	return func(a *Acceptor) {
		if o != nil {
			a.observer = o
		}
	}
}

// NewAcceptor creates an Acceptor for cfg.Addr().
//
// Precondition: handler and logger must be non-nil.
// Postcondition: Returns an Acceptor ready for ListenAndServe.
func NewAcceptor(cfg config.TelnetConfig, handler SessionHandler, logger *zap.Logger, opts ...AcceptorOption) *Acceptor {
	a := &Acceptor{
		cfg:      cfg,
		handler:  handler,
		observer: nopObserver{},
		logger:   logger,
		quit:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ListenAndServe accepts clients until Stop is called. It returns nil
// after a clean Stop.
//
// Precondition: the acceptor must not already be running.
func (a *Acceptor) ListenAndServe() error {
	listener, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}

	a.mu.Lock()
	a.listener = listener
	a.running = true
	a.mu.Unlock()

	a.logger.Info("arena telnet listening", zap.String("addr", listener.Addr().String()))

	for {
		raw, err := listener.Accept()
		if err != nil {
			select {
			case <-a.quit:
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			a.logger.Error("accepting connection", zap.Error(err))
			continue
		}
		a.wg.Add(1)
		go a.serve(raw)
	}
}

func (a *Acceptor) serve(raw net.Conn) {
	defer a.wg.Done()
	start := time.Now()
	addr := raw.RemoteAddr().String()

	conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
	defer conn.Close()

	if err := conn.Negotiate(); err != nil {
		a.logger.Warn("telnet negotiation failed", zap.String("remote_addr", addr), zap.Error(err))
		return
	}

	a.track(1)
	defer a.track(-1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-a.quit:
			cancel()
			// Unblock a pending ReadLine.
			_ = raw.SetReadDeadline(time.Now())
		case <-ctx.Done():
		}
	}()

	err := a.handler.HandleSession(ctx, conn)
	fields := []zap.Field{zap.String("remote_addr", addr), zap.Duration("duration", time.Since(start))}
	if err != nil {
		a.logger.Debug("session ended", append(fields, zap.Error(err))...)
		return
	}
	a.logger.Info("session ended cleanly", fields...)
}

func (a *Acceptor) track(delta int) {
	a.mu.Lock()
	a.sessions += delta
	a.mu.Unlock()
	if delta > 0 {
		a.observer.SessionOpened()
	} else {
		a.observer.SessionClosed()
	}
}

// Stop closes the listener and waits for every session to return.
//
// Postcondition: no session goroutines remain.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	close(a.quit)
	if a.listener != nil {
		_ = a.listener.Close()
	}
	a.mu.Unlock()

	a.wg.Wait()
	a.logger.Info("arena telnet stopped")
}

// Addr returns the bound address, or "" before listening.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// IsRunning reports whether the acceptor is accepting clients.
func (a *Acceptor) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Sessions returns the number of connected clients.
func (a *Acceptor) Sessions() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessions
}
