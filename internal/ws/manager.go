package ws

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/slvrxyzz/tvoizakaz/internal/auth"
	"github.com/slvrxyzz/tvoizakaz/internal/config"
	"github.com/slvrxyzz/tvoizakaz/internal/status"
	"github.com/slvrxyzz/tvoizakaz/internal/wire"
	"go.uber.org/zap"
)

// chatEndpoint is the realtime chat path on the marketplace backend.
const chatEndpoint = "/api/v1/ws/chat"

// Handler consumes parsed inbound events. In production this is the
// state router; the manager calls it from its single read loop, so
// implementations see events strictly in arrival order.
type Handler interface {
	Apply(evt wire.Inbound)
}

// Manager owns the one realtime connection to the backend: lifecycle
// (connect, reconnect, teardown), framing, and the optional heartbeat.
// Transport failures never surface as errors to callers, only as
// status transitions on the machine.
type Manager struct {
	server  config.ServerConfig
	chat    config.ChatConfig
	creds   *auth.Source
	machine *status.Machine
	handler Handler
	logger  *zap.Logger
	dial    DialFunc

	mu      sync.Mutex
	conn    Conn
	cancel  context.CancelFunc
	dialing bool
	stopped bool

	lastPong atomic.Int64

	hbStop chan struct{}
	hbOnce sync.Once
}

// NewManager creates a manager. It does not connect; the composition
// root drives that through Start.
func NewManager(server config.ServerConfig, chat config.ChatConfig, creds *auth.Source, machine *status.Machine, handler Handler, logger *zap.Logger) *Manager {
	return &Manager{
		server:  server,
		chat:    chat,
		creds:   creds,
		machine: machine,
		handler: handler,
		logger:  logger,
		dial:    defaultDial,
		hbStop:  make(chan struct{}),
	}
}

// Start opens the connection in the background and, when configured,
// launches the heartbeat monitor.
func (m *Manager) Start() {
	go m.Connect()
	if interval := m.chat.HeartbeatInterval(); interval > 0 {
		go m.heartbeatLoop(interval)
	}
}

// Stop tears the connection down. Mandatory on session teardown: a
// leaked socket would violate the one-live-socket invariant on the
// next start.
func (m *Manager) Stop() {
	m.hbOnce.Do(func() { close(m.hbStop) })
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
	if m.detach(nil) {
		_ = m.machine.Transition(status.Disconnected)
	}
}

// Status returns the current connection status.
func (m *Manager) Status() status.State {
	return m.machine.Current()
}

// Connect opens the websocket if no connection is live. A dial failure
// is reported through the status machine only.
func (m *Manager) Connect() {
	m.mu.Lock()
	if m.conn != nil || m.dialing || m.stopped {
		m.mu.Unlock()
		return
	}
	m.dialing = true
	m.mu.Unlock()

	connID := uuid.NewString()[:8]
	_ = m.machine.Transition(status.Connecting)

	token := m.creds.Token()
	target := m.buildURL(token)
	m.logger.Info("dialing chat endpoint",
		zap.String("conn_id", connID),
		zap.Bool("authenticated", token != ""))

	ctx, cancel := context.WithTimeout(context.Background(), m.chat.DialTimeout())
	conn, err := m.dial(ctx, target)
	cancel()

	m.mu.Lock()
	m.dialing = false
	stopped := m.stopped
	if err != nil {
		m.mu.Unlock()
		if stopped {
			_ = m.machine.Transition(status.Disconnected)
			return
		}
		m.logger.Warn("dial failed", zap.String("conn_id", connID), zap.Error(err))
		_ = m.machine.Transition(status.Error)
		return
	}
	if stopped {
		// Stop() ran while the dial was in flight; the session is torn
		// down and the fresh socket must not outlive it.
		m.mu.Unlock()
		_ = conn.Close()
		m.logger.Info("discarding socket dialed during teardown", zap.String("conn_id", connID))
		_ = m.machine.Transition(status.Disconnected)
		return
	}
	if m.conn != nil {
		// A concurrent Connect won the race; discard ours.
		m.mu.Unlock()
		_ = conn.Close()
		return
	}
	readCtx, readCancel := context.WithCancel(context.Background())
	m.conn = conn
	m.cancel = readCancel
	m.mu.Unlock()

	m.lastPong.Store(time.Now().UnixNano())
	_ = m.machine.Transition(status.Connected)
	m.logger.Info("connected", zap.String("conn_id", connID))

	go m.readLoop(readCtx, conn, connID)
}

// Reconnect unconditionally discards the current socket — no draining
// of in-flight sends — and dials again.
func (m *Manager) Reconnect() {
	if m.detach(nil) {
		_ = m.machine.Transition(status.Disconnected)
	}
	m.Connect()
}

// Send serializes and transmits an outbound event. It returns false
// without side effects unless the connection is up; it never queues
// and never returns an error.
func (m *Manager) Send(evt wire.Outbound) bool {
	if m.machine.Current() != status.Connected {
		return false
	}
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return false
	}

	data, err := wire.EncodeOutbound(evt)
	if err != nil {
		m.logger.Error("encode outbound event", zap.Error(err))
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.chat.WriteTimeout())
	defer cancel()
	if err := conn.Write(ctx, data); err != nil {
		m.logger.Warn("write failed, dropping connection", zap.Error(err))
		if m.detach(conn) {
			_ = m.machine.Transition(status.Disconnected)
		}
		return false
	}
	return true
}

// readLoop pumps frames from one connection until it dies. Parse
// failures are logged and dropped; they never affect the connection.
func (m *Manager) readLoop(ctx context.Context, conn Conn, connID string) {
	for {
		data, err := conn.Read(ctx)
		if err != nil {
			if !m.detach(conn) {
				// Already detached by Reconnect/Stop/Send; whoever
				// detached owns the status transition.
				return
			}
			if ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				m.logger.Info("connection closed", zap.String("conn_id", connID))
				_ = m.machine.Transition(status.Disconnected)
			} else {
				m.logger.Warn("connection error", zap.String("conn_id", connID), zap.Error(err))
				_ = m.machine.Transition(status.Error)
			}
			return
		}

		evt, perr := wire.ParseInbound(data)
		if perr != nil {
			m.logger.Warn("dropping malformed frame", zap.String("conn_id", connID), zap.Error(perr))
			continue
		}
		if _, ok := evt.(wire.Pong); ok {
			m.lastPong.Store(time.Now().UnixNano())
		}
		m.handler.Apply(evt)
	}
}

// detach removes the active connection and closes it. When conn is
// non-nil, detach is a no-op unless that exact connection is still the
// active one; this keeps a late read-loop exit from clobbering a newer
// socket. Returns whether a connection was detached.
func (m *Manager) detach(conn Conn) bool {
	m.mu.Lock()
	if m.conn == nil || (conn != nil && m.conn != conn) {
		m.mu.Unlock()
		return false
	}
	active := m.conn
	cancel := m.cancel
	m.conn = nil
	m.cancel = nil
	m.mu.Unlock()

	_ = active.Close()
	if cancel != nil {
		cancel()
	}
	return true
}

// heartbeatLoop sends application-level pings while connected and
// forces a disconnect when pongs stop arriving for three intervals.
func (m *Manager) heartbeatLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if m.machine.Current() != status.Connected {
				continue
			}
			m.Send(wire.Ping{})
			stale := time.Since(time.Unix(0, m.lastPong.Load()))
			if stale > 3*interval {
				m.logger.Warn("no pong received, closing stale connection",
					zap.Duration("stale_for", stale))
				if m.detach(nil) {
					_ = m.machine.Transition(status.Disconnected)
				}
			}
		case <-m.hbStop:
			return
		}
	}
}

// buildURL assembles the connection URL with the optional bearer token
// as a query parameter. A trailing /ws on the configured base is
// stripped for compatibility with older configs that included it.
func (m *Manager) buildURL(token string) string {
	base := strings.TrimSuffix(strings.TrimSuffix(m.server.WSURL, "/"), "/ws")
	target := base + chatEndpoint
	if token != "" {
		target += "?token=" + url.QueryEscape(token)
	}
	return target
}
