package ws

import (
	"context"
	"io"

	"github.com/coder/websocket"
)

// Conn is the minimal surface the manager needs from a websocket. The
// production implementation wraps coder/websocket; tests substitute a
// scripted fake through the manager's dial hook.
type Conn interface {
	// Read returns the next text frame. A server- or network-initiated
	// close surfaces as io.EOF; any other error is a transport fault.
	Read(ctx context.Context) ([]byte, error)
	// Write sends one text frame.
	Write(ctx context.Context, data []byte) error
	// Close closes the underlying socket.
	Close() error
}

// DialFunc opens a websocket connection to url.
type DialFunc func(ctx context.Context, url string) (Conn, error)

func defaultDial(ctx context.Context, url string) (Conn, error) {
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	c.SetReadLimit(1 << 20)
	return &wsConn{c: c}, nil
}

type wsConn struct {
	c *websocket.Conn
}

func (w *wsConn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := w.c.Read(ctx)
	if err != nil {
		// Normalize websocket close handshakes so the manager can tell
		// an orderly close from a transport fault.
		if websocket.CloseStatus(err) != -1 {
			return nil, io.EOF
		}
		return nil, err
	}
	return data, nil
}

func (w *wsConn) Write(ctx context.Context, data []byte) error {
	return w.c.Write(ctx, websocket.MessageText, data)
}

func (w *wsConn) Close() error {
	return w.c.Close(websocket.StatusNormalClosure, "")
}
