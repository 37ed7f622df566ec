package ws

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/swipxin/Backendswipxin/internal/core"
)

// WSConn is an indirection over *websocket.Conn to ease testing.
type WSConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(mt int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
	Close() error
}

var errConnClosed = errors.New("connection closed")

// wsSignalConn implements core.SignalConn over a WebSocket. TrySend
// never blocks: a full send buffer drops the frame with
// ErrBackpressure. The send channel is never closed; a handle that was
// superseded stays referenced by rooms and notifications for a moment,
// so TrySend after Close must degrade to an error, not a panic.
type wsSignalConn struct {
	conn WSConn
	send chan core.Frame
	done chan struct{}
	once sync.Once

	mu     sync.Mutex
	closed bool
}

func newSignalConn(conn WSConn) *wsSignalConn {
	return &wsSignalConn{
		conn: conn,
		send: make(chan core.Frame, 64),
		done: make(chan struct{}),
	}
}

func (c *wsSignalConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errConnClosed
	}
	select {
	case c.send <- f:
		return nil
	default:
		return core.ErrBackpressure
	}
}

func (c *wsSignalConn) Close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.done)
		_ = c.conn.Close()
	})
}

var _ core.SignalConn = (*wsSignalConn)(nil)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}
