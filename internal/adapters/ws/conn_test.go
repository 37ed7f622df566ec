package ws

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/swipxin/Backendswipxin/internal/core"
)

// stubWSConn satisfies WSConn without a network.
type stubWSConn struct {
	mu     sync.Mutex
	closed bool
}

func (s *stubWSConn) ReadMessage() (int, []byte, error)    { return 0, nil, errors.New("eof") }
func (s *stubWSConn) WriteMessage(int, []byte) error       { return nil }
func (s *stubWSConn) SetReadLimit(int64)                   {}
func (s *stubWSConn) SetReadDeadline(time.Time) error      { return nil }
func (s *stubWSConn) SetWriteDeadline(time.Time) error     { return nil }
func (s *stubWSConn) SetPongHandler(func(string) error)    {}
func (s *stubWSConn) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func TestTrySendAfterCloseReturnsError(t *testing.T) {
	c := newSignalConn(&stubWSConn{})
	c.Close()

	// a superseded handle keeps receiving fan-out for a moment;
	// that must degrade to an error, never a panic
	if err := c.TrySend(core.Frame(`{}`)); !errors.Is(err, errConnClosed) {
		t.Fatalf("TrySend after Close = %v, want errConnClosed", err)
	}
	select {
	case <-c.done:
	default:
		t.Error("Close must release the write pump via done")
	}
}

func TestCloseIdempotent(t *testing.T) {
	c := newSignalConn(&stubWSConn{})
	c.Close()
	c.Close()
}

func TestTrySendBackpressure(t *testing.T) {
	c := newSignalConn(&stubWSConn{})
	for i := 0; i < cap(c.send); i++ {
		if err := c.TrySend(core.Frame(`{}`)); err != nil {
			t.Fatalf("TrySend #%d = %v, want nil", i, err)
		}
	}
	if err := c.TrySend(core.Frame(`{}`)); !errors.Is(err, core.ErrBackpressure) {
		t.Fatalf("TrySend on a full buffer = %v, want ErrBackpressure", err)
	}
}

func TestConcurrentSendAndClose(t *testing.T) {
	c := newSignalConn(&stubWSConn{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = c.TrySend(core.Frame(`{}`))
			}
		}()
	}
	c.Close()
	wg.Wait()
}
