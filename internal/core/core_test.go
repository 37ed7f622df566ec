package core

import (
	"context"
	"sync"
	"time"

	"github.com/swipxin/Backendswipxin/internal/domain"
)

// fakeConn records frames instead of writing to a socket.
type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
	closed bool
}

func (c *fakeConn) TrySend(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// recordedEvent is one notification captured by recEvents.
type recordedEvent struct {
	kind        string
	conn        SignalConn
	match       *domain.Match
	partner     domain.PublicProfile
	isInitiator bool
	searching   bool
	queueSize   int
	roomID      domain.RoomID
	matchID     domain.MatchID
	userID      domain.UserID
	reason      string
	payload     Frame
	text        string
}

// recEvents implements Events by recording every call.
type recEvents struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recEvents) add(e recordedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recEvents) QueueStatus(c SignalConn, searching bool, queueSize int) {
	r.add(recordedEvent{kind: "queue-status", conn: c, searching: searching, queueSize: queueSize})
}

func (r *recEvents) MatchFound(c SignalConn, m *domain.Match, partner domain.PublicProfile, isInitiator bool) {
	r.add(recordedEvent{kind: "match-found", conn: c, match: m, partner: partner, isInitiator: isInitiator})
}

func (r *recEvents) MatchTimeout(c SignalConn) {
	r.add(recordedEvent{kind: "match-timeout", conn: c})
}

func (r *recEvents) RoomReady(c SignalConn, roomID domain.RoomID, matchID domain.MatchID, participants int) {
	r.add(recordedEvent{kind: "room-ready", conn: c, roomID: roomID, matchID: matchID, queueSize: participants})
}

func (r *recEvents) ParticipantLeft(c SignalConn, userID domain.UserID, roomID domain.RoomID) {
	r.add(recordedEvent{kind: "participant-left", conn: c, userID: userID, roomID: roomID})
}

func (r *recEvents) PartnerSkipped(c SignalConn, userID domain.UserID, reason string) {
	r.add(recordedEvent{kind: "partner-skipped", conn: c, userID: userID, reason: reason})
}

func (r *recEvents) Signal(c SignalConn, from domain.UserID, payload Frame) {
	r.add(recordedEvent{kind: "signal", conn: c, userID: from, payload: payload})
}

func (r *recEvents) Chat(c SignalConn, from domain.UserID, roomID domain.RoomID, text string) {
	r.add(recordedEvent{kind: "chat", conn: c, userID: from, roomID: roomID, text: text})
}

func (r *recEvents) byKind(kind string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedEvent
	for _, e := range r.events {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

type debitCall struct {
	userIDs []domain.UserID
	amount  int64
}

// fakeLedger pushes calls onto a channel so tests can wait for the
// async debit.
type fakeLedger struct {
	calls chan debitCall
	err   error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{calls: make(chan debitCall, 8)}
}

func (l *fakeLedger) DebitTokens(_ context.Context, userIDs []domain.UserID, amount int64, _ string) error {
	l.calls <- debitCall{userIDs: userIDs, amount: amount}
	return l.err
}

func (l *fakeLedger) waitCall(timeout time.Duration) (debitCall, bool) {
	select {
	case c := <-l.calls:
		return c, true
	case <-time.After(timeout):
		return debitCall{}, false
	}
}

// fakeRecorder counts persisted side effects.
type fakeRecorder struct {
	mu       sync.Mutex
	matches  []*domain.Match
	messages []string
}

func (r *fakeRecorder) SaveMatch(_ context.Context, m *domain.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches = append(r.matches, m)
	return nil
}

func (r *fakeRecorder) SaveMessage(_ context.Context, _ domain.RoomID, _ domain.UserID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, text)
	return nil
}

func (r *fakeRecorder) savedMessages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

func freeProfile(id domain.UserID, balance int64) domain.Profile {
	return domain.Profile{UserID: id, Name: string(id), Age: 25, Gender: domain.GenderOther, Country: "US", TokenBalance: balance}
}

func premiumProfile(id domain.UserID, balance int64) domain.Profile {
	p := freeProfile(id, balance)
	p.Premium = true
	return p
}
