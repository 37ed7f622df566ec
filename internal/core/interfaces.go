// Package core holds the in-memory matching state: the session
// registry, the waiting pool, the matchmaker, the room table and the
// signaling relay. Everything mutable in here is guarded; adapters and
// stores are reached only through the interfaces below.
package core

import (
	"context"
	"errors"

	"github.com/swipxin/Backendswipxin/internal/domain"
)

// Frame is a raw outbound payload, already encoded for the wire.
type Frame []byte

// ConnID identifies one transport connection. A user that reconnects
// gets a fresh ConnID, which is how a superseded connection's late
// disconnect is told apart from the live one.
type ConnID string

var ErrBackpressure = errors.New("send buffer full")

// SignalConn abstracts the system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConn interface {
	TrySend(Frame) error
	Close()
}

// Events is the outbound edge of the core: every notification the
// matching state machine produces goes through here. The WS adapter
// implements it by encoding JSON frames; tests implement it with a
// recorder.
type Events interface {
	QueueStatus(c SignalConn, searching bool, queueSize int)
	MatchFound(c SignalConn, m *domain.Match, partner domain.PublicProfile, isInitiator bool)
	MatchTimeout(c SignalConn)
	RoomReady(c SignalConn, roomID domain.RoomID, matchID domain.MatchID, participants int)
	ParticipantLeft(c SignalConn, userID domain.UserID, roomID domain.RoomID)
	PartnerSkipped(c SignalConn, userID domain.UserID, reason string)
	Signal(c SignalConn, from domain.UserID, payload Frame)
	Chat(c SignalConn, from domain.UserID, roomID domain.RoomID, text string)
}

// Ledger debits tokens for successful pairings. The debit is guarded
// on the store side (a balance never goes negative) and is best-effort
// from the core's point of view: a failure is logged, never unwound.
type Ledger interface {
	DebitTokens(ctx context.Context, userIDs []domain.UserID, amount int64, reason string) error
}

// Presence persists online/offline flags, best-effort.
type Presence interface {
	SetOnline(ctx context.Context, userID domain.UserID, online bool) error
}

// ProfileSource loads the cached profile fields needed for matching.
type ProfileSource interface {
	LoadProfile(ctx context.Context, userID domain.UserID) (domain.Profile, error)
}

// Recorder persists match and message records as side effects.
type Recorder interface {
	SaveMatch(ctx context.Context, m *domain.Match) error
	SaveMessage(ctx context.Context, roomID domain.RoomID, from domain.UserID, text string) error
}
