// Package app ties the core components together and owns the event
// ordering guarantees: disconnect cleanup is applied before anything
// else happens for that connection, and a match is always torn down by
// whichever side leaves, skips or disconnects first.
package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/swipxin/Backendswipxin/internal/core"
	"github.com/swipxin/Backendswipxin/internal/domain"
)

const (
	SkipReasonSkipped      = "skipped"
	SkipReasonLeft         = "left"
	SkipReasonDisconnected = "disconnected"
)

// Coordinator is the single entry point the transport adapter calls.
type Coordinator struct {
	Registry   *core.Registry
	Matchmaker *core.Matchmaker
	Rooms      *core.RoomManager
	Relay      *core.Relay
	Events     core.Events
	Profiles   core.ProfileSource
}

// Connect loads the user's profile and registers the session. Profile
// load failures degrade to a guest profile so a storage hiccup cannot
// keep an authenticated user from connecting; such a user simply fails
// the balance gate until the store recovers.
func (c *Coordinator) Connect(ctx context.Context, userID domain.UserID, connID core.ConnID, conn core.SignalConn) *core.Session {
	profile := domain.Profile{UserID: userID, Name: "guest"}
	if c.Profiles != nil {
		p, err := c.Profiles.LoadProfile(ctx, userID)
		if err != nil {
			log.Warn().Err(err).Str("module", "app.coordinator").Str("user", string(userID)).Msg("profile load failed, using guest profile")
		} else {
			profile = p
		}
	}
	return c.Registry.Register(userID, connID, conn, profile)
}

// Disconnect tears down everything the connection held, in order:
// registry entry, waiting entry, room membership, active match. Runs
// before any later event for the same connection is processed.
func (c *Coordinator) Disconnect(userID domain.UserID, connID core.ConnID) {
	if !c.Registry.Unregister(userID, connID) {
		// a superseded connection: the live one keeps its queue and
		// match state, but anything pinned to this handle must go, or
		// a dead transport keeps occupying the user's own room
		c.Matchmaker.DequeueConn(userID, connID)
		c.Rooms.LeaveAll(connID)
		return
	}
	c.Matchmaker.Dequeue(userID)
	notified := c.Rooms.LeaveAll(connID)

	m, ok := c.Matchmaker.ActiveMatch(userID)
	if !ok {
		return
	}
	if _, ok := c.Matchmaker.EndMatch(m.ID); !ok {
		return
	}
	partner, _ := m.PartnerOf(userID)
	for _, u := range notified {
		if u == partner {
			// the shared room already delivered participant-left
			return
		}
	}
	if ps, ok := c.Registry.Lookup(partner); ok {
		c.Events.PartnerSkipped(ps.Conn, userID, SkipReasonDisconnected)
	}
}

// JoinQueue enqueues the session for matching.
func (c *Coordinator) JoinQueue(s *core.Session, prefs domain.Preferences) error {
	return c.Matchmaker.Enqueue(s.UserID, prefs)
}

// LeaveQueue removes the session from the queue. No-op when not
// queued; the caller always gets an idle queue-status back.
func (c *Coordinator) LeaveQueue(s *core.Session) {
	c.Matchmaker.Dequeue(s.UserID)
	c.Events.QueueStatus(s.Conn, false, c.Matchmaker.QueueLen())
}

// JoinRoom joins the allocated signaling room.
func (c *Coordinator) JoinRoom(s *core.Session, roomID domain.RoomID, matchID domain.MatchID) error {
	return c.Rooms.Join(roomID, matchID, s.UserID, s.ConnID, s.Conn)
}

// LeaveRoom leaves the room and, when the room belonged to the
// session's active match, tears the match down too.
func (c *Coordinator) LeaveRoom(s *core.Session, roomID domain.RoomID) {
	notified, wasNotified := c.Rooms.Leave(roomID, s.ConnID)
	m, ok := c.Matchmaker.ActiveMatch(s.UserID)
	if !ok || m.RoomID != roomID {
		return
	}
	if _, ok := c.Matchmaker.EndMatch(m.ID); !ok {
		return
	}
	partner, _ := m.PartnerOf(s.UserID)
	if wasNotified && notified == partner {
		// the room already delivered participant-left
		return
	}
	if ps, ok := c.Registry.Lookup(partner); ok {
		c.Events.PartnerSkipped(ps.Conn, s.UserID, SkipReasonLeft)
	}
}

// Skip ends the match on the leaver's initiative. The partner gets a
// distinguishable reason code before the room goes away, so the client
// re-enters the queue instead of treating it as an error. The skipper
// is immediately eligible to queue again.
func (c *Coordinator) Skip(s *core.Session, roomID domain.RoomID, matchID domain.MatchID, reason string) {
	if reason == "" {
		reason = SkipReasonSkipped
	}
	// only the caller's own active match may be skipped; the client's
	// ids are untrusted input
	m, ok := c.Matchmaker.ActiveMatch(s.UserID)
	if !ok || m.ID != matchID {
		log.Debug().Str("module", "app.coordinator").Str("user", string(s.UserID)).Str("match", string(matchID)).Msg("skip for a match the caller does not hold")
		return
	}
	if _, ok := c.Matchmaker.EndMatch(m.ID); !ok {
		return
	}
	if partner, ok := m.PartnerOf(s.UserID); ok {
		if ps, ok := c.Registry.Lookup(partner); ok {
			c.Events.PartnerSkipped(ps.Conn, s.UserID, reason)
		}
	}
	c.Rooms.Destroy(m.RoomID)
	log.Info().Str("module", "app.coordinator").Str("user", string(s.UserID)).Str("match", string(matchID)).Str("reason", reason).Msg("match skipped")
}

// Signal relays an opaque signaling payload to the session's peer.
func (c *Coordinator) Signal(s *core.Session, roomID domain.RoomID, payload core.Frame) {
	c.Relay.Forward(roomID, s, payload)
}

// Chat relays an in-room text message.
func (c *Coordinator) Chat(s *core.Session, roomID domain.RoomID, text string) {
	c.Relay.Chat(roomID, s, text)
}

// Reset force-clears all in-memory matching state for operational
// recovery. Idempotent; live connections and persisted records are
// untouched.
func (c *Coordinator) Reset() {
	c.Matchmaker.Reset()
	c.Rooms.Reset()
	log.Warn().Str("module", "app.coordinator").Msg("in-memory matching state force-cleared")
}
