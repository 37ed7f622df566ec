package core

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/swipxin/Backendswipxin/internal/domain"
)

// ErrRoomFull rejects a third join attempt; the room never queues one.
var ErrRoomFull = errors.New("room is full")

// Participant is one joined transport inside a room.
type Participant struct {
	UserID domain.UserID
	Conn   SignalConn
}

// Room is a two-party signaling channel. Created lazily by the first
// join, deleted when the last participant leaves.
type Room struct {
	ID        domain.RoomID
	MatchID   domain.MatchID
	CreatedAt time.Time
	parts     map[ConnID]Participant
}

// RoomInfo is a read-only view for APIs.
type RoomInfo struct {
	ID           domain.RoomID  `json:"roomId"`
	MatchID      domain.MatchID `json:"matchId"`
	Participants int            `json:"participants"`
}

// RoomManager is a threadsafe in-memory room table with a hard
// two-participant cap.
type RoomManager struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomID]*Room
	events Events
}

func NewRoomManager(events Events) *RoomManager {
	return &RoomManager{
		rooms:  make(map[domain.RoomID]*Room),
		events: events,
	}
}

// Join creates the room on first use, is a no-op for a connection
// already inside, and notifies every participant once the second
// distinct connection arrives. A third connection gets ErrRoomFull.
func (rm *RoomManager) Join(roomID domain.RoomID, matchID domain.MatchID, userID domain.UserID, connID ConnID, conn SignalConn) error {
	rm.mu.Lock()
	r, ok := rm.rooms[roomID]
	if !ok {
		r = &Room{
			ID:        roomID,
			MatchID:   matchID,
			CreatedAt: time.Now(),
			parts:     map[ConnID]Participant{connID: {UserID: userID, Conn: conn}},
		}
		rm.rooms[roomID] = r
		rm.mu.Unlock()
		log.Info().Str("module", "core.rooms").Str("room", string(roomID)).Str("user", string(userID)).Msg("room created")
		return nil
	}
	if _, in := r.parts[connID]; in {
		rm.mu.Unlock()
		return nil
	}
	if len(r.parts) >= 2 {
		rm.mu.Unlock()
		return ErrRoomFull
	}
	r.parts[connID] = Participant{UserID: userID, Conn: conn}
	ready := make([]Participant, 0, len(r.parts))
	for _, p := range r.parts {
		ready = append(ready, p)
	}
	count := len(r.parts)
	rm.mu.Unlock()

	log.Info().Str("module", "core.rooms").Str("room", string(roomID)).Str("user", string(userID)).Msg("room ready")
	for _, p := range ready {
		rm.events.RoomReady(p.Conn, roomID, r.MatchID, count)
	}
	return nil
}

// Leave removes the connection from the room. Idempotent. The last
// participant out deletes the room; otherwise the remaining peer is
// notified exactly once. Returns the notified user, if any.
func (rm *RoomManager) Leave(roomID domain.RoomID, connID ConnID) (domain.UserID, bool) {
	rm.mu.Lock()
	r, ok := rm.rooms[roomID]
	if !ok {
		rm.mu.Unlock()
		return "", false
	}
	left, in := r.parts[connID]
	if !in {
		rm.mu.Unlock()
		return "", false
	}
	delete(r.parts, connID)
	if len(r.parts) == 0 {
		delete(rm.rooms, roomID)
		rm.mu.Unlock()
		log.Info().Str("module", "core.rooms").Str("room", string(roomID)).Msg("room deleted")
		return "", false
	}
	var remaining Participant
	for _, p := range r.parts {
		remaining = p
	}
	rm.mu.Unlock()

	rm.events.ParticipantLeft(remaining.Conn, left.UserID, roomID)
	return remaining.UserID, true
}

// LeaveAll runs the disconnect cascade: the connection is removed from
// every room it participates in (in practice one, but the contract
// does not assume it). Returns the users notified of the departure.
func (rm *RoomManager) LeaveAll(connID ConnID) []domain.UserID {
	rm.mu.RLock()
	var member []domain.RoomID
	for id, r := range rm.rooms {
		if _, in := r.parts[connID]; in {
			member = append(member, id)
		}
	}
	rm.mu.RUnlock()

	var notified []domain.UserID
	for _, id := range member {
		if u, ok := rm.Leave(id, connID); ok {
			notified = append(notified, u)
		}
	}
	return notified
}

// Destroy drops the room without participant-left notifications; used
// on skip, where the peer already got a reason code.
func (rm *RoomManager) Destroy(roomID domain.RoomID) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	delete(rm.rooms, roomID)
}

// Others returns the participants to relay to: everyone but from.
// Returns nil when from is not a participant, so a connection cannot
// inject signaling into a room it never joined.
func (rm *RoomManager) Others(roomID domain.RoomID, from ConnID) []Participant {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	r, ok := rm.rooms[roomID]
	if !ok {
		return nil
	}
	if _, in := r.parts[from]; !in {
		return nil
	}
	out := make([]Participant, 0, len(r.parts))
	for id, p := range r.parts {
		if id != from {
			out = append(out, p)
		}
	}
	return out
}

// EvictEmpty garbage-collects rooms without participants. Rooms are
// normally deleted on last leave, so this only catches leaks.
func (rm *RoomManager) EvictEmpty() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	n := 0
	for id, r := range rm.rooms {
		if len(r.parts) == 0 {
			delete(rm.rooms, id)
			n++
		}
	}
	return n
}

func (rm *RoomManager) List() []RoomInfo {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	out := make([]RoomInfo, 0, len(rm.rooms))
	for _, r := range rm.rooms {
		out = append(out, RoomInfo{ID: r.ID, MatchID: r.MatchID, Participants: len(r.parts)})
	}
	return out
}

func (rm *RoomManager) Count() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// Reset force-clears the room table. Memory only.
func (rm *RoomManager) Reset() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.rooms = make(map[domain.RoomID]*Room)
}
