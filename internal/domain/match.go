package domain

import (
	"time"

	"github.com/google/uuid"
)

type (
	MatchID string
	RoomID  string
)

// Match pairs two distinct users and carries the room derived for them.
// Users[0] is the side that triggered the pairing and therefore the
// one that sends the first WebRTC offer.
type Match struct {
	ID        MatchID   `json:"matchId"`
	RoomID    RoomID    `json:"roomId"`
	Users     [2]UserID `json:"users"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewMatch(initiator, partner UserID) *Match {
	id := MatchID(uuid.NewString())
	return &Match{
		ID:        id,
		RoomID:    RoomForMatch(id),
		Users:     [2]UserID{initiator, partner},
		CreatedAt: time.Now(),
	}
}

// RoomForMatch derives the signaling room identifier for a match.
func RoomForMatch(id MatchID) RoomID {
	return RoomID("room-" + string(id))
}

func (m *Match) Has(u UserID) bool {
	return m.Users[0] == u || m.Users[1] == u
}

// PartnerOf returns the other side of the match.
func (m *Match) PartnerOf(u UserID) (UserID, bool) {
	switch u {
	case m.Users[0]:
		return m.Users[1], true
	case m.Users[1]:
		return m.Users[0], true
	}
	return "", false
}

func (m *Match) Initiator() UserID { return m.Users[0] }
