package core

import (
	"context"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"

	"github.com/swipxin/Backendswipxin/internal/domain"
)

// Relay forwards opaque signaling payloads between the participants of
// a room, never echoing to the sender. It validates nothing about the
// payload: offers, answers and candidates are the application layer's
// business.
type Relay struct {
	rooms     *RoomManager
	events    Events
	rec       Recorder
	sanitizer *bluemonday.Policy
}

func NewRelay(rooms *RoomManager, events Events, rec Recorder) *Relay {
	return &Relay{
		rooms:     rooms,
		events:    events,
		rec:       rec,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Forward delivers the payload to the other participants of the room.
// A sender that is not a participant forwards to no one.
func (rl *Relay) Forward(roomID domain.RoomID, from *Session, payload Frame) {
	for _, p := range rl.rooms.Others(roomID, from.ConnID) {
		rl.events.Signal(p.Conn, from.UserID, payload)
	}
}

// Chat forwards an in-room text message, stripped of any markup, and
// persists it best-effort.
func (rl *Relay) Chat(roomID domain.RoomID, from *Session, text string) {
	clean := rl.sanitizer.Sanitize(text)
	if clean == "" {
		return
	}
	for _, p := range rl.rooms.Others(roomID, from.ConnID) {
		rl.events.Chat(p.Conn, from.UserID, roomID, clean)
	}
	if rl.rec == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rl.rec.SaveMessage(ctx, roomID, from.UserID, clean); err != nil {
			log.Warn().Err(err).Str("module", "core.relay").Str("room", string(roomID)).Msg("message persist failed")
		}
	}()
}
