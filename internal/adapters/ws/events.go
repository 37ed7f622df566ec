package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/swipxin/Backendswipxin/internal/core"
	"github.com/swipxin/Backendswipxin/internal/domain"
)

// Emitter encodes core events as JSON frames. A frame dropped to
// backpressure is logged and forgotten; a client that slow is already
// on its way out via the ping/pong deadline.
type Emitter struct{}

func NewEmitter() *Emitter { return &Emitter{} }

func (e *Emitter) send(c core.SignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "ws.emitter").Msg("event marshal failed")
		return
	}
	if err := c.TrySend(core.Frame(b)); err != nil {
		log.Warn().Err(err).Str("module", "ws.emitter").Msg("event dropped")
	}
}

func (e *Emitter) QueueStatus(c core.SignalConn, searching bool, queueSize int) {
	status := "idle"
	if searching {
		status = "searching"
	}
	e.send(c, struct {
		Type      string `json:"type"`
		Status    string `json:"status"`
		QueueSize int    `json:"queueSize"`
	}{"queue-status", status, queueSize})
}

func (e *Emitter) MatchFound(c core.SignalConn, m *domain.Match, partner domain.PublicProfile, isInitiator bool) {
	e.send(c, struct {
		Type        string               `json:"type"`
		MatchID     domain.MatchID       `json:"matchId"`
		RoomID      domain.RoomID        `json:"roomId"`
		Partner     domain.PublicProfile `json:"partner"`
		IsInitiator bool                 `json:"isInitiator"`
	}{"match-found", m.ID, m.RoomID, partner, isInitiator})
}

func (e *Emitter) MatchTimeout(c core.SignalConn) {
	e.send(c, struct {
		Type string `json:"type"`
	}{"match-timeout"})
}

func (e *Emitter) RoomReady(c core.SignalConn, roomID domain.RoomID, matchID domain.MatchID, participants int) {
	e.send(c, struct {
		Type         string         `json:"type"`
		RoomID       domain.RoomID  `json:"roomId"`
		MatchID      domain.MatchID `json:"matchId"`
		Participants int            `json:"participants"`
	}{"room-ready", roomID, matchID, participants})
}

func (e *Emitter) ParticipantLeft(c core.SignalConn, userID domain.UserID, roomID domain.RoomID) {
	e.send(c, struct {
		Type   string        `json:"type"`
		UserID domain.UserID `json:"userId"`
		RoomID domain.RoomID `json:"roomId"`
	}{"participant-left", userID, roomID})
}

func (e *Emitter) PartnerSkipped(c core.SignalConn, userID domain.UserID, reason string) {
	e.send(c, struct {
		Type   string        `json:"type"`
		UserID domain.UserID `json:"userId"`
		Reason string        `json:"reason"`
	}{"partner-skipped", userID, reason})
}

func (e *Emitter) Signal(c core.SignalConn, from domain.UserID, payload core.Frame) {
	e.send(c, struct {
		Type    string          `json:"type"`
		From    domain.UserID   `json:"from"`
		Payload json.RawMessage `json:"payload"`
	}{"signal", from, json.RawMessage(payload)})
}

func (e *Emitter) Chat(c core.SignalConn, from domain.UserID, roomID domain.RoomID, text string) {
	e.send(c, struct {
		Type   string        `json:"type"`
		From   domain.UserID `json:"from"`
		RoomID domain.RoomID `json:"roomId"`
		Text   string        `json:"text"`
	}{"chat-message", from, roomID, text})
}

var _ core.Events = (*Emitter)(nil)
