// Package ws is the WebSocket transport adapter: it upgrades the
// authenticated connection, runs the read/write pumps and translates
// wire messages into coordinator calls.
package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/swipxin/Backendswipxin/internal/app"
	"github.com/swipxin/Backendswipxin/internal/config"
	"github.com/swipxin/Backendswipxin/internal/core"
	"github.com/swipxin/Backendswipxin/internal/domain"
)

type Controller struct {
	Coord    *app.Coordinator
	Cfg      *config.Config
	validate *validator.Validate
}

func NewController(coord *app.Coordinator, cfg *config.Config) *Controller {
	return &Controller{
		Coord:    coord,
		Cfg:      cfg,
		validate: validator.New(),
	}
}

// HandleWS upgrades the request and registers the session. The user is
// already authenticated by the router middleware.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	userID := domain.UserID(c.GetString("user_id"))
	if userID == "" {
		return
	}

	wsc, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("module", "ws.controller").Msg("upgrade failed")
		return
	}

	connID := core.ConnID(uuid.NewString())
	conn := newSignalConn(wsc)
	sess := ctl.Coord.Connect(c.Request.Context(), userID, connID, conn)

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, cancel, conn)
	go ctl.readPump(ctx, cancel, sess, conn)
}

func (ctl *Controller) writePump(ctx context.Context, cancel context.CancelFunc, c *wsSignalConn) {
	ping := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ping.Stop()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case data := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ping.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, sess *core.Session, c *wsSignalConn) {
	defer func() {
		log.Info().Str("module", "ws.controller").Str("user", string(sess.UserID)).Msg("connection closed")
		ctl.Coord.Disconnect(sess.UserID, sess.ConnID)
		c.Close()
		cancel()
	}()

	c.conn.SetReadLimit(ctl.Cfg.ReadLimit)
	deadline := ctl.Cfg.PingPeriod + writeWait*2
	_ = c.conn.SetReadDeadline(time.Now().Add(deadline))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(deadline))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				return
			}
			ctl.dispatch(sess, c, data)
		}
	}
}

func (ctl *Controller) dispatch(sess *core.Session, c *wsSignalConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Debug().Err(err).Str("module", "ws.controller").Msg("bad json")
		return
	}

	switch env.Type {
	case "join-queue":
		ctl.handleJoinQueue(sess, c, data)
	case "leave-queue":
		ctl.Coord.LeaveQueue(sess)
	case "join-room":
		ctl.handleJoinRoom(sess, c, data)
	case "leave-room":
		ctl.handleLeaveRoom(sess, data)
	case "skip-match":
		ctl.handleSkip(sess, data)
	case "send-signal":
		ctl.handleSignal(sess, data)
	case "chat-message":
		ctl.handleChat(sess, data)
	case "ping":
		ctl.sendJSON(c, map[string]string{"type": "pong"})
	default:
		log.Debug().Str("module", "ws.controller").Str("type", env.Type).Msg("unknown message")
	}
}

func (ctl *Controller) sendJSON(c *wsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "ws.controller").Msg("marshal failed")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *Controller) sendError(c *wsSignalConn, code, msg string) {
	ctl.sendJSON(c, struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}{"error", code, msg})
}

func (ctl *Controller) handleJoinQueue(sess *core.Session, c *wsSignalConn, data []byte) {
	var p struct {
		Type        string             `json:"type"`
		Preferences domain.Preferences `json:"preferences"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(c, "BAD_PAYLOAD", "malformed join-queue payload")
		return
	}
	if err := ctl.validate.Struct(p.Preferences); err != nil {
		ctl.sendError(c, "BAD_PREFERENCES", err.Error())
		return
	}

	switch err := ctl.Coord.JoinQueue(sess, p.Preferences); err {
	case nil:
	case core.ErrInsufficientBalance:
		ctl.sendError(c, "INSUFFICIENT_BALANCE", "not enough tokens to enter the queue")
	case core.ErrAlreadyMatched:
		// already paired; tell the client it is not searching
		ctl.Coord.Events.QueueStatus(c, false, ctl.Coord.Matchmaker.QueueLen())
	default:
		log.Warn().Err(err).Str("module", "ws.controller").Str("user", string(sess.UserID)).Msg("join-queue failed")
	}
}

func (ctl *Controller) handleJoinRoom(sess *core.Session, c *wsSignalConn, data []byte) {
	var p struct {
		Type    string         `json:"type"`
		RoomID  domain.RoomID  `json:"roomId"`
		MatchID domain.MatchID `json:"matchId"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		ctl.sendError(c, "BAD_PAYLOAD", "malformed join-room payload")
		return
	}
	if err := ctl.Coord.JoinRoom(sess, p.RoomID, p.MatchID); err == core.ErrRoomFull {
		ctl.sendJSON(c, struct {
			Type   string        `json:"type"`
			RoomID domain.RoomID `json:"roomId"`
		}{"room-full", p.RoomID})
	}
}

func (ctl *Controller) handleLeaveRoom(sess *core.Session, data []byte) {
	var p struct {
		Type   string        `json:"type"`
		RoomID domain.RoomID `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		return
	}
	ctl.Coord.LeaveRoom(sess, p.RoomID)
}

func (ctl *Controller) handleSkip(sess *core.Session, data []byte) {
	var p struct {
		Type    string         `json:"type"`
		RoomID  domain.RoomID  `json:"roomId"`
		MatchID domain.MatchID `json:"matchId"`
		Reason  string         `json:"reason,omitempty"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	ctl.Coord.Skip(sess, p.RoomID, p.MatchID, p.Reason)
}

func (ctl *Controller) handleSignal(sess *core.Session, data []byte) {
	var p struct {
		Type   string          `json:"type"`
		RoomID domain.RoomID   `json:"roomId"`
		Signal json.RawMessage `json:"signal"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" || len(p.Signal) == 0 {
		return
	}
	ctl.Coord.Signal(sess, p.RoomID, core.Frame(p.Signal))
}

func (ctl *Controller) handleChat(sess *core.Session, data []byte) {
	var p struct {
		Type   string        `json:"type"`
		RoomID domain.RoomID `json:"roomId"`
		Text   string        `json:"text"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" || p.Text == "" {
		return
	}
	ctl.Coord.Chat(sess, p.RoomID, p.Text)
}
