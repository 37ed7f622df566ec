package core

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/swipxin/Backendswipxin/internal/domain"
)

// Session is one live authenticated connection. The transport handle
// is owned by the adapter; the registry only fans events into it.
type Session struct {
	UserID  domain.UserID
	ConnID  ConnID
	Conn    SignalConn
	Profile domain.Profile
}

// Registry tracks which users currently hold a live connection.
// At most one session per user: a reconnect supersedes the old entry
// and closes its transport.
type Registry struct {
	mu       sync.RWMutex
	byUser   map[domain.UserID]*Session
	presence Presence
}

func NewRegistry(p Presence) *Registry {
	return &Registry{
		byUser:   make(map[domain.UserID]*Session),
		presence: p,
	}
}

// Register replaces any prior session for the user. The online flag is
// persisted best-effort; a store failure never blocks registration.
func (r *Registry) Register(userID domain.UserID, connID ConnID, conn SignalConn, profile domain.Profile) *Session {
	s := &Session{UserID: userID, ConnID: connID, Conn: conn, Profile: profile}

	r.mu.Lock()
	prev := r.byUser[userID]
	r.byUser[userID] = s
	r.mu.Unlock()

	if prev != nil {
		log.Info().Str("module", "core.registry").Str("user", string(userID)).Msg("superseding prior session")
		prev.Conn.Close()
	}
	r.setOnline(userID, true)
	log.Info().Str("module", "core.registry").Str("user", string(userID)).Str("conn", string(connID)).Msg("session registered")
	return s
}

// Unregister removes the session only if connID still owns it, so a
// superseded connection's late disconnect cannot evict its successor.
func (r *Registry) Unregister(userID domain.UserID, connID ConnID) bool {
	r.mu.Lock()
	s, ok := r.byUser[userID]
	if !ok || s.ConnID != connID {
		r.mu.Unlock()
		return false
	}
	delete(r.byUser, userID)
	r.mu.Unlock()

	r.setOnline(userID, false)
	log.Info().Str("module", "core.registry").Str("user", string(userID)).Msg("session unregistered")
	return true
}

func (r *Registry) Lookup(userID domain.UserID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byUser[userID]
	return s, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}

func (r *Registry) setOnline(userID domain.UserID, online bool) {
	if r.presence == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := r.presence.SetOnline(ctx, userID, online); err != nil {
			log.Warn().Err(err).Str("module", "core.registry").Str("user", string(userID)).Bool("online", online).Msg("presence update failed")
		}
	}()
}
