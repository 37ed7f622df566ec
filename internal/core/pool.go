package core

import (
	"time"

	"github.com/swipxin/Backendswipxin/internal/domain"
)

// WaitingEntry is one user actively seeking a match. ConnID pins the
// entry to the connection that queued it: if that connection goes away
// the entry is dead even if the user reconnects.
type WaitingEntry struct {
	UserID   domain.UserID
	ConnID   ConnID
	Prefs    domain.Preferences
	JoinedAt time.Time
}

// WaitingPool holds queued users in insertion order, one entry per
// user. It is deliberately not self-locking: the matchmaker owns it
// and serializes every access under its own mutex, so a pairing scan
// and the removal it decides on can never interleave with another.
type WaitingPool struct {
	entries map[domain.UserID]*WaitingEntry
	order   []domain.UserID
}

func NewWaitingPool() *WaitingPool {
	return &WaitingPool{entries: make(map[domain.UserID]*WaitingEntry)}
}

// Put inserts or overwrites the entry for e.UserID. An overwrite keeps
// the user's position in iteration order.
func (p *WaitingPool) Put(e *WaitingEntry) {
	if _, ok := p.entries[e.UserID]; !ok {
		p.order = append(p.order, e.UserID)
	}
	p.entries[e.UserID] = e
}

func (p *WaitingPool) Remove(userID domain.UserID) bool {
	if _, ok := p.entries[userID]; !ok {
		return false
	}
	delete(p.entries, userID)
	for i, id := range p.order {
		if id == userID {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return true
}

func (p *WaitingPool) Get(userID domain.UserID) (*WaitingEntry, bool) {
	e, ok := p.entries[userID]
	return e, ok
}

// Snapshot returns entries oldest-first (insertion order).
func (p *WaitingPool) Snapshot() []*WaitingEntry {
	out := make([]*WaitingEntry, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.entries[id])
	}
	return out
}

// EvictOlderThan removes and returns every entry that joined before
// the cutoff.
func (p *WaitingPool) EvictOlderThan(cutoff time.Time) []*WaitingEntry {
	var evicted []*WaitingEntry
	for _, e := range p.Snapshot() {
		if e.JoinedAt.Before(cutoff) {
			p.Remove(e.UserID)
			evicted = append(evicted, e)
		}
	}
	return evicted
}

func (p *WaitingPool) Len() int { return len(p.entries) }

func (p *WaitingPool) Reset() {
	p.entries = make(map[domain.UserID]*WaitingEntry)
	p.order = nil
}
