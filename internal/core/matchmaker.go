package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/swipxin/Backendswipxin/internal/domain"
)

var (
	// ErrInsufficientBalance rejects enqueue below the tier minimum.
	ErrInsufficientBalance = errors.New("insufficient token balance")
	// ErrAlreadyMatched rejects enqueue while an active match exists.
	ErrAlreadyMatched = errors.New("user already in an active match")
	// ErrNotConnected rejects enqueue without a registered session.
	ErrNotConnected = errors.New("no live session for user")
)

// MatchmakerOpts wires the matchmaker's collaborators and tier policy.
// Free tier needs FreeMinBalance tokens to queue and is never debited;
// premium tier needs MatchCost and pays it per successful pairing.
type MatchmakerOpts struct {
	Registry *Registry
	Events   Events
	Ledger   Ledger
	Recorder Recorder

	MatchCost      int64
	FreeMinBalance int64
}

// Matchmaker owns the waiting pool and the active-match table. One
// mutex serializes every mutation of both, which is what keeps a
// pairing's select-candidate and remove-from-pool steps atomic with
// respect to concurrent enqueues, leaves and sweeps. Notifications and
// ledger calls always run outside that mutex.
type Matchmaker struct {
	mu     sync.Mutex
	pool   *WaitingPool
	active map[domain.UserID]*domain.Match
	byID   map[domain.MatchID]*domain.Match

	reg    *Registry
	events Events
	ledger Ledger
	rec    Recorder

	cost    int64
	freeMin int64
}

func NewMatchmaker(opts MatchmakerOpts) *Matchmaker {
	return &Matchmaker{
		pool:    NewWaitingPool(),
		active:  make(map[domain.UserID]*domain.Match),
		byID:    make(map[domain.MatchID]*domain.Match),
		reg:     opts.Registry,
		events:  opts.Events,
		ledger:  opts.Ledger,
		rec:     opts.Recorder,
		cost:    opts.MatchCost,
		freeMin: opts.FreeMinBalance,
	}
}

// pairing is one formed match plus the sessions to notify.
// a is the initiating side.
type pairing struct {
	match *domain.Match
	a, b  *Session
}

// Enqueue inserts the user into the waiting pool and immediately
// attempts a pairing; if that finds nothing and at least two users are
// waiting, a full greedy sweep runs to catch pairs the single scan
// missed. Emits queue-status to the caller when it stays queued.
func (mm *Matchmaker) Enqueue(userID domain.UserID, prefs domain.Preferences) error {
	s, ok := mm.reg.Lookup(userID)
	if !ok {
		return ErrNotConnected
	}
	if err := mm.checkBalance(s.Profile); err != nil {
		return err
	}

	mm.mu.Lock()
	if _, matched := mm.active[userID]; matched {
		mm.mu.Unlock()
		return ErrAlreadyMatched
	}
	e := &WaitingEntry{UserID: userID, ConnID: s.ConnID, Prefs: prefs, JoinedAt: time.Now()}
	mm.pool.Put(e)

	var pairs []*pairing
	if p := mm.tryPairLocked(e); p != nil {
		pairs = append(pairs, p)
	} else if mm.pool.Len() >= 2 {
		pairs = mm.sweepLocked()
	}
	_, stillQueued := mm.pool.Get(userID)
	size := mm.pool.Len()
	mm.mu.Unlock()

	for _, p := range pairs {
		mm.finish(p)
	}
	if stillQueued {
		mm.events.QueueStatus(s.Conn, true, size)
	}
	return nil
}

// Dequeue removes the user from the pool unconditionally. Idempotent.
func (mm *Matchmaker) Dequeue(userID domain.UserID) bool {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return mm.pool.Remove(userID)
}

// DequeueConn removes the waiting entry only while connID still owns
// it, so a superseded connection's late disconnect cannot drop an
// entry the live connection queued.
func (mm *Matchmaker) DequeueConn(userID domain.UserID, connID ConnID) bool {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	if e, ok := mm.pool.Get(userID); ok && e.ConnID == connID {
		return mm.pool.Remove(userID)
	}
	return false
}

// Sweep greedily pairs the whole pool, oldest entries first. Run
// periodically to catch matches missed due to timing.
func (mm *Matchmaker) Sweep() {
	mm.mu.Lock()
	pairs := mm.sweepLocked()
	mm.mu.Unlock()
	for _, p := range pairs {
		mm.finish(p)
	}
}

// EvictStale drops entries older than maxAge and notifies the evicted
// session, if still live, of the timeout.
func (mm *Matchmaker) EvictStale(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	mm.mu.Lock()
	evicted := mm.pool.EvictOlderThan(cutoff)
	mm.mu.Unlock()

	for _, e := range evicted {
		log.Info().Str("module", "core.matchmaker").Str("user", string(e.UserID)).Msg("waiting entry timed out")
		// only the connection that queued the entry is told; after a
		// reconnect the entry is dead and the new connection re-queues
		// on its own
		if s, ok := mm.reg.Lookup(e.UserID); ok && s.ConnID == e.ConnID {
			mm.events.MatchTimeout(s.Conn)
		}
	}
	return len(evicted)
}

// ActiveMatch returns the user's current match, if any.
func (mm *Matchmaker) ActiveMatch(userID domain.UserID) (*domain.Match, bool) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	m, ok := mm.active[userID]
	return m, ok
}

// EndMatch tears down the active-match table entry. Whichever party
// leaves, skips or disconnects first wins; later calls are no-ops.
func (mm *Matchmaker) EndMatch(id domain.MatchID) (*domain.Match, bool) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	m, ok := mm.byID[id]
	if !ok {
		return nil, false
	}
	delete(mm.byID, id)
	delete(mm.active, m.Users[0])
	delete(mm.active, m.Users[1])
	return m, true
}

func (mm *Matchmaker) QueueLen() int {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return mm.pool.Len()
}

// Reset force-clears the pool and the match tables. Memory only.
func (mm *Matchmaker) Reset() {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.pool.Reset()
	mm.active = make(map[domain.UserID]*domain.Match)
	mm.byID = make(map[domain.MatchID]*domain.Match)
}

func (mm *Matchmaker) checkBalance(p domain.Profile) error {
	need := mm.freeMin
	if p.Premium {
		need = mm.cost
	}
	if p.TokenBalance < need {
		return ErrInsufficientBalance
	}
	return nil
}

// tryPairLocked scans the pool for the first mutually compatible live
// candidate for e. On success both entries are removed before anything
// else happens; a post-removal liveness re-check re-enqueues the
// surviving party with its original entry if the other side vanished
// between selection and removal. Caller holds mm.mu.
func (mm *Matchmaker) tryPairLocked(e *WaitingEntry) *pairing {
	us, ok := mm.reg.Lookup(e.UserID)
	if !ok || us.ConnID != e.ConnID {
		// the connection that queued this entry is gone
		mm.pool.Remove(e.UserID)
		return nil
	}

	for _, c := range mm.pool.Snapshot() {
		if c.UserID == e.UserID {
			continue
		}
		cs, ok := mm.reg.Lookup(c.UserID)
		if !ok || cs.ConnID != c.ConnID {
			continue
		}
		if _, busy := mm.active[c.UserID]; busy {
			continue
		}
		if !e.Prefs.Accepts(cs.Profile) || !c.Prefs.Accepts(us.Profile) {
			continue
		}

		// Claim both before anything else; nothing may match either
		// of them for the rest of this operation.
		mm.pool.Remove(e.UserID)
		mm.pool.Remove(c.UserID)

		us2, uok := mm.reg.Lookup(e.UserID)
		cs2, cok := mm.reg.Lookup(c.UserID)
		uok = uok && us2.ConnID == e.ConnID
		cok = cok && cs2.ConnID == c.ConnID
		if !uok || !cok {
			// re-enqueue the survivor with its original entry
			if uok {
				mm.pool.Put(e)
			}
			if cok {
				mm.pool.Put(c)
			}
			log.Debug().Str("module", "core.matchmaker").Str("user", string(e.UserID)).Str("candidate", string(c.UserID)).Msg("candidate vanished mid-pairing")
			if !uok {
				return nil
			}
			continue
		}

		m := domain.NewMatch(e.UserID, c.UserID)
		mm.active[e.UserID] = m
		mm.active[c.UserID] = m
		mm.byID[m.ID] = m
		return &pairing{match: m, a: us2, b: cs2}
	}
	return nil
}

// sweepLocked pairs unclaimed entries left-to-right; an entry matched
// earlier in the pass is gone from the pool and thus skipped.
func (mm *Matchmaker) sweepLocked() []*pairing {
	var pairs []*pairing
	for _, e := range mm.pool.Snapshot() {
		if _, still := mm.pool.Get(e.UserID); !still {
			continue
		}
		if p := mm.tryPairLocked(e); p != nil {
			pairs = append(pairs, p)
		}
	}
	return pairs
}

// finish notifies both sides and kicks off the side effects. Never
// called with mm.mu held: notification must not wait on the ledger and
// the ledger must not wait on the pool.
func (mm *Matchmaker) finish(p *pairing) {
	m := p.match
	log.Info().Str("module", "core.matchmaker").
		Str("match", string(m.ID)).
		Str("initiator", string(p.a.UserID)).
		Str("partner", string(p.b.UserID)).
		Msg("match formed")

	mm.events.MatchFound(p.a.Conn, m, p.b.Profile.Public(), true)
	mm.events.MatchFound(p.b.Conn, m, p.a.Profile.Public(), false)

	var debit []domain.UserID
	for _, s := range []*Session{p.a, p.b} {
		if s.Profile.Premium {
			debit = append(debit, s.UserID)
		}
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if len(debit) > 0 && mm.ledger != nil {
			if err := mm.ledger.DebitTokens(ctx, debit, mm.cost, "match "+string(m.ID)); err != nil {
				// accepted inconsistency: the match stands even if the
				// debit fails, tokens are a monetization signal
				log.Error().Err(err).Str("module", "core.matchmaker").Str("match", string(m.ID)).Msg("ledger debit failed")
			}
		}
		if mm.rec != nil {
			if err := mm.rec.SaveMatch(ctx, m); err != nil {
				log.Warn().Err(err).Str("module", "core.matchmaker").Str("match", string(m.ID)).Msg("match record persist failed")
			}
		}
	}()
}
