package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/swipxin/Backendswipxin/internal/core"
)

// Sweeper runs the two periodic maintenance tasks: a pool sweep every
// few seconds for pairs missed due to timing (both sides enqueued in
// the same tick), and a slower garbage-collection pass for stale
// waiting entries and leaked empty rooms. Both reuse the guarded core
// operations, so they are safe alongside live traffic.
type Sweeper struct {
	Matchmaker *core.Matchmaker
	Rooms      *core.RoomManager

	SweepEvery time.Duration
	GCEvery    time.Duration
	StaleAfter time.Duration
}

func (s *Sweeper) Run(ctx context.Context) {
	sweep := time.NewTicker(s.SweepEvery)
	gc := time.NewTicker(s.GCEvery)
	defer sweep.Stop()
	defer gc.Stop()

	log.Info().Str("module", "app.sweeper").
		Dur("sweep_every", s.SweepEvery).
		Dur("gc_every", s.GCEvery).
		Dur("stale_after", s.StaleAfter).
		Msg("sweeper started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.sweeper").Msg("sweeper stopped")
			return
		case <-sweep.C:
			s.Matchmaker.Sweep()
		case <-gc.C:
			if n := s.Matchmaker.EvictStale(s.StaleAfter); n > 0 {
				log.Info().Str("module", "app.sweeper").Int("evicted", n).Msg("stale waiting entries evicted")
			}
			if n := s.Rooms.EvictEmpty(); n > 0 {
				log.Info().Str("module", "app.sweeper").Int("evicted", n).Msg("empty rooms evicted")
			}
		}
	}
}
