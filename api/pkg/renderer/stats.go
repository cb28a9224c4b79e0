package renderer

import (
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
)

// Stats counts pipeline outcomes. Counters are updated on the loop goroutine and
// may be read from any goroutine.
type Stats struct {
	presented *xsync.Counter
	dropped   *xsync.Counter
	imported  *xsync.Counter
	released  *xsync.Counter
	ignored   *xsync.Counter
}

func newStats() *Stats {
	return &Stats{
		presented: xsync.NewCounter(),
		dropped:   xsync.NewCounter(),
		imported:  xsync.NewCounter(),
		released:  xsync.NewCounter(),
		ignored:   xsync.NewCounter(),
	}
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	// Presented counts completed flips.
	Presented int64
	// Dropped counts frames that were never committed.
	Dropped  int64
	Imported int64
	// Released counts release notifications sent to the producer.
	Released int64
	// Ignored counts device events that did not complete a flip.
	Ignored int64
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Presented: s.presented.Value(),
		Dropped:   s.dropped.Value(),
		Imported:  s.imported.Value(),
		Released:  s.released.Value(),
		Ignored:   s.ignored.Value(),
	}
}

func (s StatsSnapshot) MarshalZerologObject(e *zerolog.Event) {
	e.Int64("presented", s.Presented).
		Int64("dropped", s.Dropped).
		Int64("imported", s.Imported).
		Int64("released", s.Released).
		Int64("ignored", s.Ignored)
}
