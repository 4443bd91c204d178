package tinyflake

import (
	"sync"
	"time"
)

// Settings configures a Generator instance.
type Settings struct {
	// Node is a deployment-unique index in [0,3].
	Node uint8
	// StartEpoch is the zero point for the 30-bit timestamp field. It must
	// not be after the clock's current time.
	StartEpoch time.Time
}

type generatorState struct {
	lastSeen *time.Time
	seq      uint8
}

// Generator produces a monotonically increasing stream of packed 40-bit
// identifiers from a single instance. It tolerates per-second sequence
// exhaustion (blocks until the next second) and clock regress (blocks until
// the clock catches up), guaranteeing no (timestamp, sequence) triple is
// ever repeated for one instance.
//
// State is guarded by a single mutex, held only across the bounded
// WaitUntil calls -- never across unrelated I/O. Callers on cooperative
// runtimes should keep NextID off latency-sensitive hot paths for the same
// reason the teacher's cache state-guards stay short and uncontested.
type Generator struct {
	node       uint8
	startEpoch time.Time
	clock      Clock

	mu    sync.Mutex
	state generatorState
}

// New constructs a Generator backed by the real system clock.
func New(settings Settings) (*Generator, error) {
	return NewWithClock(settings, SystemClock{})
}

// NewWithClock constructs a Generator backed by a custom Clock, primarily
// for deterministic testing.
func NewWithClock(settings Settings, clock Clock) (*Generator, error) {
	if settings.Node > MaxNode {
		return nil, ErrInvalidNode
	}
	now := clock.Now()
	if settings.StartEpoch.After(now) {
		return nil, ErrEpochAhead
	}
	return &Generator{
		node:       settings.Node,
		startEpoch: settings.StartEpoch,
		clock:      clock,
	}, nil
}

// NextID produces the next identifier in the stream. The first call uses
// sequence 0. Later calls first wait out a clock regress, then increment
// the sequence within the same whole second (waiting for the next second
// once it is exhausted) or reset it to 0 in a new second. It fails with
// ErrOverTimeLimit when the elapsed seconds do not fit the timestamp field.
func (g *Generator) NextID() (ID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()

	switch last := g.state.lastSeen; {
	case last == nil:
		g.state.seq = 0
	default:
		if now.Before(*last) {
			// Clock regress: block until we've caught up to the last
			// timestamp used, so no (timestamp, sequence) triple repeats.
			g.clock.WaitUntil(*last)
			now = g.clock.Now()
		}

		if sameWholeSecond(now, *last) {
			if g.state.seq < MaxSequence {
				g.state.seq++
			} else {
				nextSecond := time.Unix(last.Unix()+1, 0).UTC()
				g.clock.WaitUntil(nextSecond)
				now = g.clock.Now()
				g.state.seq = 0
			}
		} else {
			g.state.seq = 0
		}
	}

	elapsed := now.Unix() - g.startEpoch.Unix()
	if elapsed < 0 || uint64(elapsed) > MaxTimestamp {
		return ID{}, ErrOverTimeLimit
	}

	id := ID{Timestamp: uint32(elapsed), Sequence: g.state.seq, Node: g.node}
	g.state.lastSeen = &now
	return id, nil
}

func sameWholeSecond(a, b time.Time) bool {
	return a.Unix() == b.Unix()
}
