package timeline

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/reelroom/reelroom/internal/playback"
)

// LingerDuration is how long the previous status caption is held after
// the transport reports plain playback again.
const LingerDuration = 2 * time.Second

// Reducer folds state-feed frames into a renderable State. Frames are
// applied in arrival order; every frame replaces the numeric fields and
// title unconditionally, while the caption runs a small state machine:
//
//   - a non-empty status always displays immediately and cancels any
//     linger in progress
//   - the transition from a non-empty status to the empty (playing)
//     status starts a linger that holds the old caption for
//     LingerDuration before clearing it
//
// Linger timers carry a generation number so that a timer superseded by
// a newer status is a no-op when it eventually fires.
type Reducer struct {
	clock    clockwork.Clock
	onChange func(State)

	mu          sync.Mutex
	state       State
	lastStatus  playback.Status
	lingerGen   uint64
	lingerTimer clockwork.Timer
	closed      bool
}

// NewReducer creates a reducer. onChange is invoked with a snapshot after
// every applied frame and after a linger expires; it may be nil.
func NewReducer(clock clockwork.Clock, onChange func(State)) *Reducer {
	return &Reducer{clock: clock, onChange: onChange}
}

// Apply folds one frame into the state.
func (r *Reducer) Apply(f playback.Frame) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}

	prev := r.lastStatus
	r.lastStatus = f.Status

	r.state.Title = f.Title
	r.state.CurrentTimeMs = clampMs(f.PositionMs)
	r.state.TotalTimeMs = clampMs(f.LengthMs)
	r.state.Playing = f.Playing()
	r.state.RawStatus = string(f.Status)

	switch {
	case f.Status != playback.StatusPlaying:
		r.supersedeLingerLocked()
		r.state.Caption = string(f.Status)
	case prev != playback.StatusPlaying:
		// Hold the old caption; only the expiry clears it.
		r.supersedeLingerLocked()
		gen := r.lingerGen
		r.lingerTimer = r.clock.AfterFunc(LingerDuration, func() {
			r.expireLinger(gen)
		})
		log.Debug().Str("caption", r.state.Caption).Msg("caption linger started")
	}
	// An empty status while already playing (or lingering) changes
	// nothing about the caption.

	r.emitLocked()
}

// Snapshot returns the current state.
func (r *Reducer) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Close stops the reducer. No callback fires after Close returns and
// later frames are dropped.
func (r *Reducer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.supersedeLingerLocked()
}

// supersedeLingerLocked invalidates any pending linger timer. The timer
// callback checks the generation, so a fire that races this call does
// nothing.
func (r *Reducer) supersedeLingerLocked() {
	r.lingerGen++
	if r.lingerTimer != nil {
		r.lingerTimer.Stop()
		r.lingerTimer = nil
	}
}

func (r *Reducer) expireLinger(gen uint64) {
	r.mu.Lock()
	if r.closed || gen != r.lingerGen {
		// Superseded by a newer status; must not clobber its caption.
		r.mu.Unlock()
		return
	}
	r.lingerTimer = nil
	r.state.Caption = ""
	log.Debug().Msg("caption linger expired")
	r.emitLocked()
}

// emitLocked snapshots the state and invokes the callback outside the
// lock. Callers must hold r.mu; it is released on return.
func (r *Reducer) emitLocked() {
	st := r.state
	cb := r.onChange
	r.mu.Unlock()
	if cb != nil {
		cb(st)
	}
}

func clampMs(ms int) int {
	if ms < 0 {
		return 0
	}
	return ms
}
