package caster

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DeckUpdate is one progress report from the deck while the tape rolls.
type DeckUpdate struct {
	PositionMs int
	Finished   bool
}

// Deck models the playback transport of a loaded tape: a position that
// advances in real time while rolling and can be restarted at any
// offset. It stands in front of whatever actually produces the media;
// the session only cares about position progress.
type Deck struct {
	clock   clockwork.Clock
	updates chan DeckUpdate

	mu        sync.Mutex
	lengthMs  int
	baseMs    int
	startedAt time.Time
	rolling   bool
}

// NewDeck creates a deck for a tape of lengthMs. A zero length means no
// tape is loaded and the deck never rolls.
func NewDeck(clock clockwork.Clock, lengthMs int) *Deck {
	return &Deck{
		clock:    clock,
		lengthMs: lengthMs,
		updates:  make(chan DeckUpdate, 16),
	}
}

// Updates delivers progress reports emitted by Run.
func (d *Deck) Updates() <-chan DeckUpdate {
	return d.updates
}

// LengthMs returns the loaded tape length.
func (d *Deck) LengthMs() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lengthMs
}

// Start begins (or restarts) playback at fromMs, clamped to the tape.
func (d *Deck) Start(fromMs int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lengthMs <= 0 {
		return
	}
	if fromMs < 0 {
		fromMs = 0
	}
	if fromMs > d.lengthMs {
		fromMs = d.lengthMs
	}
	d.baseMs = fromMs
	d.startedAt = d.clock.Now()
	d.rolling = true
}

// SetPosition moves the stopped position without starting playback. A
// rolling deck keeps rolling from the new offset.
func (d *Deck) SetPosition(posMs int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if posMs < 0 {
		posMs = 0
	}
	if d.lengthMs > 0 && posMs > d.lengthMs {
		posMs = d.lengthMs
	}
	d.baseMs = posMs
	d.startedAt = d.clock.Now()
}

// Stop halts playback, freezing the position where it is.
func (d *Deck) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rolling {
		d.baseMs = d.positionLocked()
		d.rolling = false
	}
}

// Rolling reports whether the tape is advancing.
func (d *Deck) Rolling() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rolling
}

// Position returns the current playback position.
func (d *Deck) Position() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.positionLocked()
}

func (d *Deck) positionLocked() int {
	if !d.rolling {
		return d.baseMs
	}
	pos := d.baseMs + int(d.clock.Since(d.startedAt)/time.Millisecond)
	if d.lengthMs > 0 && pos > d.lengthMs {
		pos = d.lengthMs
	}
	return pos
}

// Run emits a progress update every second while rolling, until the
// context is cancelled. Reaching the end of the tape stops the deck and
// emits a final update with Finished set.
func (d *Deck) Run(ctx context.Context) {
	ticker := d.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			d.mu.Lock()
			if !d.rolling {
				d.mu.Unlock()
				continue
			}
			pos := d.positionLocked()
			finished := d.lengthMs > 0 && pos >= d.lengthMs
			if finished {
				d.baseMs = d.lengthMs
				d.rolling = false
			}
			d.mu.Unlock()

			select {
			case d.updates <- DeckUpdate{PositionMs: pos, Finished: finished}:
			default:
				// A stalled consumer only loses intermediate reports.
			}
		}
	}
}
