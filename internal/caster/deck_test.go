package caster

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestDeckAdvancesWhileRolling(t *testing.T) {
	clock := clockwork.NewFakeClock()
	deck := NewDeck(clock, 60000)

	deck.Start(0)
	clock.Advance(5 * time.Second)
	if pos := deck.Position(); pos != 5000 {
		t.Errorf("position = %d, want 5000", pos)
	}

	deck.Stop()
	clock.Advance(5 * time.Second)
	if pos := deck.Position(); pos != 5000 {
		t.Errorf("position moved while stopped: %d", pos)
	}
}

func TestDeckStartClamps(t *testing.T) {
	clock := clockwork.NewFakeClock()
	deck := NewDeck(clock, 60000)

	deck.Start(-500)
	if pos := deck.Position(); pos != 0 {
		t.Errorf("position = %d, want clamp to 0", pos)
	}

	deck.Start(90000)
	if pos := deck.Position(); pos != 60000 {
		t.Errorf("position = %d, want clamp to length", pos)
	}
}

func TestDeckWithoutTapeNeverRolls(t *testing.T) {
	clock := clockwork.NewFakeClock()
	deck := NewDeck(clock, 0)

	deck.Start(0)
	if deck.Rolling() {
		t.Error("deck with no tape should not roll")
	}
}

func TestDeckEmitsProgressAndFinishes(t *testing.T) {
	clock := clockwork.NewFakeClock()
	deck := NewDeck(clock, 2500)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go deck.Run(ctx)

	// Let Run register its ticker before advancing.
	clock.BlockUntil(1)
	deck.Start(0)

	clock.Advance(time.Second)
	u := waitUpdate(t, deck)
	if u.PositionMs != 1000 || u.Finished {
		t.Errorf("first update = %+v", u)
	}

	clock.Advance(time.Second)
	u = waitUpdate(t, deck)
	if u.PositionMs != 2000 || u.Finished {
		t.Errorf("second update = %+v", u)
	}

	// The tape runs out mid-tick; the deck clamps and reports the end.
	clock.Advance(time.Second)
	u = waitUpdate(t, deck)
	if u.PositionMs != 2500 || !u.Finished {
		t.Errorf("final update = %+v", u)
	}
	if deck.Rolling() {
		t.Error("deck should stop at end of tape")
	}
}

func waitUpdate(t *testing.T, deck *Deck) DeckUpdate {
	t.Helper()
	select {
	case u := <-deck.Updates():
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for deck update")
		return DeckUpdate{}
	}
}
