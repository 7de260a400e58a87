package caster

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/reelroom/reelroom/internal/playback"
)

// fakeBus captures published frames and loops chat straight back to the
// subscriber.
type fakeBus struct {
	mu      sync.Mutex
	frames  []playback.Frame
	handler func(string)
	emitted chan playback.Frame
}

func newFakeBus() *fakeBus {
	return &fakeBus{emitted: make(chan playback.Frame, 32)}
}

func (b *fakeBus) PublishState(roomID string, frame []byte) error {
	var f playback.Frame
	if err := json.Unmarshal(frame, &f); err != nil {
		return err
	}
	b.mu.Lock()
	b.frames = append(b.frames, f)
	b.mu.Unlock()
	b.emitted <- f
	return nil
}

func (b *fakeBus) SubscribeChat(roomID string, handler func(text string)) (func() error, error) {
	b.mu.Lock()
	b.handler = handler
	b.mu.Unlock()
	return func() error { return nil }, nil
}

func (b *fakeBus) chat(text string) {
	b.mu.Lock()
	handler := b.handler
	b.mu.Unlock()
	handler(text)
}

func (b *fakeBus) waitFrame(t *testing.T) playback.Frame {
	t.Helper()
	select {
	case f := <-b.emitted:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published frame")
		return playback.Frame{}
	}
}

// waitStatus drains published frames until one carries the wanted
// status. Progress reports may interleave with command responses.
func (b *fakeBus) waitStatus(t *testing.T, status playback.Status) playback.Frame {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case f := <-b.emitted:
			if f.Status == status {
				return f
			}
		case <-deadline:
			t.Fatalf("timed out waiting for status %q", status)
			return playback.Frame{}
		}
	}
}

func startSession(t *testing.T, lengthMs int) (*Session, *fakeBus, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	bus := newFakeBus()
	sess := NewSession("cafe", "feature", lengthMs, clock, bus)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		sess.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return sess, bus, clock
}

func TestSessionAnnouncesReady(t *testing.T) {
	_, bus, _ := startSession(t, 60000)

	f := bus.waitFrame(t)
	if f.Status != playback.StatusReady || f.Title != "feature" || f.LengthMs != 60000 {
		t.Errorf("initial frame = %+v", f)
	}
}

func TestSessionLiveFeedWithoutTape(t *testing.T) {
	sess, bus, _ := startSession(t, 0)

	f := bus.waitFrame(t)
	if f.Status != playback.StatusLive {
		t.Errorf("initial frame = %+v", f)
	}

	// No tape means no transport commands.
	bus.chat("/play")
	if sess.Deck().Rolling() {
		t.Error("play should be ignored with no tape")
	}
}

func TestSeekCommand(t *testing.T) {
	sess, bus, _ := startSession(t, 120000)
	bus.waitFrame(t)

	bus.chat("/seek 01:00")
	f := bus.waitFrame(t)
	if f.PositionMs != 60000 || f.Status != playback.StatusStarting {
		t.Errorf("frame after seek = %+v", f)
	}
	if !sess.Deck().Rolling() {
		t.Error("seek should start the deck")
	}
}

func TestPauseCommand(t *testing.T) {
	sess, bus, clock := startSession(t, 120000)
	bus.waitFrame(t)
	clock.BlockUntil(1)

	bus.chat("/play 00:30")
	bus.waitStatus(t, playback.StatusStarting)
	clock.Advance(2 * time.Second)

	bus.chat("/pause")
	f := bus.waitStatus(t, playback.StatusPaused)
	if f.PositionMs != 32000 {
		t.Errorf("paused at %d, want 32000", f.PositionMs)
	}
	if sess.Deck().Rolling() {
		t.Error("pause should stop the deck")
	}
}

func TestBackClampsAtStart(t *testing.T) {
	_, bus, _ := startSession(t, 120000)
	bus.waitFrame(t)

	bus.chat("/seek 00:05")
	bus.waitFrame(t)

	bus.chat("/back 30")
	f := bus.waitFrame(t)
	if f.PositionMs != 0 || f.Status != playback.StatusBack {
		t.Errorf("frame after back = %+v", f)
	}
}

func TestForwardDefaultSkip(t *testing.T) {
	_, bus, _ := startSession(t, 120000)
	bus.waitFrame(t)

	bus.chat("/seek 00:30")
	bus.waitFrame(t)

	bus.chat("/fwd")
	f := bus.waitFrame(t)
	if f.PositionMs != 40000 || f.Status != playback.StatusFwd {
		t.Errorf("frame after fwd = %+v", f)
	}
}

func TestUnknownAndPlainChatIgnored(t *testing.T) {
	_, bus, _ := startSession(t, 120000)
	bus.waitFrame(t)

	bus.chat("/eject")
	bus.chat("great movie!")
	bus.chat("")

	select {
	case f := <-bus.emitted:
		t.Errorf("unexpected frame %+v", f)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestProgressUpdatesPublish(t *testing.T) {
	_, bus, clock := startSession(t, 120000)
	bus.waitFrame(t)
	clock.BlockUntil(1)

	bus.chat("/play 00:00")
	bus.waitStatus(t, playback.StatusStarting)

	clock.Advance(time.Second)
	f := bus.waitStatus(t, playback.StatusPlaying)
	if f.PositionMs != 1000 {
		t.Errorf("progress frame = %+v", f)
	}
}
