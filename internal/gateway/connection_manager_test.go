package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type fakeRelay struct {
	ch chan string
}

func (f *fakeRelay) RelayChat(roomID string, text []byte) error {
	f.ch <- roomID + "|" + string(text)
	return nil
}

func newTestGateway(t *testing.T) (*ConnectionManager, *httptest.Server, *fakeRelay) {
	t.Helper()

	relay := &fakeRelay{ch: make(chan string, 8)}
	cm := NewConnectionManager(DefaultConnectionConfig(), relay)

	ctx, cancel := context.WithCancel(context.Background())
	go cm.Start(ctx)
	t.Cleanup(cancel)

	mux := http.NewServeMux()
	NewStateFeedHandler(cm).RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return cm, ts, relay
}

func dialFeed(t *testing.T, ts *httptest.Server, roomID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/state?room=" + roomID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(msg)
}

func TestBroadcastReachesRoomViewers(t *testing.T) {
	cm, ts, _ := newTestGateway(t)

	viewer := dialFeed(t, ts, "cafe")
	other := dialFeed(t, ts, "annex")
	waitForViewers(t, cm, 2)

	frame := `{"Title":"feature","PositionMs":1000,"LengthMs":60000,"Status":""}`
	cm.BroadcastFrame("cafe", []byte(frame))

	if got := readText(t, viewer); got != frame {
		t.Errorf("viewer got %q", got)
	}

	// The other room must not see the frame.
	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, msg, err := other.ReadMessage(); err == nil {
		t.Errorf("other room received %q", msg)
	}
}

func TestLateJoinerGetsLastFrame(t *testing.T) {
	cm, ts, _ := newTestGateway(t)

	first := dialFeed(t, ts, "cafe")
	waitForViewers(t, cm, 1)

	frame := `{"Title":"feature","PositionMs":5000,"LengthMs":60000,"Status":"▊ PAUSE"}`
	cm.BroadcastFrame("cafe", []byte(frame))
	readText(t, first)

	late := dialFeed(t, ts, "cafe")
	if got := readText(t, late); got != frame {
		t.Errorf("late joiner got %q, want replayed frame", got)
	}
}

func TestViewerChatIsRelayed(t *testing.T) {
	cm, ts, relay := newTestGateway(t)

	viewer := dialFeed(t, ts, "cafe")
	waitForViewers(t, cm, 1)

	if err := viewer.WriteMessage(websocket.TextMessage, []byte("/seek 01:00")); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case got := <-relay.ch:
		if got != "cafe|/seek 01:00" {
			t.Errorf("relayed %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("chat was never relayed")
	}
}

func TestMissingRoomRejected(t *testing.T) {
	_, ts, _ := newTestGateway(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/state"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("dial without room should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Errorf("response = %+v", resp)
	}
}

func waitForViewers(t *testing.T, cm *ConnectionManager, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cm.GetStats().TotalViewers >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("never reached %d viewers", n)
}
