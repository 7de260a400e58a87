package statefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/reelroom/reelroom/internal/playback"
)

// Config holds connection settings for a state feed client.
type Config struct {
	// BaseURL is the room's base connection URL; the feed endpoint is
	// derived from it. http(s) schemes are accepted and rewritten.
	BaseURL string
	// RoomID is attached as the room query parameter.
	RoomID string

	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration

	// ReconnectWait is the initial delay before redialing a dropped
	// feed; it doubles per attempt up to MaxReconnectWait.
	ReconnectWait    time.Duration
	MaxReconnectWait time.Duration
}

// DefaultConfig returns feed client settings for a room.
func DefaultConfig(baseURL, roomID string) Config {
	return Config{
		BaseURL:          baseURL,
		RoomID:           roomID,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		ReconnectWait:    1 * time.Second,
		MaxReconnectWait: 30 * time.Second,
	}
}

// FeedURL derives the state feed endpoint from a room base URL: the
// path is replaced with the state subscription path and the room id is
// passed as a query parameter.
func FeedURL(baseURL, roomID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid scheme: %s", u.Scheme)
	}
	u.Path = "/state"
	u.Fragment = ""
	q := url.Values{}
	if roomID != "" {
		q.Set("room", roomID)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Client maintains exactly one live WebSocket connection to a room's
// state feed and delivers decoded frames in arrival order. The same
// socket carries outbound chat text, which is how seek commands reach
// the room.
type Client struct {
	cfg     Config
	feedURL string
	clock   clockwork.Clock
	onFrame func(playback.Frame)

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// NewClient creates a feed client. onFrame is invoked once per decoded
// frame; malformed frames are logged and dropped before it is called.
func NewClient(cfg Config, clock clockwork.Clock, onFrame func(playback.Frame)) (*Client, error) {
	feedURL, err := FeedURL(cfg.BaseURL, cfg.RoomID)
	if err != nil {
		return nil, err
	}
	return &Client{
		cfg:     cfg,
		feedURL: feedURL,
		clock:   clock,
		onFrame: onFrame,
	}, nil
}

// URL returns the derived feed endpoint.
func (c *Client) URL() string {
	return c.feedURL
}

// Run dials the feed and processes frames until the context is
// cancelled or the client is closed, redialing dropped connections with
// capped exponential backoff. Dial failures leave the consumer without
// timeline data rather than surfacing an error.
func (c *Client) Run(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.HandshakeTimeout}
	wait := c.cfg.ReconnectWait

	for {
		if c.isClosed() {
			return nil
		}

		conn, _, err := dialer.DialContext(ctx, c.feedURL, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error().Err(err).Str("url", c.feedURL).Msg("state feed dial failed")
		} else {
			if !c.adoptConn(conn) {
				conn.Close()
				return nil
			}
			log.Info().Str("url", c.feedURL).Msg("state feed connected")
			wait = c.cfg.ReconnectWait
			c.readLoop(conn)
			c.dropConn(conn)
		}

		if c.isClosed() {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-c.clock.After(wait):
		}
		wait *= 2
		if wait > c.cfg.MaxReconnectWait {
			wait = c.cfg.MaxReconnectWait
		}
	}
}

// Send writes chat/command text to the feed socket.
func (c *Client) Send(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("feed client closed")
	}
	if c.conn == nil {
		return fmt.Errorf("feed not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// Close tears down the socket. No frame is delivered after Close
// returns; a Run in progress unwinds.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && !c.isClosed() {
				log.Error().Err(err).Msg("state feed read failed")
			}
			return
		}

		var f playback.Frame
		if err := json.Unmarshal(message, &f); err != nil {
			// One bad frame must not take down the feed.
			log.Error().Err(err).Msg("malformed state frame, dropping")
			continue
		}

		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return
		}
		c.onFrame(f)
	}
}

// adoptConn installs a new socket, closing any previous one so the
// client never holds two live connections. Returns false if the client
// was closed while dialing.
func (c *Client) adoptConn(conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	if c.conn != nil {
		c.conn.Close()
	}
	c.conn = conn
	return true
}

func (c *Client) dropConn(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	conn.Close()
	if c.conn == conn {
		c.conn = nil
	}
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
