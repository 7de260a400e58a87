package gateway

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ChatRelay forwards chat/command text received from a viewer onto the
// room's chat channel.
type ChatRelay interface {
	RelayChat(roomID string, text []byte) error
}

// ConnectionManager owns the viewer WebSocket connections of every room
// and fans state frames out to them. Inbound text from a viewer is
// ordinary chat (including slash commands) and is handed to the relay.
type ConnectionManager struct {
	roomViewers map[string]map[*Viewer]bool
	// lastFrame lets a late joiner render the timeline immediately
	// instead of waiting for the next state change.
	lastFrame map[string][]byte
	mu        sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig
	chat     ChatRelay

	broadcastCh chan broadcast
}

// Viewer is one WebSocket connection to a room's state feed.
type Viewer struct {
	ID      string
	RoomID  string
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time
	LastPing    time.Time
}

type broadcast struct {
	roomID string
	frame  []byte
}

// ConnectionConfig holds configuration for viewer connections.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns default viewer connection settings.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// NewConnectionManager creates a manager. chat may be nil, in which case
// inbound viewer text is dropped.
func NewConnectionManager(config ConnectionConfig, chat ChatRelay) *ConnectionManager {
	return &ConnectionManager{
		roomViewers: make(map[string]map[*Viewer]bool),
		lastFrame:   make(map[string][]byte),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		chat:        chat,
		broadcastCh: make(chan broadcast, 1000),
	}
}

// Start begins processing broadcasts until the context is cancelled.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case b := <-cm.broadcastCh:
			cm.handleBroadcast(b)
		}
	}
}

// UpgradeViewer upgrades an HTTP request to a viewer connection and
// starts its pumps. The room's last frame, if any, is queued first.
func (cm *ConnectionManager) UpgradeViewer(w http.ResponseWriter, r *http.Request, roomID string) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	viewer := &Viewer{
		ID:          uuid.New().String(),
		RoomID:      roomID,
		Conn:        conn,
		Send:        make(chan []byte, 256),
		Manager:     cm,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}

	cm.registerViewer(viewer)

	go viewer.writePump()
	go viewer.readPump()

	log.Info().
		Str("viewer_id", viewer.ID).
		Str("room_id", roomID).
		Msg("viewer connected")

	return nil
}

func (cm *ConnectionManager) registerViewer(v *Viewer) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.roomViewers[v.RoomID] == nil {
		cm.roomViewers[v.RoomID] = make(map[*Viewer]bool)
	}
	cm.roomViewers[v.RoomID][v] = true

	// Replay the latest frame so the timeline renders without waiting.
	if frame, ok := cm.lastFrame[v.RoomID]; ok {
		v.Send <- frame
	}

	log.Debug().
		Str("viewer_id", v.ID).
		Str("room_id", v.RoomID).
		Int("room_viewers", len(cm.roomViewers[v.RoomID])).
		Msg("viewer registered")
}

func (cm *ConnectionManager) unregisterViewer(v *Viewer) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if viewers, exists := cm.roomViewers[v.RoomID]; exists {
		if _, exists := viewers[v]; exists {
			delete(viewers, v)
			close(v.Send)

			if len(viewers) == 0 {
				delete(cm.roomViewers, v.RoomID)
			}

			log.Info().
				Str("viewer_id", v.ID).
				Str("room_id", v.RoomID).
				Msg("viewer disconnected")
		}
	}
}

// BroadcastFrame queues a state frame for every viewer of a room.
func (cm *ConnectionManager) BroadcastFrame(roomID string, frame []byte) {
	select {
	case cm.broadcastCh <- broadcast{roomID: roomID, frame: frame}:
	default:
		log.Warn().Str("room_id", roomID).Msg("broadcast channel full, dropping frame")
	}
}

func (cm *ConnectionManager) handleBroadcast(b broadcast) {
	cm.mu.Lock()
	cm.lastFrame[b.roomID] = b.frame
	viewers := make([]*Viewer, 0, len(cm.roomViewers[b.roomID]))
	for v := range cm.roomViewers[b.roomID] {
		viewers = append(viewers, v)
	}
	cm.mu.Unlock()

	for _, v := range viewers {
		select {
		case v.Send <- b.frame:
		default:
			// Viewer is slow or dead; drop it rather than stall the room.
			log.Warn().
				Str("viewer_id", v.ID).
				Str("room_id", v.RoomID).
				Msg("viewer send buffer full, closing connection")
			cm.unregisterViewer(v)
			v.Conn.Close()
		}
	}

	log.Debug().
		Str("room_id", b.roomID).
		Int("viewers", len(viewers)).
		Msg("frame broadcasted")
}

// Stats describes the manager's active connections.
type Stats struct {
	TotalViewers int            `json:"total_viewers"`
	ActiveRooms  int            `json:"active_rooms"`
	RoomViewers  map[string]int `json:"room_viewers"`
}

// GetStats returns statistics about active viewer connections.
func (cm *ConnectionManager) GetStats() Stats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	stats := Stats{RoomViewers: make(map[string]int)}
	for roomID, viewers := range cm.roomViewers {
		stats.TotalViewers += len(viewers)
		stats.RoomViewers[roomID] = len(viewers)
	}
	stats.ActiveRooms = len(cm.roomViewers)
	return stats
}

// writePump sends queued frames and periodic pings to the viewer.
func (v *Viewer) writePump() {
	ticker := time.NewTicker(v.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		v.Conn.Close()
		v.Manager.unregisterViewer(v)
	}()

	for {
		select {
		case frame, ok := <-v.Send:
			v.Conn.SetWriteDeadline(time.Now().Add(v.Manager.config.WriteTimeout))
			if !ok {
				v.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := v.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Error().
					Err(err).
					Str("viewer_id", v.ID).
					Msg("failed to write frame")
				return
			}

		case <-ticker.C:
			v.Conn.SetWriteDeadline(time.Now().Add(v.Manager.config.WriteTimeout))
			if err := v.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			v.LastPing = time.Now()
		}
	}
}

// readPump receives chat text from the viewer and relays it to the room.
func (v *Viewer) readPump() {
	defer func() {
		v.Manager.unregisterViewer(v)
		v.Conn.Close()
	}()

	v.Conn.SetReadLimit(v.Manager.config.MaxMessageSize)
	v.Conn.SetReadDeadline(time.Now().Add(v.Manager.config.ReadTimeout))
	v.Conn.SetPongHandler(func(string) error {
		v.Conn.SetReadDeadline(time.Now().Add(v.Manager.config.ReadTimeout))
		v.LastPing = time.Now()
		return nil
	})

	for {
		_, message, err := v.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("viewer_id", v.ID).
					Msg("unexpected viewer close")
			}
			break
		}

		if v.Manager.chat == nil {
			continue
		}
		if err := v.Manager.chat.RelayChat(v.RoomID, message); err != nil {
			log.Error().
				Err(err).
				Str("viewer_id", v.ID).
				Str("room_id", v.RoomID).
				Msg("failed to relay chat")
		}
		v.Conn.SetReadDeadline(time.Now().Add(v.Manager.config.ReadTimeout))
	}
}
