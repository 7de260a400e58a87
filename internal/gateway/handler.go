package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// StateFeedHandler handles WebSocket upgrade requests for room state
// feeds.
type StateFeedHandler struct {
	connectionManager *ConnectionManager
}

// NewStateFeedHandler creates a state feed handler.
func NewStateFeedHandler(cm *ConnectionManager) *StateFeedHandler {
	return &StateFeedHandler{connectionManager: cm}
}

// HandleStateFeed subscribes the caller to a room's state feed.
func (h *StateFeedHandler) HandleStateFeed(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		http.Error(w, "room is required", http.StatusBadRequest)
		return
	}

	if err := h.connectionManager.UpgradeViewer(w, r, roomID); err != nil {
		log.Error().
			Err(err).
			Str("room_id", roomID).
			Msg("failed to upgrade state feed connection")
		// Upgrade has already written its error response.
	}
}

// HandleStats reports active viewer connections.
func (h *StateFeedHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.connectionManager.GetStats()); err != nil {
		log.Error().Err(err).Msg("failed to write stats response")
	}
}

// RegisterRoutes registers the feed routes with an HTTP mux.
func (h *StateFeedHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/state", h.HandleStateFeed)
	mux.HandleFunc("/state/stats", h.HandleStats)
}
