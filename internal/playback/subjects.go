package playback

import (
	"fmt"
	"strings"
)

// Room bus subjects. The caster publishes state frames and subscribes to
// chat; the gateway does the reverse on behalf of its viewers.

// StateSubject is the subject a room's state frames are published on.
func StateSubject(roomID string) string {
	return fmt.Sprintf("room.%s.state", roomID)
}

// ChatSubject is the subject a room's chat and command text is relayed on.
func ChatSubject(roomID string) string {
	return fmt.Sprintf("room.%s.chat", roomID)
}

// StateWildcard matches state subjects for every room.
const StateWildcard = "room.*.state"

// RoomFromStateSubject extracts the room id from a state subject, or ""
// if the subject has a different shape.
func RoomFromStateSubject(subject string) string {
	parts := strings.Split(subject, ".")
	if len(parts) != 3 || parts[0] != "room" || parts[2] != "state" {
		return ""
	}
	return parts[1]
}
