package roster

import (
	"sort"
	"sync"
)

// Synthetic participant identities: automated room members that are
// filtered out of the human roster.
const (
	StreambotIdentity = "streambot"
	ChatbotIdentity   = "chatbot"
)

// IsSynthetic reports whether an identity belongs to an automated
// participant rather than a person.
func IsSynthetic(identity string) bool {
	return identity == StreambotIdentity || identity == ChatbotIdentity
}

// EventKind tags a participant event.
type EventKind string

const (
	EventJoined          EventKind = "joined"
	EventLeft            EventKind = "left"
	EventMetadataChanged EventKind = "metadata_changed"
)

// Event is the normalized participant event. Whatever shape the
// conferencing SDK delivers its callbacks in, the adapter turns them
// into this one tagged struct before they enter the session.
type Event struct {
	Kind     EventKind
	Identity string
	Metadata string
}

// Participant is one member of the room as the roster tracks it.
type Participant struct {
	Identity string
	Metadata string
	Color    string
}

// Roster tracks the participants of one room session and their accent
// colors. It is owned by the session root and passed down explicitly.
type Roster struct {
	mu           sync.Mutex
	participants map[string]Participant
	colors       *ColorAssigner
}

// New creates an empty roster.
func New() *Roster {
	return &Roster{
		participants: make(map[string]Participant),
		colors:       NewColorAssigner(),
	}
}

// Apply folds one participant event into the roster.
func (r *Roster) Apply(ev Event) {
	if ev.Identity == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Kind {
	case EventJoined:
		r.participants[ev.Identity] = Participant{
			Identity: ev.Identity,
			Metadata: ev.Metadata,
			Color:    r.colors.Assign(ev.Identity),
		}
	case EventLeft:
		delete(r.participants, ev.Identity)
		r.colors.Release(ev.Identity)
	case EventMetadataChanged:
		if p, ok := r.participants[ev.Identity]; ok {
			p.Metadata = ev.Metadata
			r.participants[ev.Identity] = p
		}
	}
}

// Color returns the accent color assigned to an identity.
func (r *Roster) Color(identity string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.participants[identity]; ok {
		return p.Color
	}
	return ""
}

// Humans returns the human participants, sorted by identity. Synthetic
// members stay in the roster (the stream tile still needs them) but are
// excluded here.
func (r *Roster) Humans() []Participant {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Participant, 0, len(r.participants))
	for _, p := range r.participants {
		if IsSynthetic(p.Identity) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identity < out[j].Identity })
	return out
}
