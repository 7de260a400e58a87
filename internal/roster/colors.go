package roster

import "sync"

// palette is 12 distinct low-saturation hues for participant accents.
var palette = [...]string{
	"hsl(0, 35%, 55%)",
	"hsl(30, 35%, 55%)",
	"hsl(60, 35%, 55%)",
	"hsl(90, 35%, 50%)",
	"hsl(120, 35%, 45%)",
	"hsl(150, 35%, 45%)",
	"hsl(180, 35%, 50%)",
	"hsl(210, 35%, 55%)",
	"hsl(240, 35%, 60%)",
	"hsl(270, 35%, 60%)",
	"hsl(300, 35%, 55%)",
	"hsl(330, 35%, 55%)",
}

// paletteStride spaces consecutive assignments three hues apart so
// adjacent participants contrast.
const paletteStride = 3

// ColorAssigner hands out palette colors to participant identities.
// Assignment order is deterministic: the nth distinct identity gets
// palette[(n*stride) mod len]. Each assigner is owned by one session;
// nothing leaks across rooms.
type ColorAssigner struct {
	mu     sync.Mutex
	colors map[string]string
	next   int
}

// NewColorAssigner creates an empty assigner.
func NewColorAssigner() *ColorAssigner {
	return &ColorAssigner{colors: make(map[string]string)}
}

// Assign returns the color for an identity, allocating one on first
// sight. An empty identity gets no color.
func (a *ColorAssigner) Assign(identity string) string {
	if identity == "" {
		return ""
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if color, ok := a.colors[identity]; ok {
		return color
	}
	color := palette[(a.next*paletteStride)%len(palette)]
	a.colors[identity] = color
	a.next++
	return color
}

// Release forgets an identity's assignment.
func (a *ColorAssigner) Release(identity string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.colors, identity)
}

// Reset forgets every assignment and restarts the palette walk.
func (a *ColorAssigner) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.colors = make(map[string]string)
	a.next = 0
}
