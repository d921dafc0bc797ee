package input

import (
	"time"

	"github.com/arlojensen/pocketcore/jeebie/backend"
	"github.com/arlojensen/pocketcore/jeebie/input/action"
	"github.com/arlojensen/pocketcore/jeebie/input/event"
)

// defaultDebounce is how long a Press or Release of the same action is
// suppressed for after the last one went through, so a single noisy host
// keypress doesn't register as a held-down repeat.
const defaultDebounce = 300 * time.Millisecond

// Handler debounces Press/Release input events before they reach emulation
// or UI actions; Hold events always pass through untouched.
type Handler struct {
	lastFired map[action.Action]time.Time
	debounce  time.Duration
}

// NewHandler returns a Handler using defaultDebounce.
func NewHandler() *Handler {
	return &Handler{
		lastFired: make(map[action.Action]time.Time),
		debounce:  defaultDebounce,
	}
}

// ProcessEvent reports whether evt should be acted on. Press and Release
// events within debounce of the previous one for the same action are
// suppressed; every other event type always passes.
func (h *Handler) ProcessEvent(evt backend.InputEvent) bool {
	if evt.Type != event.Press && evt.Type != event.Release {
		return true
	}

	now := time.Now()
	if last, seen := h.lastFired[evt.Action]; seen && now.Sub(last) < h.debounce {
		return false
	}
	h.lastFired[evt.Action] = now
	return true
}
