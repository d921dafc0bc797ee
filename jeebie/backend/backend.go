package backend

import (
	"github.com/arlojensen/pocketcore/jeebie/audio"
	"github.com/arlojensen/pocketcore/jeebie/input/action"
	"github.com/arlojensen/pocketcore/jeebie/input/event"
	"github.com/arlojensen/pocketcore/jeebie/video"
)

// InputEvent represents an input event from a backend
type InputEvent struct {
	Action action.Action
	Type   event.Type
}

// Backend is a host adapter: it turns a rendered frame into pixels on a
// screen, an audio.Source into sound, and raw platform events into
// InputEvents. It never touches emulation state directly.
type Backend interface {
	// Init prepares the backend (opening a window, audio device, etc.) from
	// config. Called once before the first Update.
	Init(config BackendConfig) error

	// Update presents frame, drains and plays whatever audio is available,
	// and returns the InputEvents collected since the previous call.
	Update(frame *video.FrameBuffer) ([]InputEvent, error)

	// Cleanup releases any resources Init acquired.
	Cleanup() error
}

// BackendConfig configures a Backend at Init time. Audio is optional: a
// nil Audio means the backend runs video/input only.
type BackendConfig struct {
	Title      string
	Scale      int
	VSync      bool
	Fullscreen bool
	Audio      audio.Source
}
