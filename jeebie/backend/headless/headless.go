// Package headless implements a Backend that drives emulation for a fixed
// number of frames without any windowing system, for batch runs and tests.
package headless

import (
	"log/slog"

	"github.com/arlojensen/pocketcore/jeebie/backend"
	"github.com/arlojensen/pocketcore/jeebie/input/action"
	"github.com/arlojensen/pocketcore/jeebie/input/event"
	"github.com/arlojensen/pocketcore/jeebie/video"
)

// Backend runs emulation for a configured number of frames, then signals quit.
type Backend struct {
	maxFrames  int
	frameCount int
}

// New creates a headless backend that quits after maxFrames Update calls.
func New(maxFrames int) *Backend {
	return &Backend{maxFrames: maxFrames}
}

func (h *Backend) Init(config backend.BackendConfig) error {
	slog.Info("running headless mode", "frames", h.maxFrames)
	return nil
}

// Update counts the frame and signals quit once maxFrames is reached.
func (h *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	h.frameCount++

	if h.frameCount%10 == 0 {
		slog.Info("frame progress", "completed", h.frameCount, "total", h.maxFrames)
	}

	if h.frameCount >= h.maxFrames {
		slog.Info("headless execution completed", "frames", h.maxFrames)
		return []backend.InputEvent{{Action: action.EmulatorQuit, Type: event.Press}}, nil
	}

	return nil, nil
}

func (h *Backend) Cleanup() error {
	return nil
}
