package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/arlojensen/pocketcore/jeebie/backend"
	"github.com/arlojensen/pocketcore/jeebie/backend/headless"
	"github.com/arlojensen/pocketcore/jeebie/backend/sdl2"
	"github.com/arlojensen/pocketcore/jeebie/input"
	"github.com/arlojensen/pocketcore/jeebie/input/action"
	"github.com/arlojensen/pocketcore/jeebie/input/event"
	"github.com/arlojensen/pocketcore/jeebie/memory"
	"github.com/arlojensen/pocketcore/jeebie/scheduler"
	"github.com/arlojensen/pocketcore/jeebie/timing"
)

func main() {
	app := cli.NewApp()
	app.Name = "pocketcore"
	app.Description = "A Game Boy emulator core"
	app.Usage = "pocketcore [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without a graphical interface",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
			Value: 0,
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("pocketcore exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	s, err := scheduler.NewWithFile(romPath)
	if err != nil {
		return err
	}

	var be backend.Backend
	var limiter timing.Limiter
	if c.Bool("headless") {
		frames := c.Int("frames")
		if frames <= 0 {
			return errors.New("headless mode requires --frames option with a positive value")
		}
		be = headless.New(frames)
		// Headless runs (CI, test harnesses) want to finish as fast as the
		// host can go, not at Game Boy real-time speed.
		limiter = timing.NewNoOpLimiter()
	} else {
		be = sdl2.New()
		limiter = timing.NewAdaptiveLimiter()
	}

	config := backend.BackendConfig{
		Title: "pocketcore",
		Audio: s.MMU.APU,
	}
	if err := be.Init(config); err != nil {
		return err
	}
	defer be.Cleanup()

	handler := input.NewHandler()

	for {
		s.RunUntilFrame()
		limiter.WaitForNextFrame()

		events, err := be.Update(s.GetCurrentFrame())
		if err != nil {
			return err
		}

		quit := false
		for _, evt := range events {
			if !handler.ProcessEvent(evt) {
				continue
			}
			if applyEvent(s, evt) {
				quit = true
			}
		}
		if quit {
			break
		}
	}

	slog.Info("emulation stopped", "frames", s.GetFrameCount(), "instructions", s.GetInstructionCount())
	return nil
}

// applyEvent forwards a Game Boy button event to the scheduler's joypad and
// reports whether the event requested emulator shutdown.
func applyEvent(s *scheduler.Scheduler, evt backend.InputEvent) bool {
	if evt.Action == action.EmulatorQuit {
		return evt.Type != event.Release
	}

	key, ok := joypadKeyFor(evt.Action)
	if !ok {
		return false
	}

	switch evt.Type {
	case event.Press, event.Hold:
		s.HandleKeyPress(key)
	case event.Release:
		s.HandleKeyRelease(key)
	}

	return false
}

func joypadKeyFor(a action.Action) (memory.JoypadKey, bool) {
	switch a {
	case action.GBButtonA:
		return memory.JoypadA, true
	case action.GBButtonB:
		return memory.JoypadB, true
	case action.GBButtonStart:
		return memory.JoypadStart, true
	case action.GBButtonSelect:
		return memory.JoypadSelect, true
	case action.GBDPadUp:
		return memory.JoypadUp, true
	case action.GBDPadDown:
		return memory.JoypadDown, true
	case action.GBDPadLeft:
		return memory.JoypadLeft, true
	case action.GBDPadRight:
		return memory.JoypadRight, true
	default:
		return 0, false
	}
}
