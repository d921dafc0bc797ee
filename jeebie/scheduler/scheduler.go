// Package scheduler drives the Game Boy's cooperative catch-up loop: one CPU
// instruction at a time, with every peripheral ticked by the machine-cycle
// cost of that instruction before the next one is fetched.
package scheduler

import (
	"fmt"
	"os"

	"github.com/arlojensen/pocketcore/jeebie/cpu"
	"github.com/arlojensen/pocketcore/jeebie/memory"
	"github.com/arlojensen/pocketcore/jeebie/timing"
	"github.com/arlojensen/pocketcore/jeebie/video"
)

// Scheduler owns one Game Boy's worth of CPU/MMU/GPU and advances them in
// lockstep. Every CPU instruction's memory effects are visible to the
// peripherals it ticks, and vice versa for the next instruction, because
// nothing here runs concurrently with anything else.
type Scheduler struct {
	CPU *cpu.CPU
	MMU *memory.MMU
	GPU *video.GPU

	instructionCount uint64
	frameCount       uint64
}

// New builds a Scheduler around mmu, constructing a fresh CPU and GPU on it.
func New(mmu *memory.MMU) *Scheduler {
	s := &Scheduler{
		CPU: cpu.New(mmu),
		MMU: mmu,
		GPU: video.NewGpu(mmu),
	}
	mmu.SetStopWakeHandler(s.CPU.WakeFromStop)
	return s
}

// NewWithFile loads a ROM file and wires up a Scheduler to run it.
func NewWithFile(path string) (*Scheduler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ROM: %w", err)
	}

	cart, err := memory.NewCartridgeWithData(data)
	if err != nil {
		return nil, fmt.Errorf("loading cartridge: %w", err)
	}

	return New(memory.NewWithCartridge(cart)), nil
}

// RunUntilFrame executes instructions until a full frame's worth of machine
// cycles (17556) has elapsed, catching up every peripheral after each
// instruction, per the scheduler loop in the spec's timing model:
//
//  1. interrupt dispatch (may add cycles, may clear HALT/STOP) happens
//     inside CPU.Step, before the instruction itself is fetched.
//  2. the instruction executes; its machine-cycle cost is added to the
//     frame budget.
//  3. the joypad needs no periodic step here: key edges are delivered
//     synchronously by HandleKeyPress/HandleKeyRelease from the host, so
//     there is nothing to sample mid-frame.
//  4. the DMA unit, timer and serial port are advanced by the MMU's own
//     Tick, which runs them exactly the instruction's cycle count.
//  5. the PPU and APU are advanced by the same cycle count; both
//     self-pace internally against their own accumulators, so ticking
//     them by an arbitrary number of machine cycles at once is equivalent
//     to stepping them one cycle at a time up to that budget.
//  6. once the budget reaches a frame, it resets and the loop returns.
func (s *Scheduler) RunUntilFrame() {
	budget := 0

	for budget < timing.MachineCyclesPerFrame {
		cycles := s.CPU.Step()

		s.MMU.Tick(cycles)
		s.MMU.APU.Tick(cycles)
		s.GPU.Tick(cycles)

		s.instructionCount++
		budget += cycles
	}

	s.frameCount++
}

// GetCurrentFrame returns the most recently completed frame's pixel data.
func (s *Scheduler) GetCurrentFrame() *video.FrameBuffer {
	return s.GPU.GetFrameBuffer()
}

// HandleKeyPress forwards a key press to the joypad.
func (s *Scheduler) HandleKeyPress(key memory.JoypadKey) {
	s.MMU.HandleKeyPress(key)
}

// HandleKeyRelease forwards a key release to the joypad.
func (s *Scheduler) HandleKeyRelease(key memory.JoypadKey) {
	s.MMU.HandleKeyRelease(key)
}

// GetInstructionCount returns the number of CPU instructions executed so far.
func (s *Scheduler) GetInstructionCount() uint64 {
	return s.instructionCount
}

// GetFrameCount returns the number of frames completed so far.
func (s *Scheduler) GetFrameCount() uint64 {
	return s.frameCount
}
