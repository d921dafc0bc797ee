package memory

import (
	"fmt"
	"log/slog"

	"github.com/arlojensen/pocketcore/jeebie/addr"
	"github.com/arlojensen/pocketcore/jeebie/audio"
	"github.com/arlojensen/pocketcore/jeebie/serial"
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionUnused
	regionIO
	regionHRAM
)

// bootstrapROM is a minimal 256-byte bootstrap blob: it does nothing but
// fall through to the cartridge entry point at 0x0100 immediately, since
// register/IO defaults are already applied by CPU.New and MMU.New. Real
// hardware runs a logo-check routine here; that behavior is out of scope.
var bootstrapROM = func() [256]byte {
	var rom [256]byte
	rom[0] = 0xC3 // JP 0x0100
	rom[1] = 0x00
	rom[2] = 0x01
	return rom
}()

// SerialPort is the minimal interface for a serial device connected to SB/SC.
// Implementations MUST only accept reads/writes to addr.SB and addr.SC.
type SerialPort interface {
	Write(address uint16, value byte)
	Read(address uint16) byte
	Tick(cycles int)
	Reset()
}

// MMU allows access to all memory mapped I/O and data/registers
type MMU struct {
	cart      *Cartridge
	mbc       MBC
	memory    []byte
	APU       *audio.APU
	regionMap [256]memRegion

	joypad *Joypad
	serial SerialPort
	timer  Timer
	dma    dma

	bootstrapMapped bool
}

// New creates a new memory unity with default data, i.e. nothing cartridge loaded.
// Equivalent to turning on a Gameboy without a cartridge in.
func New() *MMU {
	mmu := &MMU{
		memory:          make([]byte, 0x10000),
		cart:            NewCartridge(),
		APU:             audio.New(),
		joypad:          NewJoypad(),
		bootstrapMapped: true,
	}
	mmu.serial = serial.NewLogSink(func() { mmu.RequestInterrupt(addr.SerialInterrupt) })
	mmu.timer.TimerInterruptHandler = func() { mmu.RequestInterrupt(addr.TimerInterrupt) }
	mmu.joypad.InterruptHandler = func() { mmu.RequestInterrupt(addr.JoypadInterrupt) }
	initRegionMap(mmu)
	mmu.applyPostBootDefaults()
	return mmu
}

// applyPostBootDefaults seeds the IO registers to the values they hold right
// after the real boot ROM hands control to the cartridge.
func (m *MMU) applyPostBootDefaults() {
	m.memory[addr.LCDC] = 0x91
	m.memory[addr.BGP] = 0xFC
	m.memory[addr.OBP0] = 0xFF
	m.memory[addr.OBP1] = 0xFF
	// Audio registers live in the APU; NR52 goes first so the APU is powered
	// on and accepts the rest.
	m.APU.WriteRegister(addr.NR52, 0xF1)
	m.APU.WriteRegister(addr.NR10, 0x80)
	m.APU.WriteRegister(addr.NR11, 0xBF)
	m.APU.WriteRegister(addr.NR50, 0x77)
	m.APU.WriteRegister(addr.NR51, 0xF3)
}

// Tick advances any i/o that needs it, if any.
func (m *MMU) Tick(cycles int) {
	m.timer.Tick(cycles)
	if m.serial != nil {
		m.serial.Tick(cycles)
	}
	for range cycles {
		if m.dma.active {
			m.dma.step(m.memory[0xFE00:0xFEA0], m.readForDMA)
		}
	}
}

func (m *MMU) readForDMA(address uint16) byte {
	return m.Read(address)
}

// SetTimerSeed initializes the internal timer divider seed and DIV register.
func (m *MMU) SetTimerSeed(seed uint16) {
	m.timer.SetSeed(seed)
}

// NewWithCartridge creates a new memory unit with the provided cartridge data loaded.
// Equivalent to turning on a Gameboy with a cartridge in.
func NewWithCartridge(cart *Cartridge) *MMU {
	mmu := New()
	mmu.cart = cart

	switch cart.mbcType {
	case NoMBCType:
		mmu.mbc = NewNoMBC(cart.data)
	case MBC1Type:
		mmu.mbc = NewMBC1(cart.data, cart.hasBattery, cart.ramBankCount)
	case MBC3Type:
		mmu.mbc = NewMBC3(cart.data, cart.ramBankCount, cart.hasRTC, nil)
	default:
		panic(fmt.Sprintf("unsupported MBC type: %d", cart.mbcType))
	}

	return mmu
}

func initRegionMap(m *MMU) {
	// ROM: 0x0000-0x7FFF
	for i := 0x00; i <= 0x7F; i++ {
		m.regionMap[i] = regionROM
	}
	// VRAM: 0x8000-0x9FFF
	for i := 0x80; i <= 0x9F; i++ {
		m.regionMap[i] = regionVRAM
	}
	// External RAM: 0xA000-0xBFFF
	for i := 0xA0; i <= 0xBF; i++ {
		m.regionMap[i] = regionExtRAM
	}
	// Work RAM: 0xC000-0xDFFF
	for i := 0xC0; i <= 0xDF; i++ {
		m.regionMap[i] = regionWRAM
	}
	// Echo RAM: 0xE000-0xFDFF
	for i := 0xE0; i <= 0xFD; i++ {
		m.regionMap[i] = regionEcho
	}
	// OAM: 0xFE00-0xFE9F, Unused: 0xFEA0-0xFEFF
	m.regionMap[0xFE] = regionOAM
	// IO + HRAM: 0xFF00-0xFFFF
	m.regionMap[0xFF] = regionIO
}

// RequestInterrupt sets the interrupt flag (IF register) of the chosen interrupt to 1.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	current := m.memory[addr.IF]
	m.memory[addr.IF] = current | uint8(interrupt)
}

func (m *MMU) Read(address uint16) byte {
	if m.bootstrapMapped && address < 0x100 {
		return bootstrapROM[address]
	}

	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		if m.mbc == nil {
			slog.Warn("reading from ROM/external RAM with no cartridge", "addr", fmt.Sprintf("0x%04X", address))
			return 0xFF
		}
		return m.mbc.Read(address)
	case regionVRAM, regionWRAM:
		return m.memory[address]
	case regionEcho:
		return m.memory[address-0x2000]
	case regionOAM:
		return m.memory[address]
	case regionIO:
		switch {
		case address == addr.P1:
			return m.joypad.Read()
		case address == addr.SB || address == addr.SC:
			return m.serial.Read(address)
		case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
			return m.timer.Read(address)
		case address >= addr.AudioStart && address <= addr.AudioEnd:
			return m.APU.ReadRegister(address)
		case address == addr.IF:
			// Upper 3 bits of IF always read as 1. They are not interrupt
			// sources: the CPU's dispatch and halt checks mask them off.
			return m.memory[address] | 0xE0
		default:
			return m.memory[address]
		}
	default:
		panic(fmt.Sprintf("attempted read at unmapped address: 0x%X", address))
	}
}

func (m *MMU) Write(address uint16, value byte) {
	switch m.regionMap[address>>8] {
	case regionROM:
		if m.mbc == nil {
			slog.Warn("writing to ROM with no cartridge", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
			return
		}
		m.mbc.Write(address, value)
	case regionVRAM:
		m.memory[address] = value
	case regionExtRAM:
		if m.mbc == nil {
			slog.Warn("writing to external RAM with no cartridge", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
			return
		}
		m.mbc.Write(address, value)
	case regionWRAM:
		m.memory[address] = value
	case regionEcho:
		m.memory[address-0x2000] = value
	case regionOAM:
		m.memory[address] = value
	case regionIO:
		switch {
		case address == addr.P1:
			m.joypad.Write(value)
		case address == addr.SB || address == addr.SC:
			m.serial.Write(address, value)
		case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
			m.timer.Write(address, value)
		case address >= addr.AudioStart && address <= addr.AudioEnd:
			m.APU.WriteRegister(address, value)
		case address == addr.IF:
			// This register has its upper 3 bits always set as 1; beware if
			// matching halt bug behavior against IF directly.
			m.memory[address] = value | 0xE0
		case address == addr.DMA:
			m.dma.start(value)
			m.memory[address] = value
		case address == addr.BootROMDisable:
			if value != 0 {
				m.bootstrapMapped = false
			}
			m.memory[address] = value
		default:
			m.memory[address] = value
		}
	default:
		panic(fmt.Sprintf("attempted write at unmapped address: 0x%X", address))
	}
}

// SetStopWakeHandler wires fn to fire on every button press, so a CPU
// parked in STOP can be resumed by the owning scheduler.
func (m *MMU) SetStopWakeHandler(fn func()) {
	m.joypad.WakeHandler = fn
}

// HandleKeyPress forwards a key press to the joypad.
func (m *MMU) HandleKeyPress(key JoypadKey) {
	m.joypad.Press(key)
}

// HandleKeyRelease forwards a key release to the joypad.
func (m *MMU) HandleKeyRelease(key JoypadKey) {
	m.joypad.Release(key)
}
