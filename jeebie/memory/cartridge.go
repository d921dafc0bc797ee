package memory

import (
	"fmt"

	"github.com/arlojensen/pocketcore/jeebie/bit"
)

const titleLength = 16

const (
	entryPointAddress       = 0x100
	logoAddress             = 0x104
	titleAddress            = 0x134
	manufacturerCodeAddress = 0x13F
	cgbFlagAddress          = 0x143
	newLicenseCodeAddress   = 0x144
	sgbFlagAddress          = 0x146
	cartridgeTypeAddress    = 0x147
	romSizeAddress          = 0x148
	ramSizeAddress          = 0x149
	destinationCodeAddress  = 0x14A
	oldLicenseCodeAddress   = 0x14B
	versionNumberAddress    = 0x14C
	headerChecksumAddress   = 0x14D
	globalChecksumAddress   = 0x14E
)

// mapperType identifies which mapper variant a cartridge's header declares.
type mapperType uint8

const (
	NoMBCType mapperType = iota
	MBC1Type
	MBC3Type
	MBCUnknownType
)

// RomLoadError reports a ROM that is too short or declares an unsupported mapper.
type RomLoadError struct {
	Reason string
}

func (e *RomLoadError) Error() string {
	return fmt.Sprintf("rom load failed: %s", e.Reason)
}

// ramBankCountFromCode maps the header's RAM-size code to a bank count (8KiB each).
func ramBankCountFromCode(code uint8) uint8 {
	switch code {
	case 0x00:
		return 0
	case 0x02:
		return 1
	case 0x03:
		return 4
	case 0x04:
		return 16
	case 0x05:
		return 8
	default:
		return 0
	}
}

// classifyMapper derives mapper type and feature flags from the cart-type byte.
func classifyMapper(cartType uint8) (mt mapperType, hasBattery, hasRTC bool) {
	switch {
	case cartType == 0x00:
		return NoMBCType, false, false
	case cartType >= 0x01 && cartType <= 0x03:
		return MBC1Type, cartType == 0x03, false
	case cartType >= 0x0F && cartType <= 0x13:
		return MBC3Type, cartType != 0x11, cartType <= 0x10
	default:
		return MBCUnknownType, false, false
	}
}

// Cartridge holds the raw ROM image plus the header fields the mapper and MMU need.
type Cartridge struct {
	data           []byte
	title          string
	headerChecksum uint8
	globalChecksum uint16
	version        uint8
	cartType       uint8
	romSize        uint8
	ramSize        uint8

	mbcType      mapperType
	hasBattery   bool
	hasRTC       bool
	ramBankCount uint8
}

// NewCartridge creates an empty cartridge, useful only for debugging purposes.
func NewCartridge() *Cartridge {
	return &Cartridge{
		data: make([]byte, 0x10000),
	}
}

// NewCartridgeWithData parses a ROM header and initializes a Cartridge from the
// raw bytes. Returns a *RomLoadError if the image is too short or declares an
// unsupported mapper.
func NewCartridgeWithData(bytes []byte) (*Cartridge, error) {
	if len(bytes) < 0x150 {
		return nil, &RomLoadError{Reason: "file too short to contain a valid header"}
	}

	titleBytes := bytes[titleAddress : titleAddress+titleLength]
	cartType := bytes[cartridgeTypeAddress]

	mbcType, hasBattery, hasRTC := classifyMapper(cartType)
	if mbcType == MBCUnknownType {
		return nil, &RomLoadError{Reason: fmt.Sprintf("unsupported mapper, cart type 0x%02X", cartType)}
	}

	cart := &Cartridge{
		data:           make([]byte, len(bytes)),
		title:          cleanGameboyTitle(titleBytes),
		headerChecksum: bytes[headerChecksumAddress],
		globalChecksum: bit.Combine(bytes[globalChecksumAddress], bytes[globalChecksumAddress+1]),
		version:        bytes[versionNumberAddress],
		cartType:       cartType,
		romSize:        bytes[romSizeAddress],
		ramSize:        bytes[ramSizeAddress],
		mbcType:        mbcType,
		hasBattery:     hasBattery,
		hasRTC:         hasRTC,
		ramBankCount:   ramBankCountFromCode(bytes[ramSizeAddress]),
	}

	copy(cart.data, bytes)

	return cart, nil
}

// ReadByte reads a byte at the specified address. Does not check bounds, so the caller must make sure the
// address is valid for the cartridge.
func (c Cartridge) ReadByte(addr uint16) uint8 {
	return c.data[addr]
}
