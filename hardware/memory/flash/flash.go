// This file is part of WashingtonDC.
//
// WashingtonDC is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// WashingtonDC is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with WashingtonDC.  If not, see <https://www.gnu.org/licenses/>.

// Package flash emulates the Dreamcast's 128KB flash memory, a Macronix
// 29LV160TMC. Reads behave like RAM. Writes follow the device's command
// protocol: every command is prefaced by 0xaa written to offset 0x5555 and
// 0x55 written to offset 0x2aaa, then a command byte. The erase command
// fills a 16KB sector with 0xff and must be unlocked by a preceding
// pre-erase command; the write command ANDs a single byte into the array.
package flash

import (
	"encoding/binary"
	"math"
	"os"

	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/logger"
)

// Size of the flash memory in bytes.
const Size = 0x20000

// the two unlock offsets. commands are prefaced by 0xaa to the first and
// 0x55 to the second.
const (
	unlockAddrAA = 0x5555
	unlockAddr55 = 0x2aaa
)

// command bytes.
const (
	cmdErase    = 0x30
	cmdPreErase = 0x80
	cmdWrite    = 0xa0
)

// erase operates on whole sectors.
const (
	SectorSize = 16 * 1024
	sectorMask = ^uint32(SectorSize - 1)
)

// protocol states.
type state int

const (
	stateAA state = iota
	state55
	stateCmd
	stateWrite
)

// Flash is the flash memory region. it implements bus.Interface.
type Flash struct {
	Data [Size]byte

	state state

	// set by the pre-erase command. cleared by an erase. a pre-erase that is
	// not followed immediately by an erase leaves the device unlocked until
	// an erase or another pre-erase arrives
	eraseUnlocked bool
}

// NewFlash is the preferred method of initialisation for the Flash type.
func NewFlash() *Flash {
	f := &Flash{}
	for i := range f.Data {
		f.Data[i] = 0xff
	}
	return f
}

// Load reads the flash image from the host file. an image of the wrong size
// is loaded anyway, with a warning: oversize images are truncated and
// undersize images occupy a prefix of the array.
func (f *Flash) Load(path string) error {
	d, err := os.ReadFile(path)
	if err != nil {
		return curated.Errorf(curated.FileIO, err)
	}

	if len(d) != Size {
		logger.Logf("flash", "unexpected flash memory size (expected %d bytes, got %d bytes). this will still be loaded even though it's incorrect", Size, len(d))
	}
	if len(d) > Size {
		d = d[:Size]
	}
	copy(f.Data[:], d)

	return nil
}

// Save writes the flash image back to the host file. the guest's settings
// changes survive across runs this way.
func (f *Flash) Save(path string) error {
	if err := os.WriteFile(path, f.Data[:], 0644); err != nil {
		return curated.Errorf(curated.FileIO, err)
	}
	return nil
}

// Read8 implements the bus.Interface interface.
func (f *Flash) Read8(addr uint32) (uint8, error) {
	if int(addr) >= Size {
		return 0, curated.Raise(curated.MemOutOfBounds, "flash",
			curated.Attr("address", addr), curated.Attr("length", 1))
	}
	return f.Data[addr], nil
}

// Read16 implements the bus.Interface interface.
func (f *Flash) Read16(addr uint32) (uint16, error) {
	if int(addr)+2 > Size {
		return 0, curated.Raise(curated.MemOutOfBounds, "flash",
			curated.Attr("address", addr), curated.Attr("length", 2))
	}
	return binary.LittleEndian.Uint16(f.Data[addr:]), nil
}

// Read32 implements the bus.Interface interface.
func (f *Flash) Read32(addr uint32) (uint32, error) {
	if int(addr)+4 > Size {
		return 0, curated.Raise(curated.MemOutOfBounds, "flash",
			curated.Attr("address", addr), curated.Attr("length", 4))
	}
	return binary.LittleEndian.Uint32(f.Data[addr:]), nil
}

// ReadFloat32 implements the bus.Interface interface.
func (f *Flash) ReadFloat32(addr uint32) (float32, error) {
	v, err := f.Read32(addr)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFloat64 implements the bus.Interface interface.
func (f *Flash) ReadFloat64(addr uint32) (float64, error) {
	return 0, curated.Raise(curated.Unimplemented, "8-byte read from flash memory",
		curated.Attr("address", addr), curated.Attr("length", 8))
}

func (f *Flash) widthError(addr uint32, length int) error {
	return curated.Raise(curated.Unimplemented, "flash memory write-lengths other than 1-byte",
		curated.Attr("address", addr),
		curated.Attr("length", length),
	)
}

// Write8 implements the bus.Interface interface. the byte enters the command
// protocol state machine; nothing is stored until a write command completes.
func (f *Flash) Write8(addr uint32, val uint8) error {
	if int(addr) >= Size {
		return curated.Raise(curated.MemOutOfBounds, "flash",
			curated.Attr("address", addr), curated.Attr("length", 1))
	}
	f.inputByte(addr, val)
	return nil
}

// Write16 implements the bus.Interface interface.
func (f *Flash) Write16(addr uint32, val uint16) error {
	return f.widthError(addr, 2)
}

// Write32 implements the bus.Interface interface.
func (f *Flash) Write32(addr uint32, val uint32) error {
	return f.widthError(addr, 4)
}

// WriteFloat32 implements the bus.Interface interface.
func (f *Flash) WriteFloat32(addr uint32, val float32) error {
	return f.widthError(addr, 4)
}

// WriteFloat64 implements the bus.Interface interface.
func (f *Flash) WriteFloat64(addr uint32, val float64) error {
	return f.widthError(addr, 8)
}

// inputByte advances the protocol state machine by one byte.
func (f *Flash) inputByte(addr uint32, val uint8) {
	switch f.state {
	case stateAA:
		if val == 0xaa && addr == unlockAddrAA {
			f.state = state55
		} else {
			logger.Logf("flash", "garbage data input (was expecting aa to 0x%04x)", unlockAddrAA)
		}
	case state55:
		if val == 0x55 && addr == unlockAddr55 {
			f.state = stateCmd
		} else {
			logger.Logf("flash", "garbage data input (was expecting 55 to 0x%04x)", unlockAddr55)
			f.state = stateAA
		}
	case stateCmd:
		f.inputCmd(addr, val)
	case stateWrite:
		// the write command ANDs the byte into the array. flash can only
		// clear bits; an erase is required to set them
		f.Data[addr] &= val
		f.state = stateAA
	}
}

func (f *Flash) inputCmd(addr uint32, val uint8) {
	switch val {
	case cmdErase:
		if f.eraseUnlocked {
			f.doErase(addr)
			f.eraseUnlocked = false
		} else {
			logger.Logf("flash", "erase command without pre-erase unlock; ignored")
		}
		f.state = stateAA
	case cmdPreErase:
		if f.eraseUnlocked {
			logger.Logf("flash", "repeated pre-erase command")
		}
		f.eraseUnlocked = true
		f.state = stateAA
	case cmdWrite:
		f.state = stateWrite
	default:
		logger.Logf("flash", "command 0x%02x is unrecognized", val)
		f.state = stateAA
	}
}

func (f *Flash) doErase(addr uint32) {
	sector := addr & sectorMask
	logger.Logf("flash", "erase sector 0x%08x", sector)
	for i := sector; i < sector+SectorSize; i++ {
		f.Data[i] = 0xff
	}
}
