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

// Package bootrom is the Dreamcast's 2MB boot ROM, loaded from a host file.
package bootrom

import (
	"os"

	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/hardware/memory/ram"
	"github.com/washingtondc-emu/washingtondc/logger"
)

// Size of the boot ROM in bytes.
const Size = 0x200000

// BootROM is the boot ROM region. reads are serviced by the embedded
// backing store; writes raise.
type BootROM struct {
	*ram.RAM
}

// NewBootROM is the preferred method of initialisation for the BootROM
// type.
func NewBootROM() *BootROM {
	return &BootROM{
		RAM: ram.NewRAM("boot rom", Size),
	}
}

// Load reads the ROM image from the host file. an image of the wrong size is
// loaded anyway, with a warning: oversize images are truncated and undersize
// images occupy a prefix.
func (rom *BootROM) Load(path string) error {
	d, err := os.ReadFile(path)
	if err != nil {
		return curated.Errorf(curated.FileIO, err)
	}

	if len(d) != Size {
		logger.Logf("bootrom", "unexpected bios size (expected %d bytes, got %d bytes)", Size, len(d))
	}
	if len(d) > Size {
		d = d[:Size]
	}
	copy(rom.Data, d)

	return nil
}

func (rom *BootROM) writeError(addr uint32, length int) error {
	return curated.Raise(curated.Unimplemented, "write to boot rom",
		curated.Attr("address", addr),
		curated.Attr("length", length),
	)
}

// Write8 implements the bus.Interface interface. the ROM is read-only.
func (rom *BootROM) Write8(addr uint32, val uint8) error {
	return rom.writeError(addr, 1)
}

// Write16 implements the bus.Interface interface. the ROM is read-only.
func (rom *BootROM) Write16(addr uint32, val uint16) error {
	return rom.writeError(addr, 2)
}

// Write32 implements the bus.Interface interface. the ROM is read-only.
func (rom *BootROM) Write32(addr uint32, val uint32) error {
	return rom.writeError(addr, 4)
}

// WriteFloat32 implements the bus.Interface interface. the ROM is read-only.
func (rom *BootROM) WriteFloat32(addr uint32, val float32) error {
	return rom.writeError(addr, 4)
}

// WriteFloat64 implements the bus.Interface interface. the ROM is read-only.
func (rom *BootROM) WriteFloat64(addr uint32, val float64) error {
	return rom.writeError(addr, 8)
}
