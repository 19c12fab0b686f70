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

package sh4

import (
	"math"

	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/logger"
)

// the SH4's virtual address space:
//
//	0x00000000-0x7fffffff P0 user/cached      -> system bus
//	0x80000000-0x9fffffff P1 kernel cached    -> aliases P0
//	0xa0000000-0xbfffffff P2 uncached         -> aliases P0
//	0xc0000000-0xdfffffff P3 write-through    -> aliases P0
//	0xe0000000-0xffffffff P4                  -> on-chip I/O
//
// aliasing is a 29-bit fold onto the system bus. within P4: the store-queue
// window, the cache and TLB address arrays, and the on-chip module
// registers.
const (
	areaP4First uint32 = 0xe0000000
	busFoldMask uint32 = 0x1fffffff

	sqWindowFirst uint32 = 0xe0000000
	sqWindowLast  uint32 = 0xe3ffffff

	// instruction and operand cache address/data arrays and the TLB arrays
	cacheArraysFirst uint32 = 0xf0000000
	cacheArraysLast  uint32 = 0xf7ffffff

	onchipRegsFirst uint32 = 0xff000000

	// the operand-cache-as-RAM window within P0
	ocRAMAreaFirst uint32 = 0x7c000000
	ocRAMAreaLast  uint32 = 0x7fffffff
)

// inOCRAMArea returns true for addresses serviced by the operand cache's
// RAM mapping.
func (sh4 *SH4) inOCRAMArea(addr uint32) bool {
	return addr >= ocRAMAreaFirst && addr <= ocRAMAreaLast &&
		sh4.regs[CCR]&CCRORAMask != 0
}

// ReadVirt32 reads through the SH4's virtual address space.
func (sh4 *SH4) ReadVirt32(addr uint32) (uint32, error) {
	switch {
	case sh4.inOCRAMArea(addr):
		return sh4.ocRAMRead32(addr), nil
	case addr < areaP4First:
		return sh4.bus.Read32(addr & busFoldMask)
	default:
		return sh4.p4Read32(addr)
	}
}

// WriteVirt32 writes through the SH4's virtual address space.
func (sh4 *SH4) WriteVirt32(addr uint32, val uint32) error {
	switch {
	case sh4.inOCRAMArea(addr):
		sh4.ocRAMWrite32(addr, val)
		return nil
	case addr < areaP4First:
		return sh4.bus.Write32(addr&busFoldMask, val)
	default:
		return sh4.p4Write32(addr, val)
	}
}

// ReadVirt16 reads through the SH4's virtual address space.
func (sh4 *SH4) ReadVirt16(addr uint32) (uint16, error) {
	switch {
	case sh4.inOCRAMArea(addr):
		var b [2]byte
		sh4.ocRAMRead(addr, b[:])
		return uint16(b[0]) | uint16(b[1])<<8, nil
	case addr < areaP4First:
		return sh4.bus.Read16(addr & busFoldMask)
	default:
		v, err := sh4.p4Read32(addr &^ 3)
		return uint16(v), err
	}
}

// WriteVirt16 writes through the SH4's virtual address space.
func (sh4 *SH4) WriteVirt16(addr uint32, val uint16) error {
	switch {
	case sh4.inOCRAMArea(addr):
		b := [2]byte{byte(val), byte(val >> 8)}
		sh4.ocRAMWrite(addr, b[:])
		return nil
	case addr < areaP4First:
		return sh4.bus.Write16(addr&busFoldMask, val)
	case addr >= sqWindowFirst && addr <= sqWindowLast:
		return sh4.SQWrite16(addr, val)
	default:
		return sh4.p4Write32(addr&^3, uint32(val))
	}
}

// ReadVirt8 reads through the SH4's virtual address space.
func (sh4 *SH4) ReadVirt8(addr uint32) (uint8, error) {
	switch {
	case sh4.inOCRAMArea(addr):
		var b [1]byte
		sh4.ocRAMRead(addr, b[:])
		return b[0], nil
	case addr < areaP4First:
		return sh4.bus.Read8(addr & busFoldMask)
	default:
		v, err := sh4.p4Read32(addr &^ 3)
		return uint8(v), err
	}
}

// WriteVirt8 writes through the SH4's virtual address space.
func (sh4 *SH4) WriteVirt8(addr uint32, val uint8) error {
	switch {
	case sh4.inOCRAMArea(addr):
		b := [1]byte{val}
		sh4.ocRAMWrite(addr, b[:])
		return nil
	case addr < areaP4First:
		return sh4.bus.Write8(addr&busFoldMask, val)
	case addr >= sqWindowFirst && addr <= sqWindowLast:
		return sh4.SQWrite8(addr, val)
	default:
		return sh4.p4Write32(addr&^3, uint32(val))
	}
}

// ReadVirtFloat32 reads through the SH4's virtual address space.
func (sh4 *SH4) ReadVirtFloat32(addr uint32) (float32, error) {
	v, err := sh4.ReadVirt32(addr)
	return math.Float32frombits(v), err
}

// WriteVirtFloat32 writes through the SH4's virtual address space.
func (sh4 *SH4) WriteVirtFloat32(addr uint32, val float32) error {
	return sh4.WriteVirt32(addr, math.Float32bits(val))
}

// ReadVirtFloat64 reads through the SH4's virtual address space.
func (sh4 *SH4) ReadVirtFloat64(addr uint32) (float64, error) {
	switch {
	case sh4.inOCRAMArea(addr):
		var b [8]byte
		sh4.ocRAMRead(addr, b[:])
		var v uint64
		for i := 7; i >= 0; i-- {
			v = v<<8 | uint64(b[i])
		}
		return math.Float64frombits(v), nil
	case addr < areaP4First:
		return sh4.bus.ReadFloat64(addr & busFoldMask)
	default:
		return 0, curated.Raise(curated.Unimplemented, "8-byte read from P4 area",
			curated.Attr("address", addr))
	}
}

// WriteVirtFloat64 writes through the SH4's virtual address space.
func (sh4 *SH4) WriteVirtFloat64(addr uint32, val float64) error {
	switch {
	case sh4.inOCRAMArea(addr):
		bits := math.Float64bits(val)
		var b [8]byte
		for i := 0; i < 8; i++ {
			b[i] = byte(bits >> (8 * i))
		}
		sh4.ocRAMWrite(addr, b[:])
		return nil
	case addr < areaP4First:
		return sh4.bus.WriteFloat64(addr&busFoldMask, val)
	case addr >= sqWindowFirst && addr <= sqWindowLast:
		bits := math.Float64bits(val)
		return sh4.SQWrite64(addr, uint32(bits), uint32(bits>>32))
	default:
		return curated.Raise(curated.Unimplemented, "8-byte write to P4 area",
			curated.Attr("address", addr))
	}
}

// FetchInst fetches one instruction word. instruction fetch from P4 is an
// error.
func (sh4 *SH4) FetchInst(addr uint32) (uint16, error) {
	if addr >= areaP4First {
		return 0, curated.Raise(curated.Unimplemented, "instruction fetch from P4 area",
			curated.Attr("address", addr))
	}
	return sh4.bus.Read16(addr & busFoldMask)
}

// p4Read32 dispatches a 32-bit read within the P4 area.
func (sh4 *SH4) p4Read32(addr uint32) (uint32, error) {
	switch {
	case addr >= sqWindowFirst && addr <= sqWindowLast:
		return sh4.SQRead32(addr)
	case addr >= cacheArraysFirst && addr <= cacheArraysLast:
		// cache and TLB address arrays. guest software touches these while
		// configuring the cache but does not rely on the contents, so a
		// zero-read stub is correct enough
		return 0, nil
	case addr >= onchipRegsFirst:
		return sh4.onchipRead32(addr)
	}

	return 0, curated.Raise(curated.Unimplemented, "read from unknown P4 address",
		curated.Attr("address", addr))
}

// p4Write32 dispatches a 32-bit write within the P4 area.
func (sh4 *SH4) p4Write32(addr uint32, val uint32) error {
	switch {
	case addr >= sqWindowFirst && addr <= sqWindowLast:
		return sh4.SQWrite32(addr, val)
	case addr >= cacheArraysFirst && addr <= cacheArraysLast:
		// discarded; see p4Read32
		logger.Logf("sh4", "write of %08x to cache address array %08x discarded", val, addr)
		return nil
	case addr >= onchipRegsFirst:
		return sh4.onchipWrite32(addr, val)
	}

	return curated.Raise(curated.Unimplemented, "write to unknown P4 address",
		curated.Attr("address", addr))
}

// Area7Interface adapts the on-chip register block for the system-bus
// memory map: Area 7 addresses mirror the P4 register window.
func (sh4 *SH4) Area7Interface() *area7 {
	return &area7{sh4: sh4}
}

// area7 implements bus.Interface by offsetting into the P4 register window.
type area7 struct {
	sh4 *SH4
}

func (a *area7) fold(addr uint32) uint32 {
	return (addr & 0x00ffffff) | onchipRegsFirst
}

// Read32 implements the bus.Interface interface.
func (a *area7) Read32(addr uint32) (uint32, error) {
	return a.sh4.onchipRead32(a.fold(addr))
}

// Write32 implements the bus.Interface interface.
func (a *area7) Write32(addr uint32, val uint32) error {
	return a.sh4.onchipWrite32(a.fold(addr), val)
}

// Read16 implements the bus.Interface interface.
func (a *area7) Read16(addr uint32) (uint16, error) {
	v, err := a.sh4.onchipRead32(a.fold(addr &^ 3))
	return uint16(v), err
}

// Write16 implements the bus.Interface interface.
func (a *area7) Write16(addr uint32, val uint16) error {
	return a.sh4.onchipWrite32(a.fold(addr&^3), uint32(val))
}

// Read8 implements the bus.Interface interface.
func (a *area7) Read8(addr uint32) (uint8, error) {
	v, err := a.sh4.onchipRead32(a.fold(addr &^ 3))
	return uint8(v), err
}

// Write8 implements the bus.Interface interface.
func (a *area7) Write8(addr uint32, val uint8) error {
	return a.sh4.onchipWrite32(a.fold(addr&^3), uint32(val))
}

// ReadFloat32 implements the bus.Interface interface.
func (a *area7) ReadFloat32(addr uint32) (float32, error) {
	v, err := a.Read32(addr)
	return math.Float32frombits(v), err
}

// WriteFloat32 implements the bus.Interface interface.
func (a *area7) WriteFloat32(addr uint32, val float32) error {
	return a.Write32(addr, math.Float32bits(val))
}

// ReadFloat64 implements the bus.Interface interface.
func (a *area7) ReadFloat64(addr uint32) (float64, error) {
	return 0, curated.Raise(curated.Unimplemented, "8-byte read from area 7",
		curated.Attr("address", addr))
}

// WriteFloat64 implements the bus.Interface interface.
func (a *area7) WriteFloat64(addr uint32, val float64) error {
	return curated.Raise(curated.Unimplemented, "8-byte write to area 7",
		curated.Attr("address", addr))
}
