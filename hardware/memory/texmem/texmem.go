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

// Package texmem is the PVR2's 8MB of texture memory (VRAM), reachable
// through four bands in Area 1.
//
// The 32-bit access path at band 0x05000000 addresses the backing bytes
// linearly. The 64-bit access path at band 0x04000000 interleaves 32-bit
// words between the two 4MB banks, which is the layout the tile accelerator
// and the framebuffer use. Bands 0x06000000 and 0x07000000 mirror the two
// paths. The backing store is kept in 32-bit-path order; 64-bit-path
// addresses are remapped word by word.
//
// The PVR2 framebuffer tracker registers a write notifier so that a VRAM
// write overlapping a framebuffer living in the gfx back-end invalidates
// that framebuffer.
package texmem

import (
	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/hardware/memory/bus"
	"github.com/washingtondc-emu/washingtondc/hardware/memory/ram"
)

// Size of the texture memory in bytes.
const Size = 0x800000

// TexMem is the texture memory region. it implements bus.Interface over the
// whole of Area 1.
type TexMem struct {
	vram *ram.RAM

	notify bus.WriteNotifier
}

// NewTexMem is the preferred method of initialisation for the TexMem type.
func NewTexMem() *TexMem {
	return &TexMem{
		vram: ram.NewRAM("texture memory", Size),
	}
}

// Bytes exposes the backing store in 32-bit-path byte order. the PVR2 core
// reads textures and framebuffers through this.
func (t *TexMem) Bytes() []byte {
	return t.vram.Data
}

// SetWriteNotifier registers the collaborator to tell about VRAM writes.
// offsets reported are in 32-bit-path terms.
func (t *TexMem) SetWriteNotifier(n bus.WriteNotifier) {
	t.notify = n
}

// translate maps an Area 1 address (as masked by the memory map) to an
// offset into the backing store, or an error for the unused gaps.
//
// band 0x04/0x06: 64-bit path. 32-bit words alternate between the two 4MB
// banks. band 0x05/0x07: 32-bit path, linear.
func (t *TexMem) translate(addr uint32) (uint32, bool) {
	band := (addr >> 24) & 0x3
	off := addr & 0x00ffffff

	// the upper half of each 16MB band is an unused gap
	if off >= Size {
		return 0, false
	}

	switch band {
	case 0x0, 0x2:
		// 64-bit path: word w maps to bank (w&1), word (w>>1)
		w := off >> 2
		bank := w & 1
		return (w>>1)<<2 | (addr & 3) | bank<<22, true
	case 0x1, 0x3:
		return off, true
	}

	return 0, false
}

func (t *TexMem) translateErr(addr uint32, length int) (uint32, error) {
	off, ok := t.translate(addr)
	if !ok {
		return 0, curated.Raise(curated.MemOutOfBounds, "texture memory",
			curated.Attr("address", addr),
			curated.Attr("length", length),
		)
	}
	return off, nil
}

// Read8 implements the bus.Interface interface.
func (t *TexMem) Read8(addr uint32) (uint8, error) {
	off, err := t.translateErr(addr, 1)
	if err != nil {
		return 0, err
	}
	return t.vram.Read8(off)
}

// Read16 implements the bus.Interface interface.
func (t *TexMem) Read16(addr uint32) (uint16, error) {
	off, err := t.translateErr(addr, 2)
	if err != nil {
		return 0, err
	}
	return t.vram.Read16(off)
}

// Read32 implements the bus.Interface interface.
func (t *TexMem) Read32(addr uint32) (uint32, error) {
	off, err := t.translateErr(addr, 4)
	if err != nil {
		return 0, err
	}
	return t.vram.Read32(off)
}

// ReadFloat32 implements the bus.Interface interface.
func (t *TexMem) ReadFloat32(addr uint32) (float32, error) {
	off, err := t.translateErr(addr, 4)
	if err != nil {
		return 0, err
	}
	return t.vram.ReadFloat32(off)
}

// ReadFloat64 implements the bus.Interface interface. the two words of a
// 64-bit-path access straddle the banks so the read is split.
func (t *TexMem) ReadFloat64(addr uint32) (float64, error) {
	lo, err := t.Read32(addr)
	if err != nil {
		return 0, err
	}
	hi, err := t.Read32(addr + 4)
	if err != nil {
		return 0, err
	}
	return f64FromWords(lo, hi), nil
}

// Write8 implements the bus.Interface interface.
func (t *TexMem) Write8(addr uint32, val uint8) error {
	off, err := t.translateErr(addr, 1)
	if err != nil {
		return err
	}
	if err := t.vram.Write8(off, val); err != nil {
		return err
	}
	if t.notify != nil {
		t.notify.NotifyWrite(off, 1)
	}
	return nil
}

// Write16 implements the bus.Interface interface.
func (t *TexMem) Write16(addr uint32, val uint16) error {
	off, err := t.translateErr(addr, 2)
	if err != nil {
		return err
	}
	if err := t.vram.Write16(off, val); err != nil {
		return err
	}
	if t.notify != nil {
		t.notify.NotifyWrite(off, 2)
	}
	return nil
}

// Write32 implements the bus.Interface interface.
func (t *TexMem) Write32(addr uint32, val uint32) error {
	off, err := t.translateErr(addr, 4)
	if err != nil {
		return err
	}
	if err := t.vram.Write32(off, val); err != nil {
		return err
	}
	if t.notify != nil {
		t.notify.NotifyWrite(off, 4)
	}
	return nil
}

// WriteFloat32 implements the bus.Interface interface.
func (t *TexMem) WriteFloat32(addr uint32, val float32) error {
	off, err := t.translateErr(addr, 4)
	if err != nil {
		return err
	}
	if err := t.vram.WriteFloat32(off, val); err != nil {
		return err
	}
	if t.notify != nil {
		t.notify.NotifyWrite(off, 4)
	}
	return nil
}

// WriteFloat64 implements the bus.Interface interface.
func (t *TexMem) WriteFloat64(addr uint32, val float64) error {
	lo, hi := f64ToWords(val)
	if err := t.Write32(addr, lo); err != nil {
		return err
	}
	return t.Write32(addr+4, hi)
}
