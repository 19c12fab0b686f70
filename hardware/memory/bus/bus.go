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

// Package bus defines the memory interface concept. every region attached to
// the memory map implements the Interface type: a typed read and write for
// each of the five access widths the SH4 can issue.
//
// Errors returned through the bus come in two flavours and callers must
// distinguish them. An error matching the AccessExc pattern means the access
// raised a guest CPU exception: the SH4 has already recorded the exception
// state and emulation continues. Any other error is a host-side failure
// (unmapped address, unimplemented feature) and is fatal unless the access
// came through one of the memory map's Try variants.
package bus

import (
	"github.com/washingtondc-emu/washingtondc/curated"
)

// AccessExc is the pattern of errors that indicate a guest CPU exception was
// raised during a memory access. sentinel for curated.Is/Has.
const AccessExc = "memory access raised guest exception: %v"

// Interface is the set of operations every memory region services. the
// address passed to a region has already been masked by the memory map; for
// simple backing-store regions the masked address is the offset into the
// store.
type Interface interface {
	Read8(addr uint32) (uint8, error)
	Read16(addr uint32) (uint16, error)
	Read32(addr uint32) (uint32, error)
	ReadFloat32(addr uint32) (float32, error)
	ReadFloat64(addr uint32) (float64, error)

	Write8(addr uint32, val uint8) error
	Write16(addr uint32, val uint16) error
	Write32(addr uint32, val uint32) error
	WriteFloat32(addr uint32, val float32) error
	WriteFloat64(addr uint32, val float64) error
}

// WriteNotifier is implemented by collaborators that want to know when a
// region has been written to. the PVR2 framebuffer tracker is the only
// consumer: a VRAM write overlapping a framebuffer that lives in the gfx
// back-end invalidates that framebuffer.
type WriteNotifier interface {
	NotifyWrite(addr uint32, length uint32)
}

// Unmapped returns the canonical out-of-map error for an address.
func Unmapped(addr uint32, length int) error {
	return curated.Raise(curated.MemOutOfBounds, "memory access to unmapped address",
		curated.Attr("address", addr),
		curated.Attr("length", length),
	)
}
