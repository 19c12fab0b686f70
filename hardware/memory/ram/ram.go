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

// Package ram implements the simple backing-store memory region: a byte
// buffer with bounds-checked, little-endian access at every width. the boot
// ROM, AICA wave memory, texture memory and system RAM regions all
// build on this type.
package ram

import (
	"encoding/binary"
	"math"

	"github.com/washingtondc-emu/washingtondc/curated"
)

// RAM is a backing store of bytes. it implements bus.Interface with the
// masked address interpreted as an offset into the store.
type RAM struct {
	name string
	Data []byte
}

// NewRAM is the preferred method of initialisation for the RAM type.
func NewRAM(name string, size uint32) *RAM {
	return &RAM{
		name: name,
		Data: make([]byte, size),
	}
}

func (r *RAM) outOfBounds(addr uint32, length int) error {
	return curated.Raise(curated.MemOutOfBounds, r.name,
		curated.Attr("address", addr),
		curated.Attr("length", length),
	)
}

// Read8 implements the bus.Interface interface.
func (r *RAM) Read8(addr uint32) (uint8, error) {
	if int(addr) >= len(r.Data) {
		return 0, r.outOfBounds(addr, 1)
	}
	return r.Data[addr], nil
}

// Read16 implements the bus.Interface interface.
func (r *RAM) Read16(addr uint32) (uint16, error) {
	if int(addr)+2 > len(r.Data) {
		return 0, r.outOfBounds(addr, 2)
	}
	return binary.LittleEndian.Uint16(r.Data[addr:]), nil
}

// Read32 implements the bus.Interface interface.
func (r *RAM) Read32(addr uint32) (uint32, error) {
	if int(addr)+4 > len(r.Data) {
		return 0, r.outOfBounds(addr, 4)
	}
	return binary.LittleEndian.Uint32(r.Data[addr:]), nil
}

// ReadFloat32 implements the bus.Interface interface.
func (r *RAM) ReadFloat32(addr uint32) (float32, error) {
	v, err := r.Read32(addr)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFloat64 implements the bus.Interface interface.
func (r *RAM) ReadFloat64(addr uint32) (float64, error) {
	if int(addr)+8 > len(r.Data) {
		return 0, r.outOfBounds(addr, 8)
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(r.Data[addr:])), nil
}

// Write8 implements the bus.Interface interface.
func (r *RAM) Write8(addr uint32, val uint8) error {
	if int(addr) >= len(r.Data) {
		return r.outOfBounds(addr, 1)
	}
	r.Data[addr] = val
	return nil
}

// Write16 implements the bus.Interface interface.
func (r *RAM) Write16(addr uint32, val uint16) error {
	if int(addr)+2 > len(r.Data) {
		return r.outOfBounds(addr, 2)
	}
	binary.LittleEndian.PutUint16(r.Data[addr:], val)
	return nil
}

// Write32 implements the bus.Interface interface.
func (r *RAM) Write32(addr uint32, val uint32) error {
	if int(addr)+4 > len(r.Data) {
		return r.outOfBounds(addr, 4)
	}
	binary.LittleEndian.PutUint32(r.Data[addr:], val)
	return nil
}

// WriteFloat32 implements the bus.Interface interface.
func (r *RAM) WriteFloat32(addr uint32, val float32) error {
	return r.Write32(addr, math.Float32bits(val))
}

// WriteFloat64 implements the bus.Interface interface.
func (r *RAM) WriteFloat64(addr uint32, val float64) error {
	if int(addr)+8 > len(r.Data) {
		return r.outOfBounds(addr, 8)
	}
	binary.LittleEndian.PutUint64(r.Data[addr:], math.Float64bits(val))
	return nil
}
