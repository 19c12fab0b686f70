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

// Package mmio implements memory-mapped register regions: contiguous
// windows of named 32-bit cells, each with its own read and write handler.
//
// Cells that have not been given handlers raise an unimplemented error when
// touched, which is how unemulated hardware registers announce themselves.
// The warn handlers preserve the backing word and log the access; device
// code installs specialised handlers over the cells it models.
package mmio

import (
	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/logger"
)

// ReadHandler services a 32-bit read of a cell. idx is the cell index within
// the region.
type ReadHandler func(r *Region, idx int) (uint32, error)

// WriteHandler services a 32-bit write of a cell.
type WriteHandler func(r *Region, idx int, val uint32) error

// cell is one 32-bit register in the region.
type cell struct {
	name    string
	onRead  ReadHandler
	onWrite WriteHandler
}

// Region is a window of 32-bit cells. it implements bus.Interface; only
// 32-bit accesses are legal.
type Region struct {
	name    string
	base    uint32
	backing []uint32
	cells   []cell
}

// NewRegion is the preferred method of initialisation for the Region type.
// first and last are the bounds of the window in the address terms the
// memory map dispatches with (ie. after masking).
func NewRegion(name string, first uint32, last uint32) *Region {
	n := (last - first + 1) / 4
	return &Region{
		name:    name,
		base:    first,
		backing: make([]uint32, n),
		cells:   make([]cell, n),
	}
}

// Name returns the name given to the region at construction.
func (r *Region) Name() string {
	return r.name
}

// Cell installs handlers for the named cell at addr. either handler may be
// nil, in which case the corresponding access raises.
func (r *Region) Cell(name string, addr uint32, onRead ReadHandler, onWrite WriteHandler) {
	idx := (addr - r.base) / 4
	r.cells[idx] = cell{name: name, onRead: onRead, onWrite: onWrite}
}

// WarnCell installs the named cell with the default warn handlers: the
// backing word is preserved and every access is logged.
func (r *Region) WarnCell(name string, addr uint32) {
	r.Cell(name, addr, WarnRead, WarnWrite)
}

// SilentCell installs the named cell with handlers that preserve the backing
// word without logging. for registers that are touched frequently and
// faithfully modelled by their backing value alone.
func (r *Region) SilentCell(name string, addr uint32) {
	r.Cell(name, addr, BackingRead, BackingWrite)
}

// Backing returns the backing word for the cell.
func (r *Region) Backing(idx int) uint32 {
	return r.backing[idx]
}

// SetBacking sets the backing word for the cell.
func (r *Region) SetBacking(idx int, val uint32) {
	r.backing[idx] = val
}

// Peek returns the backing word for the cell at addr without invoking the
// read handler. for debugger use.
func (r *Region) Peek(addr uint32) uint32 {
	return r.backing[(addr-r.base)/4]
}

// CellName returns the name of the cell at addr. unnamed cells return the
// empty string.
func (r *Region) CellName(addr uint32) string {
	return r.cells[(addr-r.base)/4].name
}

// Idx converts a cell address into a cell index.
func (r *Region) Idx(addr uint32) int {
	return int((addr - r.base) / 4)
}

// Addr converts a cell index into a cell address.
func (r *Region) Addr(idx int) uint32 {
	return r.base + uint32(idx)*4
}

// BackingRead is a ReadHandler returning the backing word.
func BackingRead(r *Region, idx int) (uint32, error) {
	return r.backing[idx], nil
}

// BackingWrite is a WriteHandler storing the backing word.
func BackingWrite(r *Region, idx int, val uint32) error {
	r.backing[idx] = val
	return nil
}

// WarnRead is a ReadHandler returning the backing word and logging the
// access.
func WarnRead(r *Region, idx int) (uint32, error) {
	logger.Logf(r.name, "read from register %s", r.cells[idx].name)
	return r.backing[idx], nil
}

// WarnWrite is a WriteHandler storing the backing word and logging the
// access.
func WarnWrite(r *Region, idx int, val uint32) error {
	logger.Logf(r.name, "write of %08x to register %s", val, r.cells[idx].name)
	r.backing[idx] = val
	return nil
}

// ReadOnly is a WriteHandler that raises for the cell.
func ReadOnly(r *Region, idx int, val uint32) error {
	return curated.Raise(curated.Unimplemented, "write to read-only register",
		curated.Attr("register", r.cells[idx].name),
		curated.Attr("value", val),
	)
}

// Read32 implements the bus.Interface interface.
func (r *Region) Read32(addr uint32) (uint32, error) {
	idx := (addr - r.base) / 4
	if int(idx) >= len(r.cells) {
		return 0, curated.Raise(curated.MemOutOfBounds, r.name, curated.Attr("address", addr))
	}
	c := &r.cells[idx]
	if c.onRead == nil {
		return 0, curated.Raise(curated.Unimplemented, "read from unimplemented register",
			curated.Attr("region", r.name),
			curated.Attr("address", addr),
			curated.Attr("register", c.name),
		)
	}
	return c.onRead(r, int(idx))
}

// Write32 implements the bus.Interface interface.
func (r *Region) Write32(addr uint32, val uint32) error {
	idx := (addr - r.base) / 4
	if int(idx) >= len(r.cells) {
		return curated.Raise(curated.MemOutOfBounds, r.name, curated.Attr("address", addr))
	}
	c := &r.cells[idx]
	if c.onWrite == nil {
		return curated.Raise(curated.Unimplemented, "write to unimplemented register",
			curated.Attr("region", r.name),
			curated.Attr("address", addr),
			curated.Attr("register", c.name),
			curated.Attr("value", val),
		)
	}
	return c.onWrite(r, int(idx), val)
}

func (r *Region) widthError(addr uint32, length int) error {
	return curated.Raise(curated.Unimplemented, "non-32-bit access to register region",
		curated.Attr("region", r.name),
		curated.Attr("address", addr),
		curated.Attr("length", length),
	)
}

// Read8 implements the bus.Interface interface. registers are 32-bit only.
func (r *Region) Read8(addr uint32) (uint8, error) {
	return 0, r.widthError(addr, 1)
}

// Read16 implements the bus.Interface interface. registers are 32-bit only.
func (r *Region) Read16(addr uint32) (uint16, error) {
	return 0, r.widthError(addr, 2)
}

// ReadFloat32 implements the bus.Interface interface.
func (r *Region) ReadFloat32(addr uint32) (float32, error) {
	return 0, r.widthError(addr, 4)
}

// ReadFloat64 implements the bus.Interface interface.
func (r *Region) ReadFloat64(addr uint32) (float64, error) {
	return 0, r.widthError(addr, 8)
}

// Write8 implements the bus.Interface interface. registers are 32-bit only.
func (r *Region) Write8(addr uint32, val uint8) error {
	return r.widthError(addr, 1)
}

// Write16 implements the bus.Interface interface. registers are 32-bit only.
func (r *Region) Write16(addr uint32, val uint16) error {
	return r.widthError(addr, 2)
}

// WriteFloat32 implements the bus.Interface interface.
func (r *Region) WriteFloat32(addr uint32, val float32) error {
	return r.widthError(addr, 4)
}

// WriteFloat64 implements the bus.Interface interface.
func (r *Region) WriteFloat64(addr uint32, val float64) error {
	return r.widthError(addr, 8)
}
