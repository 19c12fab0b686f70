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

// Package memory implements the system-bus memory map: an ordered sequence
// of non-overlapping regions, each pairing an address range with the
// bus.Interface that services it.
//
// Dispatch masks the address with the region's mask before handing it to the
// region, which folds mirrored bands onto their backing store. An access
// that lands outside every region is a fatal memory-bounds error; the Try
// variants instead report failure with a boolean so that the debugger can
// probe addresses without bringing the emulator down.
package memory

import (
	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/hardware/memory/bus"
)

// Region is one entry in the memory map.
type Region struct {
	Name  string
	First uint32
	Last  uint32
	Mask  uint32
	Intf  bus.Interface
}

// Map is the ordered sequence of regions making up the system bus.
type Map struct {
	regions []Region
}

// NewMap is the preferred method of initialisation for the Map type.
func NewMap() *Map {
	return &Map{}
}

// AddRegion appends a region to the map. regions must not overlap; overlap
// is an integrity error.
func (m *Map) AddRegion(name string, first uint32, last uint32, mask uint32, intf bus.Interface) error {
	for _, r := range m.regions {
		if first <= r.Last && last >= r.First {
			return curated.Raise(curated.Integrity, "overlapping memory regions",
				curated.Attr("region", name),
				curated.Attr("existing", r.Name),
			)
		}
	}

	m.regions = append(m.regions, Region{
		Name:  name,
		First: first,
		Last:  last,
		Mask:  mask,
		Intf:  intf,
	})

	return nil
}

// find returns the region containing the address. the lookup is performed on
// the 4-byte-aligned address so that a wide access near the end of a region
// does not escape into a neighbour.
func (m *Map) find(addr uint32) *Region {
	a := addr &^ 3
	for i := range m.regions {
		if a >= m.regions[i].First && a <= m.regions[i].Last {
			return &m.regions[i]
		}
	}
	return nil
}

// Read8 dispatches to the region containing addr.
func (m *Map) Read8(addr uint32) (uint8, error) {
	r := m.find(addr)
	if r == nil {
		return 0, bus.Unmapped(addr, 1)
	}
	return r.Intf.Read8(addr & r.Mask)
}

// Read16 dispatches to the region containing addr.
func (m *Map) Read16(addr uint32) (uint16, error) {
	r := m.find(addr)
	if r == nil {
		return 0, bus.Unmapped(addr, 2)
	}
	return r.Intf.Read16(addr & r.Mask)
}

// Read32 dispatches to the region containing addr.
func (m *Map) Read32(addr uint32) (uint32, error) {
	r := m.find(addr)
	if r == nil {
		return 0, bus.Unmapped(addr, 4)
	}
	return r.Intf.Read32(addr & r.Mask)
}

// ReadFloat32 dispatches to the region containing addr.
func (m *Map) ReadFloat32(addr uint32) (float32, error) {
	r := m.find(addr)
	if r == nil {
		return 0, bus.Unmapped(addr, 4)
	}
	return r.Intf.ReadFloat32(addr & r.Mask)
}

// ReadFloat64 dispatches to the region containing addr.
func (m *Map) ReadFloat64(addr uint32) (float64, error) {
	r := m.find(addr)
	if r == nil {
		return 0, bus.Unmapped(addr, 8)
	}
	return r.Intf.ReadFloat64(addr & r.Mask)
}

// Write8 dispatches to the region containing addr.
func (m *Map) Write8(addr uint32, val uint8) error {
	r := m.find(addr)
	if r == nil {
		return bus.Unmapped(addr, 1)
	}
	return r.Intf.Write8(addr&r.Mask, val)
}

// Write16 dispatches to the region containing addr.
func (m *Map) Write16(addr uint32, val uint16) error {
	r := m.find(addr)
	if r == nil {
		return bus.Unmapped(addr, 2)
	}
	return r.Intf.Write16(addr&r.Mask, val)
}

// Write32 dispatches to the region containing addr.
func (m *Map) Write32(addr uint32, val uint32) error {
	r := m.find(addr)
	if r == nil {
		return bus.Unmapped(addr, 4)
	}
	return r.Intf.Write32(addr&r.Mask, val)
}

// WriteFloat32 dispatches to the region containing addr.
func (m *Map) WriteFloat32(addr uint32, val float32) error {
	r := m.find(addr)
	if r == nil {
		return bus.Unmapped(addr, 4)
	}
	return r.Intf.WriteFloat32(addr&r.Mask, val)
}

// WriteFloat64 dispatches to the region containing addr.
func (m *Map) WriteFloat64(addr uint32, val float64) error {
	r := m.find(addr)
	if r == nil {
		return bus.Unmapped(addr, 8)
	}
	return r.Intf.WriteFloat64(addr&r.Mask, val)
}

// TryRead8 is the probing form of Read8. the boolean is false if the address
// is unmapped or the access failed in any way; no error state is set.
func (m *Map) TryRead8(addr uint32) (uint8, bool) {
	r := m.find(addr)
	if r == nil {
		return 0, false
	}
	v, err := r.Intf.Read8(addr & r.Mask)
	return v, err == nil
}

// TryRead16 is the probing form of Read16.
func (m *Map) TryRead16(addr uint32) (uint16, bool) {
	r := m.find(addr)
	if r == nil {
		return 0, false
	}
	v, err := r.Intf.Read16(addr & r.Mask)
	return v, err == nil
}

// TryRead32 is the probing form of Read32.
func (m *Map) TryRead32(addr uint32) (uint32, bool) {
	r := m.find(addr)
	if r == nil {
		return 0, false
	}
	v, err := r.Intf.Read32(addr & r.Mask)
	return v, err == nil
}

// TryWrite8 is the probing form of Write8.
func (m *Map) TryWrite8(addr uint32, val uint8) bool {
	r := m.find(addr)
	if r == nil {
		return false
	}
	return r.Intf.Write8(addr&r.Mask, val) == nil
}

// TryWrite16 is the probing form of Write16.
func (m *Map) TryWrite16(addr uint32, val uint16) bool {
	r := m.find(addr)
	if r == nil {
		return false
	}
	return r.Intf.Write16(addr&r.Mask, val) == nil
}

// TryWrite32 is the probing form of Write32.
func (m *Map) TryWrite32(addr uint32, val uint32) bool {
	r := m.find(addr)
	if r == nil {
		return false
	}
	return r.Intf.Write32(addr&r.Mask, val) == nil
}

// RegionFor returns the region containing the address, or nil. for debugger
// and trace use.
func (m *Map) RegionFor(addr uint32) *Region {
	return m.find(addr)
}

// WrapRegion replaces the named region's interface with the result of the
// wrap function. used to slide a trace proxy under an existing region.
// returns false if no region has that name.
func (m *Map) WrapRegion(name string, wrap func(bus.Interface) bus.Interface) bool {
	for i := range m.regions {
		if m.regions[i].Name == name {
			m.regions[i].Intf = wrap(m.regions[i].Intf)
			return true
		}
	}
	return false
}
