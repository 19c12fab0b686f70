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

package memory_test

import (
	"testing"

	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/hardware/memory"
	"github.com/washingtondc-emu/washingtondc/hardware/memory/ram"
	"github.com/washingtondc-emu/washingtondc/test"
)

func newTestMap(t *testing.T) *memory.Map {
	t.Helper()

	m := memory.NewMap()

	// a small RAM mirrored over a larger window, like the system RAM is
	r := ram.NewRAM("test ram", 0x1000)
	test.ExpectSuccess(t, m.AddRegion("test ram", 0x0c000000, 0x0c003fff, 0x00000fff, r))

	return m
}

func TestRoundTrip(t *testing.T) {
	m := newTestMap(t)

	// writing through the map and reading back through the same map yields
	// bit-identical values for every width
	test.ExpectSuccess(t, m.Write32(0x0c000000, 0xdeadbeef))
	v32, err := m.Read32(0x0c000000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v32, 0xdeadbeef)

	test.ExpectSuccess(t, m.Write16(0x0c000010, 0x1234))
	v16, err := m.Read16(0x0c000010)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v16, uint16(0x1234))

	test.ExpectSuccess(t, m.Write8(0x0c000020, 0xab))
	v8, err := m.Read8(0x0c000020)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v8, uint8(0xab))

	test.ExpectSuccess(t, m.WriteFloat32(0x0c000030, 3.25))
	f32, err := m.ReadFloat32(0x0c000030)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, f32, float32(3.25))

	test.ExpectSuccess(t, m.WriteFloat64(0x0c000038, -1.5))
	f64, err := m.ReadFloat64(0x0c000038)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, f64, -1.5)

	// little-endian byte order through the byte interface
	b, err := m.Read8(0x0c000000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, b, uint8(0xef))
}

func TestMirroring(t *testing.T) {
	m := newTestMap(t)

	// the mask folds the mirrored bands onto the same backing bytes
	test.ExpectSuccess(t, m.Write32(0x0c000000, 0x11223344))
	v, err := m.Read32(0x0c001000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0x11223344)

	v, err = m.Read32(0x0c003000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0x11223344)
}

func TestUnmapped(t *testing.T) {
	m := newTestMap(t)

	// a miss through the plain access functions is a memory-bounds error
	_, err := m.Read32(0x20000000)
	test.ExpectSuccess(t, curated.Is(err, curated.MemOutOfBounds))
	test.ExpectEquality(t, curated.KindOf(err), "MemOutOfBounds")

	err = m.Write8(0x20000000, 0)
	test.ExpectSuccess(t, curated.Is(err, curated.MemOutOfBounds))

	// the probing forms fail quietly
	_, ok := m.TryRead32(0x20000000)
	test.ExpectFailure(t, ok)
	test.ExpectFailure(t, m.TryWrite32(0x20000000, 0))

	// and succeed where the plain forms succeed
	test.ExpectSuccess(t, m.TryWrite32(0x0c000000, 99))
	v, ok := m.TryRead32(0x0c000000)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, v, uint32(99))
}

func TestOverlapRejected(t *testing.T) {
	m := newTestMap(t)

	r := ram.NewRAM("overlapping", 0x1000)
	err := m.AddRegion("overlapping", 0x0c003000, 0x0c004fff, 0xfff, r)
	test.ExpectSuccess(t, curated.Is(err, curated.Integrity))
}
