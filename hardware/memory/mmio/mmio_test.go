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

package mmio_test

import (
	"testing"

	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/hardware/memory/mmio"
	"github.com/washingtondc-emu/washingtondc/test"
)

func TestDefaultHandlers(t *testing.T) {
	r := mmio.NewRegion("test regs", 0x100, 0x1ff)
	r.WarnCell("REG_A", 0x100)
	r.SilentCell("REG_B", 0x104)

	// reading a cell after writing v returns v when no custom handler is
	// installed
	test.ExpectSuccess(t, r.Write32(0x100, 0xcafebabe))
	v, err := r.Read32(0x100)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0xcafebabe)

	test.ExpectSuccess(t, r.Write32(0x104, 42))
	v, err = r.Read32(0x104)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint32(42))
}

func TestUnimplementedCell(t *testing.T) {
	r := mmio.NewRegion("test regs", 0x100, 0x1ff)

	_, err := r.Read32(0x108)
	test.ExpectSuccess(t, curated.Is(err, curated.Unimplemented))

	err = r.Write32(0x108, 1)
	test.ExpectSuccess(t, curated.Is(err, curated.Unimplemented))
}

func TestCustomHandler(t *testing.T) {
	r := mmio.NewRegion("test regs", 0x100, 0x1ff)

	// a custom write handler intercepts the value before the backing store
	var captured uint32
	r.Cell("REG_C", 0x10c, mmio.BackingRead,
		func(r *mmio.Region, idx int, val uint32) error {
			captured = val
			r.SetBacking(idx, val&0xff)
			return nil
		})

	test.ExpectSuccess(t, r.Write32(0x10c, 0x1234))
	test.ExpectEquality(t, captured, uint32(0x1234))

	v, err := r.Read32(0x10c)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint32(0x34))
}

func TestWidthRestriction(t *testing.T) {
	r := mmio.NewRegion("test regs", 0x100, 0x1ff)
	r.WarnCell("REG_A", 0x100)

	_, err := r.Read8(0x100)
	test.ExpectSuccess(t, curated.Is(err, curated.Unimplemented))

	err = r.Write16(0x100, 1)
	test.ExpectSuccess(t, curated.Is(err, curated.Unimplemented))
}
