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

package holly_test

import (
	"testing"

	"github.com/washingtondc-emu/washingtondc/hardware/holly"
	"github.com/washingtondc-emu/washingtondc/test"
)

func TestInterruptFlow(t *testing.T) {
	notified := 0
	h := holly.NewIntc(func() { notified++ })
	r := h.Region()

	// nothing pending: the IRL bus idles at 0xf
	test.ExpectEquality(t, h.IRLLine(), uint32(0xf))

	// unmask VBLANK-in at level 6
	test.ExpectSuccess(t, r.Write32(0x005f6930, holly.IntVBlankIn))

	h.RaiseNrmInt(holly.IntVBlankIn)
	test.ExpectEquality(t, h.IRLLine(), uint32(0x9))
	test.ExpectEquality(t, notified >= 2, true)

	// the status register shows the pending bit
	v, err := r.Read32(0x005f6900)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v&holly.IntVBlankIn, holly.IntVBlankIn)

	// writing 1 clears it and releases the bus
	test.ExpectSuccess(t, r.Write32(0x005f6900, holly.IntVBlankIn))
	test.ExpectEquality(t, h.IRLLine(), uint32(0xf))
}

func TestMaskLevels(t *testing.T) {
	h := holly.NewIntc(nil)
	r := h.Region()

	// the same pending bit can be routed to any level; level 6 wins over
	// level 2
	test.ExpectSuccess(t, r.Write32(0x005f6910, holly.IntHBlank))
	h.RaiseNrmInt(holly.IntHBlank)
	test.ExpectEquality(t, h.IRLLine(), uint32(0xd))

	test.ExpectSuccess(t, r.Write32(0x005f6930, holly.IntHBlank))
	test.ExpectEquality(t, h.IRLLine(), uint32(0x9))
}

func TestExtInterrupts(t *testing.T) {
	h := holly.NewIntc(nil)
	r := h.Region()

	test.ExpectSuccess(t, r.Write32(0x005f6924, holly.ExtIntGDROM))

	h.RaiseExtInt(holly.ExtIntGDROM)
	test.ExpectEquality(t, h.IRLLine(), uint32(0xb))

	// ISTNRM reads summarise the other classes in the top bits
	v, err := r.Read32(0x005f6900)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v&(1<<30) != 0, true)

	// ISTEXT is not write-to-clear; only the source clears it
	test.ExpectSuccess(t, r.Write32(0x005f6904, holly.ExtIntGDROM))
	test.ExpectEquality(t, h.IRLLine(), uint32(0xb))

	h.ClearExtInt(holly.ExtIntGDROM)
	test.ExpectEquality(t, h.IRLLine(), uint32(0xf))
}
