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

package hardware_test

import (
	"testing"

	"github.com/washingtondc-emu/washingtondc/gfx/headless"
	"github.com/washingtondc-emu/washingtondc/gfx/obj"
	"github.com/washingtondc-emu/washingtondc/hardware"
	"github.com/washingtondc-emu/washingtondc/hardware/sh4"
	"github.com/washingtondc-emu/washingtondc/test"
)

func newTestDreamcast(t *testing.T) *hardware.Dreamcast {
	t.Helper()

	pool := obj.NewPool()
	dc, err := hardware.NewDreamcast(headless.NewRenderer(pool), pool)
	test.ExpectSuccess(t, err)

	return dc
}

func TestFlashThroughMemoryMap(t *testing.T) {
	dc := newTestDreamcast(t)

	// fill a sector so the erase is observable
	for i := 0x14000; i < 0x18000; i++ {
		dc.Flash.Data[i] = 0x12
	}
	dc.Flash.Data[0x13fff] = 0x34

	// the full command sequence through the system bus, with the magic
	// unlock addresses as the guest sees them
	for _, w := range []struct {
		addr uint32
		val  uint8
	}{
		{0x00205555, 0xaa},
		{0x00202aaa, 0x55},
		{0x00200000, 0x80},
		{0x00205555, 0xaa},
		{0x00202aaa, 0x55},
		{0x00214000, 0x30},
	} {
		test.ExpectSuccess(t, dc.Mem.Write8(w.addr, w.val))
	}

	// the sector is erased; the byte below it is untouched
	v, err := dc.Mem.Read8(0x00214000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0xff))

	v, err = dc.Mem.Read8(0x00217fff)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0xff))

	v, err = dc.Mem.Read8(0x00213fff)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0x34))
}

func TestRootLoop(t *testing.T) {
	dc := newTestDreamcast(t)

	// park the CPU on a tight loop in system RAM: BRA -2 with a NOP in the
	// delay slot
	test.ExpectSuccess(t, dc.Mem.Write16(0x0c000000, 0xaffe))
	test.ExpectSuccess(t, dc.Mem.Write16(0x0c000002, 0x0009))
	test.ExpectSuccess(t, dc.SH4.SetReg(sh4.PC, 0x8c000000))

	// run slices until the SPG's first VBLANK-in has been raised
	for i := 0; i < 10000; i++ {
		test.ExpectSuccess(t, dc.RunSlice())
		if v, ok := dc.Mem.TryRead32(0x005f6900); ok && v&(1<<3) != 0 {
			break
		}
	}

	v, ok := dc.Mem.TryRead32(0x005f6900)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, v&(1<<3), uint32(1<<3))

	// the cycle counter kept pace with the events
	test.ExpectSuccess(t, uint64(dc.Sched.Now()) > 0)
}

func TestVBlankInterruptDelivery(t *testing.T) {
	dc := newTestDreamcast(t)

	// unmask VBLANK-in at level 6 through the system bus, point VBR at a
	// handler area, and let the CPU spin
	test.ExpectSuccess(t, dc.Mem.Write32(0x005f6930, 1<<3))
	test.ExpectSuccess(t, dc.SH4.SetReg(sh4.VBR, 0x8c001000))

	test.ExpectSuccess(t, dc.Mem.Write16(0x0c000000, 0xaffe))
	test.ExpectSuccess(t, dc.Mem.Write16(0x0c000002, 0x0009))
	// the interrupt handler also spins
	test.ExpectSuccess(t, dc.Mem.Write16(0x0c001600, 0xaffe))
	test.ExpectSuccess(t, dc.Mem.Write16(0x0c001602, 0x0009))

	test.ExpectSuccess(t, dc.SH4.SetReg(sh4.PC, 0x8c000000))
	test.ExpectSuccess(t, dc.SH4.SetSR(dc.SH4.Reg(sh4.SR)&^uint32(0x100000f0)))

	for i := 0; i < 10000; i++ {
		test.ExpectSuccess(t, dc.RunSlice())
		if dc.SH4.Reg(sh4.PC)&0x0fffffff == 0x0c001600 ||
			dc.SH4.Reg(sh4.PC)&0x0fffffff == 0x0c001602 {
			break
		}
	}

	// the CPU vectored to VBR + 0x600 with the external interrupt code in
	// INTEVT
	pc := dc.SH4.Reg(sh4.PC) & 0x0fffffff
	test.ExpectSuccess(t, pc == 0x0c001600 || pc == 0x0c001602)
	test.ExpectEquality(t, dc.SH4.Reg(sh4.INTEVT), uint32(0x320))
}
