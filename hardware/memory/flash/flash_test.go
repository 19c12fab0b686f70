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

package flash_test

import (
	"testing"

	"github.com/washingtondc-emu/washingtondc/hardware/memory/flash"
	"github.com/washingtondc-emu/washingtondc/test"
)

// the unlock sequence, expressed as region offsets (the memory map masks
// 0x00205555 down to 0x5555 and 0x00202aaa down to 0x2aaa)
func unlock(t *testing.T, f *flash.Flash) {
	t.Helper()
	test.ExpectSuccess(t, f.Write8(0x5555, 0xaa))
	test.ExpectSuccess(t, f.Write8(0x2aaa, 0x55))
}

func TestSectorErase(t *testing.T) {
	f := flash.NewFlash()

	// fill two sectors with a known value
	for i := 0x10000; i < 0x18000; i++ {
		f.Data[i] = 0x12
	}

	unlock(t, f)
	test.ExpectSuccess(t, f.Write8(0x0000, 0x80))
	unlock(t, f)
	test.ExpectSuccess(t, f.Write8(0x14000, 0x30))

	// the 16KB sector at 0x14000 is erased to ff
	for _, a := range []uint32{0x14000, 0x15555, 0x17fff} {
		v, err := f.Read8(a)
		test.ExpectSuccess(t, err)
		test.ExpectEquality(t, v, uint8(0xff))
	}

	// the byte below the sector boundary is unchanged
	v, err := f.Read8(0x13fff)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0x12))
}

func TestWriteByte(t *testing.T) {
	f := flash.NewFlash()
	f.Data[0x100] = 0xf0

	unlock(t, f)
	test.ExpectSuccess(t, f.Write8(0x0000, 0xa0))
	test.ExpectSuccess(t, f.Write8(0x100, 0x3c))

	// the write command ANDs with the existing byte
	v, err := f.Read8(0x100)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0x30))
}

func TestWriteWithoutUnlock(t *testing.T) {
	f := flash.NewFlash()
	f.Data[0x100] = 0xab

	// a write without the aa/55 prefix is silently dropped and the state
	// machine stays at the initial step
	test.ExpectSuccess(t, f.Write8(0x100, 0x00))
	v, err := f.Read8(0x100)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0xab))

	// the device still accepts a properly unlocked write afterwards
	unlock(t, f)
	test.ExpectSuccess(t, f.Write8(0x0000, 0xa0))
	test.ExpectSuccess(t, f.Write8(0x100, 0x0f))
	v, _ = f.Read8(0x100)
	test.ExpectEquality(t, v, uint8(0x0b))
}

func TestEraseWithoutPreErase(t *testing.T) {
	f := flash.NewFlash()
	f.Data[0x4000] = 0x55

	// an erase command that was never unlocked is a no-op
	unlock(t, f)
	test.ExpectSuccess(t, f.Write8(0x4000, 0x30))
	v, _ := f.Read8(0x4000)
	test.ExpectEquality(t, v, uint8(0x55))
}

func TestPreErasePersists(t *testing.T) {
	f := flash.NewFlash()
	f.Data[0x0] = 0x00

	// the pre-erase unlock survives an intervening write command sequence
	unlock(t, f)
	test.ExpectSuccess(t, f.Write8(0x0000, 0x80))
	unlock(t, f)
	test.ExpectSuccess(t, f.Write8(0x0000, 0xa0))
	test.ExpectSuccess(t, f.Write8(0x9000, 0xfe))
	unlock(t, f)
	test.ExpectSuccess(t, f.Write8(0x0000, 0x30))

	v, _ := f.Read8(0x0)
	test.ExpectEquality(t, v, uint8(0xff))
}

func TestWideWritesRejected(t *testing.T) {
	f := flash.NewFlash()

	test.ExpectFailure(t, f.Write16(0x100, 0xffff))
	test.ExpectFailure(t, f.Write32(0x100, 0xffffffff))
}
