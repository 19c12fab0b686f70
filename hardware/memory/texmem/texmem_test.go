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

package texmem_test

import (
	"testing"

	"github.com/washingtondc-emu/washingtondc/hardware/memory/texmem"
	"github.com/washingtondc-emu/washingtondc/test"
)

// addresses below are in the form the memory map dispatches them: masked
// with 0x07ffffff, so band bits survive

func TestThirtyTwoBitPath(t *testing.T) {
	tm := texmem.NewTexMem()

	test.ExpectSuccess(t, tm.Write32(0x05000000, 0xcafebabe))
	v, err := tm.Read32(0x05000000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0xcafebabe)

	// the 32-bit path is linear over the backing store
	test.ExpectEquality(t, tm.Bytes()[0], uint8(0xbe))
	test.ExpectEquality(t, tm.Bytes()[3], uint8(0xca))

	// band 0x07 mirrors the 32-bit path
	v, err = tm.Read32(0x07000000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0xcafebabe)
}

func TestSixtyFourBitPath(t *testing.T) {
	tm := texmem.NewTexMem()

	// consecutive words on the 64-bit path alternate between the two 4MB
	// banks of the backing store
	test.ExpectSuccess(t, tm.Write32(0x04000000, 0x11111111))
	test.ExpectSuccess(t, tm.Write32(0x04000004, 0x22222222))
	test.ExpectSuccess(t, tm.Write32(0x04000008, 0x33333333))

	v, err := tm.Read32(0x05000000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0x11111111)

	v, err = tm.Read32(0x05400000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0x22222222)

	v, err = tm.Read32(0x05000004)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0x33333333)

	// band 0x06 mirrors the 64-bit path
	v, err = tm.Read32(0x06000004)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0x22222222)
}

type captureNotifier struct {
	addr, length uint32
	count        int
}

func (c *captureNotifier) NotifyWrite(addr uint32, length uint32) {
	c.addr = addr
	c.length = length
	c.count++
}

func TestWriteNotifier(t *testing.T) {
	tm := texmem.NewTexMem()

	n := &captureNotifier{}
	tm.SetWriteNotifier(n)

	// notifications arrive in 32-bit-path offsets, whichever band the write
	// came through
	test.ExpectSuccess(t, tm.Write32(0x05000010, 1))
	test.ExpectEquality(t, n.count, 1)
	test.ExpectEquality(t, n.addr, uint32(0x10))
	test.ExpectEquality(t, n.length, uint32(4))

	test.ExpectSuccess(t, tm.Write32(0x04000004, 1))
	test.ExpectEquality(t, n.addr, uint32(0x400000))
}
