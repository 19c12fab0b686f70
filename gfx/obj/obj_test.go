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

package obj_test

import (
	"testing"

	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/gfx/obj"
	"github.com/washingtondc-emu/washingtondc/test"
)

func TestAllocFree(t *testing.T) {
	p := obj.NewPool()

	h1, err := p.Alloc()
	test.ExpectSuccess(t, err)
	h2, err := p.Alloc()
	test.ExpectSuccess(t, err)
	test.ExpectInequality(t, h1, h2)

	// freed handles are reused by the linear scan
	p.Free(h1)
	h3, err := p.Alloc()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, h3, h1)
}

func TestReadWrite(t *testing.T) {
	p := obj.NewPool()

	h, err := p.Alloc()
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, p.Init(h, 4))

	test.ExpectSuccess(t, p.Write(h, []byte{1, 2, 3, 4}))

	out := make([]byte, 4)
	test.ExpectSuccess(t, p.Read(h, out))
	test.ExpectEquality(t, string(out), string([]byte{1, 2, 3, 4}))

	// length mismatches are overflow errors
	err = p.Write(h, []byte{1})
	test.ExpectSuccess(t, curated.Is(err, curated.Overflow))
	err = p.Read(h, make([]byte, 8))
	test.ExpectSuccess(t, curated.Is(err, curated.Overflow))
}

func TestDoubleInit(t *testing.T) {
	p := obj.NewPool()

	h, _ := p.Alloc()
	test.ExpectSuccess(t, p.Init(h, 16))
	err := p.Init(h, 16)
	test.ExpectSuccess(t, curated.Is(err, curated.Integrity))

	// freeing resets the length so the handle can be initialised again
	p.Free(h)
	h2, _ := p.Alloc()
	test.ExpectEquality(t, h2, h)
	test.ExpectSuccess(t, p.Init(h2, 32))
}

func TestHooks(t *testing.T) {
	p := obj.NewPool()

	h, _ := p.Alloc()
	test.ExpectSuccess(t, p.Init(h, 2))

	// a read hook generates data on demand
	p.Get(h).SetHooks(func(o *obj.Object, dat []byte) error {
		dat[0] = 0xaa
		dat[1] = 0xbb
		return nil
	}, nil)

	out := make([]byte, 2)
	test.ExpectSuccess(t, p.Read(h, out))
	test.ExpectEquality(t, out[0], uint8(0xaa))
	test.ExpectEquality(t, out[1], uint8(0xbb))
}
