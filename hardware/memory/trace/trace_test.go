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

package trace_test

import (
	"bytes"
	"testing"

	"github.com/washingtondc-emu/washingtondc/hardware/memory/ram"
	"github.com/washingtondc-emu/washingtondc/hardware/memory/trace"
	"github.com/washingtondc-emu/washingtondc/test"
)

func TestCaptureFormat(t *testing.T) {
	r := ram.NewRAM("traced", 0x100)
	capture := &bytes.Buffer{}
	p := trace.NewProxy(r, capture)

	test.ExpectSuccess(t, p.Write8(0x10, 0xab))
	test.ExpectSuccess(t, p.Write32(0x20, 0x11223344))

	// the write went through to the wrapped region
	v, err := r.Read8(0x10)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0xab))

	// packet one: tag, addr, len, one data byte, three bytes padding.
	// packet two: tag, addr, len, four data bytes, no padding
	want := []byte{
		1, 0, 0, 0,
		0x10, 0, 0, 0,
		1, 0, 0, 0,
		0xab, 0, 0, 0,

		1, 0, 0, 0,
		0x20, 0, 0, 0,
		4, 0, 0, 0,
		0x44, 0x33, 0x22, 0x11,
	}
	test.ExpectEquality(t, capture.String(), string(want))
}

func TestReadsNotCaptured(t *testing.T) {
	r := ram.NewRAM("traced", 0x100)
	capture := &bytes.Buffer{}
	p := trace.NewProxy(r, capture)

	_, err := p.Read32(0x0)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, capture.Len(), 0)
}
