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

package aica_test

import (
	"testing"

	"github.com/washingtondc-emu/washingtondc/hardware/aica"
	"github.com/washingtondc-emu/washingtondc/hardware/dcsched"
	"github.com/washingtondc-emu/washingtondc/test"
)

func TestRegisterBacking(t *testing.T) {
	a := aica.NewAICA(dcsched.NewScheduler())
	r := a.Regs()

	// the guest reads back whatever it wrote
	test.ExpectSuccess(t, r.Write32(0x0004, 0x12345678))
	v, err := r.Read32(0x0004)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint32(0x12345678))
}

func TestChannelDecode(t *testing.T) {
	a := aica.NewAICA(dcsched.NewScheduler())
	r := a.Regs()

	// program channel 2: start address, loop points, 16-bit PCM, key on
	base := uint32(2 * 0x80)
	test.ExpectSuccess(t, r.Write32(base+0x04, 0x4000))
	test.ExpectSuccess(t, r.Write32(base+0x08, 0))
	test.ExpectSuccess(t, r.Write32(base+0x0c, 16))
	test.ExpectSuccess(t, r.Write32(base+0x00, 1<<14|0x02))

	ch := a.Channel(2)
	test.ExpectEquality(t, ch.StartAddr, uint32(0x24000))
	test.ExpectEquality(t, ch.LoopEnd, uint32(16))
	test.ExpectEquality(t, ch.Fmt, aica.FmtPCM16)
	test.ExpectEquality(t, ch.KeyOnBit, true)
	test.ExpectEquality(t, ch.Playing, false)

	// the KYONEX strobe latches every channel's key bit
	test.ExpectSuccess(t, r.Write32(base+0x00, 1<<15|1<<14|0x02))
	test.ExpectEquality(t, ch.Playing, true)

	// key off
	test.ExpectSuccess(t, r.Write32(base+0x00, 1<<15|0x02))
	test.ExpectEquality(t, ch.Playing, false)
}
