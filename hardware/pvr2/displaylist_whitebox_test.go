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

package pvr2

import (
	"math"
	"testing"

	"github.com/washingtondc-emu/washingtondc/test"
)

func TestAgeCounterRebase(t *testing.T) {
	var c core

	// two young lists and one ancient one, with the counter on the brink
	// of overflow
	c.dispListCounter = math.MaxUint32 - 1

	c.dispLists[0].valid = true
	c.dispLists[0].key = 0x01000000
	c.dispLists[0].ageCounter = c.dispListCounter - 10

	c.dispLists[1].valid = true
	c.dispLists[1].key = 0x02000000
	c.dispLists[1].ageCounter = c.dispListCounter - 100

	c.dispLists[2].valid = true
	c.dispLists[2].key = 0x03000000
	c.dispLists[2].ageCounter = c.dispListCounter - 100000

	ageBefore0 := c.listAge(&c.dispLists[0])
	ageBefore1 := c.listAge(&c.dispLists[1])

	c.incAgeCounter()

	// the young lists survive with their relative ages intact
	test.ExpectSuccess(t, c.dispLists[0].valid)
	test.ExpectSuccess(t, c.dispLists[1].valid)
	test.ExpectEquality(t, c.listAge(&c.dispLists[0]), ageBefore0+1)
	test.ExpectEquality(t, c.listAge(&c.dispLists[1]), ageBefore1+1)

	// the ancient list was invalidated and the counter rolled back
	test.ExpectFailure(t, c.dispLists[2].valid)
	test.ExpectEquality(t, c.dispListCounter < 1000, true)
}

func TestAgeCounterRebaseAllOld(t *testing.T) {
	var c core

	c.dispListCounter = math.MaxUint32 - 1

	c.dispLists[0].valid = true
	c.dispLists[0].ageCounter = 100

	c.incAgeCounter()

	// nothing was young enough to keep: every list is invalidated and the
	// counter restarts from zero
	test.ExpectFailure(t, c.dispLists[0].valid)
	test.ExpectEquality(t, c.dispListCounter, uint32(0))
}
