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

package texcache_test

import (
	"testing"

	"github.com/washingtondc-emu/washingtondc/gfx/texcache"
	"github.com/washingtondc-emu/washingtondc/test"
)

func TestFindInsert(t *testing.T) {
	c := texcache.NewCache()

	k := texcache.Key{Addr: 0x00100000, WShift: 6, HShift: 6, PixFmt: 1, Twiddled: true}

	_, ok := c.Find(k, 1)
	test.ExpectFailure(t, ok)

	texNo, evicted, err := c.Insert(k, 42, 1)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, evicted, -1)

	found, ok := c.Find(k, 2)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, found, texNo)

	// a key differing in any field misses
	k2 := k
	k2.Twiddled = false
	_, ok = c.Find(k2, 2)
	test.ExpectFailure(t, ok)
}

func TestEviction(t *testing.T) {
	c := texcache.NewCache()

	// fill the cache, then one more insert evicts the least recently used
	for i := 0; i < texcache.Size; i++ {
		k := texcache.Key{Addr: uint32(i) * 0x1000}
		_, _, err := c.Insert(k, i, uint32(i))
		test.ExpectSuccess(t, err)
	}

	texNo, evicted, err := c.Insert(texcache.Key{Addr: 0xf00000}, 999, 1000)
	test.ExpectSuccess(t, err)

	// slot zero was oldest: its object handle comes back for freeing
	test.ExpectEquality(t, evicted, 0)
	test.ExpectEquality(t, texNo, 0)
}

func TestInvalidateRange(t *testing.T) {
	c := texcache.NewCache()

	k := texcache.Key{Addr: 0x00100000, WShift: 5, HShift: 5}
	_, _, err := c.Insert(k, 7, 1)
	test.ExpectSuccess(t, err)

	// a range touching the texture data invalidates it and returns the
	// handle
	freed := c.InvalidateRange(0x00100100, 0x00100104)
	test.ExpectEquality(t, len(freed), 1)
	test.ExpectEquality(t, freed[0], 7)

	_, ok := c.Find(k, 2)
	test.ExpectFailure(t, ok)

	// a disjoint range frees nothing
	freed = c.InvalidateRange(0x00700000, 0x00700004)
	test.ExpectEquality(t, len(freed), 0)
}
