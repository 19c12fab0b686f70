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

package bootrom_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/hardware/memory/bootrom"
	"github.com/washingtondc-emu/washingtondc/test"
)

func TestLoadUndersized(t *testing.T) {
	rom := bootrom.NewBootROM()

	// an undersized image occupies a prefix of the ROM
	p := filepath.Join(t.TempDir(), "dc_boot.bin")
	test.ExpectSuccess(t, os.WriteFile(p, []byte{0x09, 0x00, 0x0b, 0x00}, 0644))
	test.ExpectSuccess(t, rom.Load(p))

	v, err := rom.Read16(0)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint16(0x0009))

	v, err = rom.Read16(4)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint16(0))
}

func TestReadOnly(t *testing.T) {
	rom := bootrom.NewBootROM()

	err := rom.Write8(0, 0xff)
	test.ExpectSuccess(t, curated.Is(err, curated.Unimplemented))
	err = rom.Write32(0x100, 1)
	test.ExpectSuccess(t, curated.Is(err, curated.Unimplemented))
}

func TestLoadMissing(t *testing.T) {
	rom := bootrom.NewBootROM()

	err := rom.Load(filepath.Join(t.TempDir(), "no-such-file"))
	test.ExpectSuccess(t, curated.Is(err, curated.FileIO))
}
