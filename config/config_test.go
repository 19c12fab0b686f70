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

package config_test

import (
	"strings"
	"testing"

	"github.com/washingtondc-emu/washingtondc/config"
	"github.com/washingtondc-emu/washingtondc/test"
)

func TestParse(t *testing.T) {
	src := `; a comment line
wash.dbg.enable   true
wash.bios-path    /tmp/dc_boot.bin   ; trailing comment
badline
wash.dbg.enable   false
`

	f, err := config.Parse(strings.NewReader(src))
	test.ExpectSuccess(t, err)

	// duplicate keys overwrite
	var b bool
	test.ExpectSuccess(t, f.GetBool("wash.dbg.enable", &b))
	test.ExpectEquality(t, b, false)

	v, ok := f.GetString("wash.bios-path")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, v, "/tmp/dc_boot.bin")

	// the malformed line is skipped entirely
	_, ok = f.GetString("badline")
	test.ExpectFailure(t, ok)

	// each key appears once in insertion order
	test.ExpectEquality(t, len(f.Keys()), 2)
	test.ExpectEquality(t, f.Keys()[0], "wash.dbg.enable")
}

func TestGetBool(t *testing.T) {
	f, err := config.Parse(strings.NewReader("a 1\nb false\nc maybe\n"))
	test.ExpectSuccess(t, err)

	var b bool
	test.ExpectSuccess(t, f.GetBool("a", &b))
	test.ExpectEquality(t, b, true)

	test.ExpectSuccess(t, f.GetBool("b", &b))
	test.ExpectEquality(t, b, false)

	// invalid values return an error and do not mutate the out parameter
	b = true
	test.ExpectFailure(t, f.GetBool("c", &b))
	test.ExpectEquality(t, b, true)

	test.ExpectFailure(t, f.GetBool("no.such.key", &b))
}

func TestMissingFinalNewline(t *testing.T) {
	f, err := config.Parse(strings.NewReader("key value"))
	test.ExpectSuccess(t, err)

	v, ok := f.GetString("key")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, v, "value")
}

func TestGetInt(t *testing.T) {
	f, err := config.Parse(strings.NewReader("width 640\nheight tall\n"))
	test.ExpectSuccess(t, err)

	var n int
	test.ExpectSuccess(t, f.GetInt("width", &n))
	test.ExpectEquality(t, n, 640)

	n = -1
	test.ExpectFailure(t, f.GetInt("height", &n))
	test.ExpectEquality(t, n, -1)
}
