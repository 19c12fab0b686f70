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

package resources_test

import (
	"testing"

	"github.com/washingtondc-emu/washingtondc/resources"
	"github.com/washingtondc-emu/washingtondc/test"
)

func TestXDGOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	d, err := resources.ConfigDir()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, d, "/tmp/xdg-config/washdc")

	d, err = resources.DataDir()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, d, "/tmp/xdg-data/washdc")

	d, err = resources.ScreenshotDir()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, d, "/tmp/xdg-data/washdc/screenshots")
}

func TestHomeFallback(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "/home/guest")

	d, err := resources.ConfigDir()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, d, "/home/guest/.config/washdc")

	d, err = resources.DataDir()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, d, "/home/guest/.local/share/washdc")
}
