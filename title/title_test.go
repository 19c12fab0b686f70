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

package title_test

import (
	"testing"

	"github.com/washingtondc-emu/washingtondc/test"
	"github.com/washingtondc-emu/washingtondc/title"
)

func TestTitle(t *testing.T) {
	var w title.Title

	w.SetContent("Sonic Adventure  ")
	w.SetResolution(640, 480, false)
	w.SetPixFmt("RGB565")
	w.SetFPS(59.97)
	test.ExpectEquality(t, w.String(), "WashingtonDC - Sonic Adventure (640x480p RGB565, 59.97 Hz)")

	// empty content removes the dash as well
	w.SetContent("")
	w.SetResolution(320, 480, true)
	test.ExpectEquality(t, w.String(), "WashingtonDC (320x480i RGB565, 59.97 Hz)")
}
