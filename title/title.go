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

// Package title formats the window title from the current display state.
package title

import (
	"fmt"
	"strings"
)

// Title holds the values the window title is built from. zero value is
// usable.
type Title struct {
	content    string
	xres, yres int
	interlaced bool
	pixFmt     string
	fps        float64
}

// SetContent sets the name of the running software. trailing whitespace is
// trimmed. an empty string removes the content field from the title.
func (t *Title) SetContent(content string) {
	t.content = strings.TrimRight(content, " \t\r\n")
}

// SetResolution sets the displayed resolution.
func (t *Title) SetResolution(width, height int, interlaced bool) {
	t.xres = width
	t.yres = height
	t.interlaced = interlaced
}

// SetPixFmt sets the displayed pixel format name.
func (t *Title) SetPixFmt(fmt string) {
	t.pixFmt = fmt
}

// SetFPS sets the measured internal refresh rate.
func (t *Title) SetFPS(fps float64) {
	t.fps = fps
}

// String returns the window title.
func (t *Title) String() string {
	scan := "p"
	if t.interlaced {
		scan = "i"
	}

	if len(t.content) > 0 {
		return fmt.Sprintf("WashingtonDC - %s (%dx%d%s %s, %.2f Hz)",
			t.content, t.xres, t.yres, scan, t.pixFmt, t.fps)
	}

	return fmt.Sprintf("WashingtonDC (%dx%d%s %s, %.2f Hz)",
		t.xres, t.yres, scan, t.pixFmt, t.fps)
}
