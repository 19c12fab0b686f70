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

// Package plainterm implements the debugger terminal over plain stdin and
// stdout. it works everywhere, including pipes and dumb terminals.
package plainterm

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// PlainTerminal is a bare-bones implementation of the terminal interface.
type PlainTerminal struct {
	input  *bufio.Reader
	output io.Writer
}

// NewPlainTerminal is the preferred method of initialisation for the
// PlainTerminal type.
func NewPlainTerminal() *PlainTerminal {
	return &PlainTerminal{
		input:  bufio.NewReader(os.Stdin),
		output: os.Stdout,
	}
}

// ReadLine implements the terminal.Terminal interface.
func (pt *PlainTerminal) ReadLine(prompt string) (string, error) {
	fmt.Fprint(pt.output, prompt)
	s, err := pt.input.ReadString('\n')
	if err != nil {
		return "", err
	}
	return s, nil
}

// Print implements the terminal.Terminal interface.
func (pt *PlainTerminal) Print(s string) {
	fmt.Fprintln(pt.output, s)
}

// Cleanup implements the terminal.Terminal interface.
func (pt *PlainTerminal) Cleanup() {
}
