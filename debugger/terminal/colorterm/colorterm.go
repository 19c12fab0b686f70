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

// Package colorterm implements the debugger terminal with a raw-mode tty
// and ANSI colour. it falls back on the caller to choose plainterm when
// stdin is not a tty.
package colorterm

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/term"

	"github.com/washingtondc-emu/washingtondc/curated"
)

// ANSI pens used by the prompt and output.
const (
	penPrompt = "\033[33;1m"
	penNormal = "\033[0m"
)

// ColorTerminal implements the terminal interface with a raw-mode tty.
type ColorTerminal struct {
	tty *term.Term
}

// NewColorTerminal is the preferred method of initialisation for the
// ColorTerminal type.
func NewColorTerminal() (*ColorTerminal, error) {
	tty, err := term.Open("/dev/tty")
	if err != nil {
		return nil, curated.Errorf("colorterm: %v", err)
	}

	if err := tty.SetRaw(); err != nil {
		tty.Close()
		return nil, curated.Errorf("colorterm: %v", err)
	}

	return &ColorTerminal{tty: tty}, nil
}

// ReadLine implements the terminal.Terminal interface. a minimal raw-mode
// line editor: printable characters, backspace, ctrl-c and ctrl-d.
func (ct *ColorTerminal) ReadLine(prompt string) (string, error) {
	fmt.Fprintf(os.Stdout, "%s%s%s", penPrompt, prompt, penNormal)

	line := strings.Builder{}
	buf := make([]byte, 1)

	for {
		if _, err := ct.tty.Read(buf); err != nil {
			return "", err
		}

		switch buf[0] {
		case 0x03, 0x04: // ctrl-c, ctrl-d
			fmt.Fprint(os.Stdout, "\r\n")
			return "", io.EOF
		case '\r', '\n':
			fmt.Fprint(os.Stdout, "\r\n")
			return line.String(), nil
		case 0x7f, 0x08: // backspace
			s := line.String()
			if len(s) > 0 {
				line.Reset()
				line.WriteString(s[:len(s)-1])
				fmt.Fprint(os.Stdout, "\b \b")
			}
		default:
			if buf[0] >= 0x20 && buf[0] < 0x7f {
				line.WriteByte(buf[0])
				fmt.Fprintf(os.Stdout, "%c", buf[0])
			}
		}
	}
}

// Print implements the terminal.Terminal interface.
func (ct *ColorTerminal) Print(s string) {
	// raw mode needs explicit carriage returns
	fmt.Fprint(os.Stdout, strings.ReplaceAll(s, "\n", "\r\n"))
	fmt.Fprint(os.Stdout, "\r\n")
}

// Cleanup implements the terminal.Terminal interface.
func (ct *ColorTerminal) Cleanup() {
	_ = ct.tty.Restore()
	ct.tty.Close()
}
