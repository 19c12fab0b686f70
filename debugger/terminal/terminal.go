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

// Package terminal defines the interface the debugger front-end reads
// commands through and prints results to. two implementations exist: the
// plain terminal, which works everywhere, and the colour terminal, which
// puts the tty into raw mode for a nicer prompt.
package terminal

// Terminal is the interface between the debugger command loop and the
// user.
type Terminal interface {
	// ReadLine blocks until the user has entered a command line. an error
	// (io.EOF in particular) ends the command loop
	ReadLine(prompt string) (string, error)

	// Print writes a result line to the user
	Print(s string)

	// Cleanup restores whatever terminal state the implementation changed
	Cleanup()
}
